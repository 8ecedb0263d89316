// Package pdftable holds the shared vocabulary of the table renderer: page
// geometry, colors, font faces, the Canvas drawing contract and the error
// taxonomy.
//
// The layout engine lives in the table subpackage. Font metrics come from the
// font package, text wrapping from text, and concrete canvases (a call
// recorder and a PDF writer) from canvas. Declarative table documents are
// loaded by tabledef.
package pdftable
