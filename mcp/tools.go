package mcp

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/config"
	"github.com/lvillar/pdftable/tabledef"
	"github.com/lvillar/pdftable/text"
)

type toolset struct {
	cfg    *config.Config
	logger *slog.Logger
}

// RegisterDefaultTools adds the table tools to the server. cfg supplies the
// default page, fonts and render settings.
func RegisterDefaultTools(s *Server, cfg *config.Config) {
	ts := &toolset{cfg: cfg, logger: s.logger}
	s.AddTool(ts.renderTableTool())
	s.AddTool(ts.layoutTableTool())
	s.AddTool(ts.measureTextTool())
}

// definitionProperties are shared by the tools that take a table definition.
func definitionProperties() map[string]any {
	return map[string]any{
		"definition": map[string]any{
			"type":        "object",
			"description": "Table definition: page, startY, margin, styles, headStyles, bodyStyles, footStyles, columns, head, body, foot, frame, showHead, showFoot, hook. See the table://examples/invoice resource.",
		},
		"source": map[string]any{
			"type":        "string",
			"description": "Table definition as text, used when 'definition' is absent. May be JSON, YAML, a Markdown table or an HTML table.",
		},
		"format": map[string]any{
			"type":        "string",
			"enum":        []string{"json", "yaml", "markdown", "html"},
			"description": "Format of 'source'. Detected from the content if omitted.",
		},
	}
}

func parseDefinition(args map[string]any) (*tabledef.Definition, error) {
	if d, ok := args["definition"]; ok && d != nil {
		data, err := json.Marshal(d)
		if err != nil {
			return nil, errors.Wrap(err, "encoding definition")
		}
		return tabledef.ParseJSON(data)
	}
	src, ok := args["source"].(string)
	if !ok || strings.TrimSpace(src) == "" {
		return nil, fmt.Errorf("missing 'definition' or 'source' argument")
	}
	format := tabledef.DetectFormat([]byte(src))
	if f, ok := args["format"].(string); ok && f != "" {
		var err error
		if format, err = tabledef.ParseFormat(f); err != nil {
			return nil, err
		}
	}
	return tabledef.Parse([]byte(src), format)
}

func (ts *toolset) renderTableTool() Tool {
	props := definitionProperties()
	props["outputPath"] = map[string]any{
		"type":        "string",
		"description": "Optional file path to save the PDF. If omitted, returns base64.",
	}
	return Tool{
		Name:        "render_table",
		Description: "Render a paginated table to PDF. Header rows repeat on every page, the footer closes the last page, and an optional JavaScript hook can adjust the borders of each cell. Returns the PDF as base64 or writes it to outputPath.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": props,
		},
		Handler: ts.handleRenderTable,
	}
}

func (ts *toolset) handleRenderTable(args map[string]any) (ToolResult, error) {
	def, err := parseDefinition(args)
	if err != nil {
		return ToolResult{}, err
	}
	opts, err := ts.cfg.TableOptions(ts.logger)
	if err != nil {
		return ToolResult{}, err
	}

	var buf bytes.Buffer
	res, err := tabledef.Render(&buf, def, opts...)
	if err != nil {
		return ToolResult{}, fmt.Errorf("rendering table: %w", err)
	}

	summary := fmt.Sprintf("PDF created successfully: %d page(s), %d bytes", res.Pages, buf.Len())
	for _, w := range res.Warnings {
		summary += "\nWarning: " + w.Error()
	}

	if outputPath, ok := args["outputPath"].(string); ok && outputPath != "" {
		if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
			return ToolResult{}, fmt.Errorf("writing file: %w", err)
		}
		return ToolResult{
			Content: []ContentBlock{{Type: "text", Text: fmt.Sprintf("%s\nSaved to %s", summary, outputPath)}},
		}, nil
	}

	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())
	return ToolResult{
		Content: []ContentBlock{
			{Type: "text", Text: summary},
			{Type: "resource", MIMEType: "application/pdf", Data: encoded},
		},
	}, nil
}

func (ts *toolset) layoutTableTool() Tool {
	return Tool{
		Name:        "layout_table",
		Description: "Lay out a table without rendering it. Returns the column widths, which rows land on which page, the final y position and any warnings, as JSON.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": definitionProperties(),
		},
		Handler: ts.handleLayoutTable,
	}
}

func (ts *toolset) handleLayoutTable(args map[string]any) (ToolResult, error) {
	def, err := parseDefinition(args)
	if err != nil {
		return ToolResult{}, err
	}
	opts, err := ts.cfg.TableOptions(ts.logger)
	if err != nil {
		return ToolResult{}, err
	}
	p, err := tabledef.Layout(def, opts...)
	if err != nil {
		return ToolResult{}, fmt.Errorf("laying out table: %w", err)
	}

	jsonBytes, _ := json.MarshalIndent(tabledef.Summarize(p), "", "  ")
	return ToolResult{
		Content: []ContentBlock{{Type: "text", Text: string(jsonBytes)}},
	}, nil
}

func (ts *toolset) measureTextTool() Tool {
	return Tool{
		Name:        "measure_text",
		Description: "Fit text into a width the way table cells do, returning the lines and their widths in points.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Text to measure",
				},
				"width": map[string]any{
					"type":        "number",
					"description": "Available width in points",
				},
				"fontSize": map[string]any{
					"type":        "number",
					"description": "Font size in points (default: 9)",
				},
				"bold": map[string]any{
					"type":        "boolean",
					"description": "Use the bold face",
				},
				"overflow": map[string]any{
					"type":        "string",
					"enum":        []string{"wrap", "ellipsize", "clip"},
					"description": "Overflow policy (default: wrap)",
				},
			},
			"required": []string{"text", "width"},
		},
		Handler: ts.handleMeasureText,
	}
}

type measuredLine struct {
	Text  string  `json:"text"`
	Width float64 `json:"width"`
}

func (ts *toolset) handleMeasureText(args map[string]any) (ToolResult, error) {
	s, ok := args["text"].(string)
	if !ok {
		return ToolResult{}, fmt.Errorf("missing 'text' argument")
	}
	width, ok := args["width"].(float64)
	if !ok || width <= 0 {
		return ToolResult{}, fmt.Errorf("'width' must be a positive number")
	}
	face := pdftable.Face{Size: 9}
	if size, ok := args["fontSize"].(float64); ok {
		if size <= 0 {
			return ToolResult{}, fmt.Errorf("'fontSize' must be positive")
		}
		face.Size = size
	}
	if bold, _ := args["bold"].(bool); bold {
		face.Weight = pdftable.WeightBold
	}
	overflow := text.Wrap
	if o, ok := args["overflow"].(string); ok {
		var err error
		if overflow, err = text.ParseOverflow(o); err != nil {
			return ToolResult{}, err
		}
	}

	p, err := ts.cfg.Provider()
	if err != nil {
		return ToolResult{}, err
	}
	m := text.NewMeasurer(p)
	lines, err := m.Measure(s, face, width, overflow)
	if err != nil {
		return ToolResult{}, err
	}
	out := make([]measuredLine, len(lines))
	for i, l := range lines {
		w, err := m.Width(l, face)
		if err != nil {
			return ToolResult{}, err
		}
		out[i] = measuredLine{Text: l, Width: w}
	}

	jsonBytes, _ := json.MarshalIndent(map[string]any{"lines": out}, "", "  ")
	return ToolResult{
		Content: []ContentBlock{{Type: "text", Text: string(jsonBytes)}},
	}, nil
}
