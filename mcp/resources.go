package mcp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lvillar/pdftable/config"
	"github.com/lvillar/pdftable/table"
	"github.com/lvillar/pdftable/tabledef"
)

var exampleMIME = map[tabledef.Format]string{
	tabledef.FormatJSON:     "application/json",
	tabledef.FormatYAML:     "application/yaml",
	tabledef.FormatMarkdown: "text/markdown",
	tabledef.FormatHTML:     "text/html",
}

// RegisterDefaultResources adds the bundled example definitions and the
// effective defaults. Resources use the table:// scheme.
func RegisterDefaultResources(s *Server, cfg *config.Config) {
	for _, name := range tabledef.Examples() {
		_, format, err := tabledef.Example(name)
		if err != nil {
			s.logger.Error("loading example", "name", name, "error", err)
			continue
		}
		s.AddResource(Resource{
			URI:         "table://examples/" + name,
			Name:        fmt.Sprintf("Example table: %s", name),
			Description: fmt.Sprintf("A %s table definition that can be passed as 'source' to render_table.", format),
			MIMEType:    exampleMIME[format],
			Handler:     handleExampleResource,
		})
	}

	s.AddResource(Resource{
		URI:         "table://defaults",
		Name:        "Table defaults",
		Description: "The default page, cell style and frame applied when a definition does not override them.",
		MIMEType:    "application/json",
		Handler: func(uri string) ([]ResourceContent, error) {
			return handleDefaultsResource(uri, cfg)
		},
	})
}

func handleExampleResource(uri string) ([]ResourceContent, error) {
	name := strings.TrimPrefix(uri, "table://examples/")
	data, format, err := tabledef.Example(name)
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: exampleMIME[format],
		Text:     string(data),
	}}, nil
}

func handleDefaultsResource(uri string, cfg *config.Config) ([]ResourceContent, error) {
	page, err := cfg.PageGeometry()
	if err != nil {
		return nil, err
	}
	st := table.Defaults()
	frame := table.DefaultFrame()
	defaults := map[string]any{
		"page": map[string]any{
			"width":  page.Width,
			"height": page.Height,
			"margin": edges(page.Margins.Top, page.Margins.Right, page.Margins.Bottom, page.Margins.Left),
		},
		"styles": map[string]any{
			"fontSize":         st.FontSize,
			"fontStyle":        st.FontWeight.String(),
			"halign":           st.HAlign.String(),
			"valign":           st.VAlign.String(),
			"fillColor":        st.FillColor.Hex(),
			"textColor":        st.TextColor.Hex(),
			"cellPadding":      edges(st.Padding.Top, st.Padding.Right, st.Padding.Bottom, st.Padding.Left),
			"lineWidth":        edges(st.LineWidths.Top, st.LineWidths.Right, st.LineWidths.Bottom, st.LineWidths.Left),
			"lineColor":        st.LineColor.Hex(),
			"overflow":         st.Overflow.String(),
			"minCellHeight":    st.MinCellHeight,
			"lineHeightFactor": st.LineHeightFactor,
		},
		"frame": map[string]any{
			"leftAccent":        frame.LeftAccentWidth,
			"rightAccent":       frame.RightAccentWidth,
			"edgeColor":         frame.EdgeColor.Hex(),
			"terminalRule":      frame.TerminalRuleWidth,
			"terminalRuleColor": frame.TerminalRuleColor.Hex(),
			"sections":          []string{"head", "body"},
		},
		"showHead": table.HeadEveryPage.String(),
		"showFoot": table.FootLastPage.String(),
	}

	jsonBytes, err := json.MarshalIndent(defaults, "", "  ")
	if err != nil {
		return nil, err
	}
	return []ResourceContent{{
		URI:      uri,
		MIMEType: "application/json",
		Text:     string(jsonBytes),
	}}, nil
}

func edges(top, right, bottom, left float64) map[string]float64 {
	return map[string]float64{"top": top, "right": right, "bottom": bottom, "left": left}
}
