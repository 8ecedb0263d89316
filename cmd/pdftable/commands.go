package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/config"
	"github.com/lvillar/pdftable/mcp"
	"github.com/lvillar/pdftable/tabledef"
	"github.com/lvillar/pdftable/text"
)

// app holds what the Before hook resolves for every subcommand.
type app struct {
	in     io.Reader
	out    io.Writer
	errw   io.Writer
	cfg    *config.Config
	logger *slog.Logger
}

func newCommand(in io.Reader, out, errw io.Writer) *cli.Command {
	a := &app{in: in, out: out, errw: errw}

	formatFlag := &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "definition format: json, yaml, markdown or html (default: from the file extension or content)",
	}

	return &cli.Command{
		Name:      "pdftable",
		Usage:     "Lay out and render paginated tables to PDF",
		Version:   mcp.Version,
		Reader:    in,
		Writer:    out,
		ErrWriter: errw,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
				Sources: cli.EnvVars(config.EnvVar),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override the configured log level (debug, info, warn, error)",
			},
		},
		Before: a.before,
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "Render a table definition to PDF",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					formatFlag,
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "output PDF path (default: FILE with a .pdf extension, stdout for -)",
					},
					&cli.BoolFlag{
						Name:  "no-compress",
						Usage: "write uncompressed content streams",
					},
				},
				Action: a.render,
			},
			{
				Name:      "layout",
				Usage:     "Show column widths and page breaks without rendering",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					formatFlag,
					&cli.BoolFlag{
						Name:  "json",
						Usage: "print the summary as JSON",
					},
				},
				Action: a.layout,
			},
			{
				Name:      "measure",
				Usage:     "Fit text into a width the way table cells do",
				ArgsUsage: "TEXT",
				Flags: []cli.Flag{
					&cli.FloatFlag{
						Name:     "width",
						Aliases:  []string{"w"},
						Usage:    "available width in points",
						Required: true,
					},
					&cli.FloatFlag{
						Name:  "size",
						Usage: "font size in points",
						Value: 9,
					},
					&cli.BoolFlag{
						Name:  "bold",
						Usage: "use the bold face",
					},
					&cli.StringFlag{
						Name:  "overflow",
						Usage: "wrap, ellipsize or clip",
						Value: "wrap",
					},
				},
				Action: a.measure,
			},
			{
				Name:      "examples",
				Usage:     "List the bundled example definitions, or print one",
				ArgsUsage: "[NAME]",
				Action:    a.examples,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the table tools over MCP on stdio",
				Action: a.serveMCP,
			},
		},
	}
}

func (a *app) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		var err error
		if cfg, err = config.LoadFile(path); err != nil {
			return ctx, err
		}
	}
	if level := cmd.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	logger, err := cfg.Logger(a.errw)
	if err != nil {
		return ctx, err
	}
	a.cfg, a.logger = cfg, logger
	return ctx, nil
}

// readDefinition loads the FILE argument. "-" reads standard input.
func (a *app) readDefinition(cmd *cli.Command) (*tabledef.Definition, string, error) {
	path := cmd.Args().First()
	if path == "" {
		return nil, "", errors.New("missing FILE argument")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", errors.Wrapf(err, "reading %s", path)
	}

	format := tabledef.DetectFormat(data)
	if f := cmd.String("format"); f != "" {
		if format, err = tabledef.ParseFormat(f); err != nil {
			return nil, "", err
		}
	} else if f, err := tabledef.ParseFormat(filepath.Ext(path)); err == nil {
		format = f
	}

	def, err := tabledef.Parse(data, format)
	if err != nil {
		return nil, "", errors.Wrap(err, path)
	}
	return def, path, nil
}

func (a *app) render(ctx context.Context, cmd *cli.Command) error {
	def, path, err := a.readDefinition(cmd)
	if err != nil {
		return err
	}
	opts, err := a.cfg.TableOptions(a.logger)
	if err != nil {
		return err
	}
	if cmd.Bool("no-compress") {
		opts = append(opts, tabledef.WithCompression(false))
	}

	var buf bytes.Buffer
	res, err := tabledef.Render(&buf, def, opts...)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		a.logger.Warn("layout warning", "warning", w)
	}

	output := cmd.String("output")
	if output == "" && path != "-" {
		output = strings.TrimSuffix(path, filepath.Ext(path)) + ".pdf"
	}
	if output == "" || output == "-" {
		_, err = a.out.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "writing PDF")
	}
	a.logger.Info("rendered table", "output", output, "pages", res.Pages, "bytes", buf.Len())
	return nil
}

func (a *app) layout(ctx context.Context, cmd *cli.Command) error {
	def, _, err := a.readDefinition(cmd)
	if err != nil {
		return err
	}
	opts, err := a.cfg.TableOptions(a.logger)
	if err != nil {
		return err
	}
	p, err := tabledef.Layout(def, opts...)
	if err != nil {
		return err
	}

	s := tabledef.Summarize(p)
	if cmd.Bool("json") {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	_, err = fmt.Fprintln(a.out, summaryReport(s))
	return err
}

func (a *app) measure(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() == 0 {
		return errors.New("missing TEXT argument")
	}
	s := strings.Join(cmd.Args().Slice(), " ")

	width := cmd.Float("width")
	if width <= 0 {
		return errors.Wrap(pdftable.ErrInvalidParam, "--width must be positive")
	}
	face := pdftable.Face{Size: cmd.Float("size")}
	if face.Size <= 0 {
		return errors.Wrap(pdftable.ErrInvalidParam, "--size must be positive")
	}
	if cmd.Bool("bold") {
		face.Weight = pdftable.WeightBold
	}
	overflow, err := text.ParseOverflow(cmd.String("overflow"))
	if err != nil {
		return err
	}

	p, err := a.cfg.Provider()
	if err != nil {
		return err
	}
	m := text.NewMeasurer(p)
	lines, err := m.Measure(s, face, width, overflow)
	if err != nil {
		return err
	}
	widths := make([]float64, len(lines))
	for i, l := range lines {
		if widths[i], err = m.Width(l, face); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(a.out, measureReport(lines, widths))
	return err
}

func (a *app) examples(ctx context.Context, cmd *cli.Command) error {
	if name := cmd.Args().First(); name != "" {
		data, _, err := tabledef.Example(name)
		if err != nil {
			return err
		}
		_, err = a.out.Write(data)
		return err
	}
	for _, name := range tabledef.Examples() {
		_, format, err := tabledef.Example(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "%-12s %s\n", name, format)
	}
	return nil
}

func (a *app) serveMCP(ctx context.Context, cmd *cli.Command) error {
	server := mcp.NewServer(a.in, a.out, a.logger)
	mcp.RegisterDefaultTools(server, a.cfg)
	mcp.RegisterDefaultResources(server, a.cfg)
	a.logger.Info("serving MCP on stdio", "name", mcp.Name, "version", mcp.Version)
	return server.Run(ctx)
}
