// Package config provides configuration loading for the pdftable commands.
//
// Configuration is loaded from a single YAML file named by the
// PDFTABLE_CONFIG environment variable or the --config flag. Without
// either, Default is used. Settings in a table definition (page, styles)
// take precedence over the configured defaults.
//
// Example:
//
//	page:
//	  size: Letter
//	  orientation: landscape
//	  margin: {top: 45, right: 24, bottom: 45, left: 24}
//	fonts:
//	  regular: ${HOME}/fonts/Roboto-Regular.ttf
//	  bold: ${HOME}/fonts/Roboto-Bold.ttf
//	  shaping: true
//	render:
//	  compress: true
//	  hook_timeout: 2s
//	log:
//	  level: debug
//	  format: json
package config

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/font"
	"github.com/lvillar/pdftable/tabledef"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "PDFTABLE_CONFIG"

// Config is the configuration shared by the CLI and the MCP server.
type Config struct {
	// Page is the page used when a definition has no page section.
	Page PageConfig `yaml:"page"`

	// Fonts selects the font programs text is measured and embedded with.
	Fonts FontsConfig `yaml:"fonts"`

	// Render configures PDF output.
	Render RenderConfig `yaml:"render"`

	// Log configures the slog handler.
	Log LogConfig `yaml:"log"`
}

// PageConfig configures the default page.
type PageConfig struct {
	// Size is a named size: A3, A4, A5, Letter, Legal or Tabloid.
	// Default: A4
	Size string `yaml:"size"`

	// Orientation is portrait or landscape.
	// Default: portrait
	Orientation string `yaml:"orientation"`

	// Margin in points.
	// Default: 40 on every side
	Margin Margin `yaml:"margin"`
}

// Margin is a page margin in points.
type Margin struct {
	Top    float64 `yaml:"top"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Left   float64 `yaml:"left"`
}

// FontsConfig configures fonts. Both paths empty means the bundled Go
// fonts.
type FontsConfig struct {
	// Regular is the path of a TrueType font for normal text.
	Regular string `yaml:"regular"`

	// Bold is the path of a TrueType font for bold text. Empty means the
	// regular font also serves bold text.
	Bold string `yaml:"bold"`

	// Shaping measures line widths with HarfBuzz shaping.
	Shaping bool `yaml:"shaping"`
}

// RenderConfig configures PDF output.
type RenderConfig struct {
	// Compress deflates content and font streams.
	// Default: true
	Compress bool `yaml:"compress"`

	// HookTimeout bounds one call of a scripted border hook.
	// Default: 1s
	HookTimeout string `yaml:"hook_timeout"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	// Default: info
	Level string `yaml:"level"`

	// Format is text or json.
	// Default: text
	Format string `yaml:"format"`
}

// Default returns the default configuration. It is also the base a config
// file is loaded onto, so a file only needs the keys it changes.
func Default() *Config {
	return &Config{
		Page: PageConfig{
			Size:        pdftable.PageSizeA4,
			Orientation: pdftable.OrientationPortrait,
			Margin:      Margin{Top: 40, Right: 40, Bottom: 40, Left: 40},
		},
		Render: RenderConfig{
			Compress:    true,
			HookTimeout: "1s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads the file named by PDFTABLE_CONFIG, or returns Default when the
// variable is unset.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. ${VAR}
// references in font paths are expanded.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	cfg.Fonts.Regular = os.ExpandEnv(cfg.Fonts.Regular)
	cfg.Fonts.Bold = os.ExpandEnv(cfg.Fonts.Bold)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Validate checks every value that can be checked without reading files.
func (c *Config) Validate() error {
	if _, err := c.PageGeometry(); err != nil {
		return err
	}
	if _, err := c.hookTimeout(); err != nil {
		return err
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errors.Wrapf(pdftable.ErrInvalidParam, "log format %q", c.Log.Format)
	}
	if c.Fonts.Bold != "" && c.Fonts.Regular == "" {
		return errors.Wrap(pdftable.ErrInvalidParam, "fonts: bold is set without regular")
	}
	return nil
}

// PageGeometry returns the configured default page.
func (c *Config) PageGeometry() (pdftable.Page, error) {
	m := c.Page.Margin
	return pdftable.NewPage(
		pdftable.WithPageSize(c.Page.Size),
		pdftable.WithOrientation(c.Page.Orientation),
		pdftable.WithMargins(m.Top, m.Right, m.Bottom, m.Left),
	)
}

// LoadFonts reads the configured font programs, or returns the bundled Go
// fonts.
func (c *Config) LoadFonts() (*font.SFNT, error) {
	if c.Fonts.Regular == "" {
		return font.GoFonts()
	}
	regular, err := os.ReadFile(c.Fonts.Regular)
	if err != nil {
		return nil, errors.Wrap(err, "reading regular font")
	}
	var bold []byte
	if c.Fonts.Bold != "" {
		if bold, err = os.ReadFile(c.Fonts.Bold); err != nil {
			return nil, errors.Wrap(err, "reading bold font")
		}
	}
	return font.NewSFNT(regular, bold)
}

// Provider returns the metrics provider matching the PDF canvas: the
// configured fonts, shaped if enabled, restricted to WinAnsi.
func (c *Config) Provider() (font.Provider, error) {
	fonts, err := c.LoadFonts()
	if err != nil {
		return nil, err
	}
	if !c.Fonts.Shaping {
		return font.WinAnsi(fonts), nil
	}
	sh, err := font.NewShaper(fonts)
	if err != nil {
		return nil, err
	}
	return font.WinAnsi(sh), nil
}

// Logger builds a logger writing to w with the configured level and format.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// TableOptions turns the configuration into options for tabledef.Render
// and tabledef.Layout.
func (c *Config) TableOptions(logger *slog.Logger) ([]tabledef.Option, error) {
	page, err := c.PageGeometry()
	if err != nil {
		return nil, err
	}
	fonts, err := c.LoadFonts()
	if err != nil {
		return nil, err
	}
	timeout, err := c.hookTimeout()
	if err != nil {
		return nil, err
	}
	return []tabledef.Option{
		tabledef.WithPage(page),
		tabledef.WithFonts(fonts),
		tabledef.WithShaping(c.Fonts.Shaping),
		tabledef.WithCompression(c.Render.Compress),
		tabledef.WithHookTimeout(timeout),
		tabledef.WithLogger(logger),
	}, nil
}

func (c *Config) hookTimeout() (time.Duration, error) {
	if c.Render.HookTimeout == "" {
		return time.Second, nil
	}
	d, err := time.ParseDuration(c.Render.HookTimeout)
	if err != nil || d <= 0 {
		return 0, errors.Wrapf(pdftable.ErrInvalidParam, "render.hook_timeout %q", c.Render.HookTimeout)
	}
	return d, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.Wrapf(pdftable.ErrInvalidParam, "log level %q", s)
	}
	return level, nil
}
