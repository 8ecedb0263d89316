package pdftable

import "fmt"

// Option is a functional option for configuring a Page via NewPage.
type Option func(*pageConfig)

type pageConfig struct {
	orientation string
	size        string
	custom      Size
	margins     Edges
}

// WithOrientation sets the page orientation.
// Use OrientationPortrait ("portrait") or OrientationLandscape ("landscape").
func WithOrientation(orientation string) Option {
	return func(c *pageConfig) {
		c.orientation = orientation
	}
}

// WithPageSize sets the page size by name.
// Use PageSizeA3, PageSizeA4, PageSizeA5, PageSizeLetter, PageSizeLegal or PageSizeTabloid.
func WithPageSize(size string) Option {
	return func(c *pageConfig) {
		c.size = size
	}
}

// WithPageSizeCustom sets a custom page size in points. It takes precedence
// over WithPageSize.
func WithPageSizeCustom(width, height float64) Option {
	return func(c *pageConfig) {
		c.custom = Size{Wd: width, Ht: height}
	}
}

// WithMargins sets the page margins in points.
func WithMargins(top, right, bottom, left float64) Option {
	return func(c *pageConfig) {
		c.margins = Edges{Top: top, Right: right, Bottom: bottom, Left: left}
	}
}

// WithUniformMargin sets the same margin on all four sides.
func WithUniformMargin(v float64) Option {
	return func(c *pageConfig) {
		c.margins = Uniform(v)
	}
}

// NewPage creates a page geometry using functional options.
// If no options are specified, defaults to portrait A4 with 40pt margins.
//
// Example:
//
//	page, err := pdftable.NewPage(
//	    pdftable.WithPageSize(pdftable.PageSizeLetter),
//	    pdftable.WithOrientation(pdftable.OrientationLandscape),
//	    pdftable.WithMargins(45, 24, 45, 24),
//	)
func NewPage(opts ...Option) (Page, error) {
	cfg := &pageConfig{
		orientation: OrientationPortrait,
		size:        PageSizeA4,
		margins:     Uniform(40),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	size := cfg.custom
	if size.Wd == 0 && size.Ht == 0 {
		named, ok := LookupSize(cfg.size)
		if !ok {
			return Page{}, fmt.Errorf("%w: unknown page size %q", ErrInvalidParam, cfg.size)
		}
		size = named
	}

	switch cfg.orientation {
	case OrientationPortrait, "p", "P", "":
		if size.Wd > size.Ht {
			size.Wd, size.Ht = size.Ht, size.Wd
		}
	case OrientationLandscape, "l", "L":
		if size.Wd < size.Ht {
			size.Wd, size.Ht = size.Ht, size.Wd
		}
	default:
		return Page{}, fmt.Errorf("%w: unknown orientation %q", ErrInvalidParam, cfg.orientation)
	}

	page := Page{Width: size.Wd, Height: size.Ht, Margins: cfg.margins}
	if err := page.Validate(); err != nil {
		return Page{}, err
	}
	return page, nil
}
