package tabledef

import (
	"context"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/pkg/errors"

	"github.com/lvillar/pdftable"
	"github.com/lvillar/pdftable/table"
)

// ScriptHook is a border hook written in JavaScript. The script must define
// a function hook(cell) that returns nothing, or an object with any of:
//
//	top, right, bottom, left  a width, or {width, color}
//	lineWidth, lineColor      defaults for all four edges
//	fill, textColor           "#RRGGBB"
//
// cell carries section, row, column, colSpan, page, firstColumn,
// lastColumn, firstRowInSection, lastRowInSection, lastRowInTable,
// content, lines, width, height and the borders resolved so far.
//
// A ScriptHook is safe for concurrent use; calls are serialised.
type ScriptHook struct {
	mu      sync.Mutex
	vm      *goja.Runtime
	fn      goja.Callable
	timeout time.Duration
}

// NewScriptHook compiles src and looks up its hook function. Each call,
// including running src itself, is interrupted after timeout.
func NewScriptHook(src string, timeout time.Duration) (*ScriptHook, error) {
	h := &ScriptHook{vm: goja.New(), timeout: timeout}
	if _, err := h.run(func() (goja.Value, error) { return h.vm.RunString(src) }); err != nil {
		return nil, errors.Wrap(err, "hook script")
	}
	fn, ok := goja.AssertFunction(h.vm.Get("hook"))
	if !ok {
		return nil, errors.Wrap(pdftable.ErrInvalidParam, "hook script must define function hook(cell)")
	}
	h.fn = fn
	return h, nil
}

// Hook implements table.BorderHook.
func (h *ScriptHook) Hook(c table.CellContext) (table.BorderOverride, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	arg := h.vm.ToValue(cellObject(c))
	v, err := h.run(func() (goja.Value, error) { return h.fn(goja.Undefined(), arg) })
	if err != nil {
		return table.BorderOverride{}, err
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return table.BorderOverride{}, nil
	}
	m, ok := v.Export().(map[string]any)
	if !ok {
		return table.BorderOverride{}, errors.Errorf("hook returned %s, want an object", v.ExportType())
	}
	return parseOverride(m)
}

func (h *ScriptHook) run(call func() (goja.Value, error)) (goja.Value, error) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	stop := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-ctx.Done():
			h.vm.Interrupt(ctx.Err())
		case <-stop:
		}
	}()

	v, err := call()
	close(stop)
	<-exited
	h.vm.ClearInterrupt()

	if err != nil {
		var ie *goja.InterruptedError
		if errors.As(err, &ie) {
			if cause := ie.Unwrap(); cause != nil {
				return nil, errors.Wrap(cause, "hook interrupted")
			}
			return nil, errors.Wrap(context.Canceled, "hook interrupted")
		}
		return nil, err
	}
	return v, nil
}

func edgeObject(e table.Edge) map[string]any {
	return map[string]any{"width": e.Width, "color": e.Color.Hex()}
}

func cellObject(c table.CellContext) map[string]any {
	lines := make([]any, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = l
	}
	return map[string]any{
		"section":           c.Section.String(),
		"row":               c.Row,
		"column":            c.Column,
		"colSpan":           c.ColSpan,
		"page":              c.Page,
		"firstColumn":       c.FirstColumn,
		"lastColumn":        c.LastColumn,
		"firstRowInSection": c.FirstRowInSection,
		"lastRowInSection":  c.LastRowInSection,
		"lastRowInTable":    c.LastRowInTable,
		"content":           c.Content,
		"lines":             lines,
		"width":             c.Width,
		"height":            c.Height,
		"borders": map[string]any{
			"top":    edgeObject(c.Borders.Top),
			"right":  edgeObject(c.Borders.Right),
			"bottom": edgeObject(c.Borders.Bottom),
			"left":   edgeObject(c.Borders.Left),
			"fill":   c.Borders.Fill.Hex(),
			"text":   c.Borders.Text.Hex(),
		},
	}
}

func parseOverride(m map[string]any) (table.BorderOverride, error) {
	var o table.BorderOverride

	var all table.EdgeOverride
	if v, ok := m["lineWidth"]; ok {
		w, err := number("lineWidth", v)
		if err != nil {
			return o, err
		}
		all.Width = &w
	}
	if v, ok := m["lineColor"]; ok {
		c, err := color("lineColor", v)
		if err != nil {
			return o, err
		}
		all.Color = &c
	}
	o.Top, o.Right, o.Bottom, o.Left = all, all, all, all

	for _, e := range []struct {
		key string
		dst *table.EdgeOverride
	}{
		{"top", &o.Top},
		{"right", &o.Right},
		{"bottom", &o.Bottom},
		{"left", &o.Left},
	} {
		v, ok := m[e.key]
		if !ok || v == nil {
			continue
		}
		if err := parseEdge(e.key, v, e.dst); err != nil {
			return o, err
		}
	}

	if v, ok := m["fill"]; ok && v != nil {
		c, err := color("fill", v)
		if err != nil {
			return o, err
		}
		o.Fill = &c
	}
	if v, ok := m["textColor"]; ok && v != nil {
		c, err := color("textColor", v)
		if err != nil {
			return o, err
		}
		o.TextColor = &c
	}
	return o, nil
}

func parseEdge(key string, v any, dst *table.EdgeOverride) error {
	obj, ok := v.(map[string]any)
	if !ok {
		w, err := number(key, v)
		if err != nil {
			return err
		}
		dst.Width = &w
		return nil
	}
	if wv, ok := obj["width"]; ok {
		w, err := number(key+".width", wv)
		if err != nil {
			return err
		}
		dst.Width = &w
	}
	if cv, ok := obj["color"]; ok {
		c, err := color(key+".color", cv)
		if err != nil {
			return err
		}
		dst.Color = &c
	}
	return nil
}

func number(key string, v any) (float64, error) {
	var f float64
	switch n := v.(type) {
	case int64:
		f = float64(n)
	case float64:
		f = n
	default:
		return 0, errors.Wrapf(pdftable.ErrInvalidParam, "hook %s: want a number, got %T", key, v)
	}
	if f < 0 {
		return 0, errors.Wrapf(pdftable.ErrInvalidParam, "hook %s: negative width %g", key, f)
	}
	return f, nil
}

func color(key string, v any) (pdftable.Color, error) {
	s, ok := v.(string)
	if !ok {
		return pdftable.Color{}, errors.Wrapf(pdftable.ErrInvalidParam, "hook %s: want a color string, got %T", key, v)
	}
	c, err := pdftable.ParseHex(s)
	if err != nil {
		return pdftable.Color{}, errors.Wrapf(err, "hook %s", key)
	}
	return c, nil
}
