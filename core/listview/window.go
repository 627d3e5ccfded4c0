// Package listview computes the materialized window of a long fixed-height list
// and drives its keyboard/mouse focus.
package listview

import (
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var ErrInvalidItemHeight = errors.New("item height must be greater than 0")

// Config describes the list geometry, in pixels. Overscan is a number of rows.
type Config struct {
	ItemHeight      int `json:"item_height"`
	ContainerHeight int `json:"container_height" validate:"gte=0"`
	Overscan        int `json:"overscan" validate:"gte=0"`
}

func ConfigFrom(conf core.ListConfig) Config {
	return Config{
		ItemHeight:      conf.ItemHeight,
		ContainerHeight: conf.ContainerHeight,
		Overscan:        conf.Overscan,
	}
}

type (
	// Row is a materialized row, absolutely positioned at Top.
	Row struct {
		Index int `json:"index"`
		Top   int `json:"top"`
	}

	// Window is the range [Start, End) of rows to materialize.
	Window struct {
		Start       int   `json:"start"`
		End         int   `json:"end"`
		TotalHeight int   `json:"total_height"`
		Rows        []Row `json:"rows"`
	}
)

func (w Window) Len() int { return w.End - w.Start }

// Renderer computes windows for a given geometry.
type Renderer struct {
	conf         Config
	visibleCount int
}

// New validates cfg and returns a Renderer. A non-positive item height is rejected with ErrInvalidItemHeight.
func New(cfg Config) (*Renderer, error) {
	if cfg.ItemHeight <= 0 {
		return nil, ErrInvalidItemHeight
	}
	if err := core.TranslateValidationErrors(core.Validate.Struct(cfg)); err != nil {
		return nil, err
	}
	return &Renderer{
		conf:         cfg,
		visibleCount: ceilDiv(cfg.ContainerHeight, cfg.ItemHeight),
	}, nil
}

func (r *Renderer) Config() Config { return r.conf }

// TotalHeight is the full scrollable height of n rows.
func (r *Renderer) TotalHeight(n int) int {
	if n <= 0 {
		return 0
	}
	return n * r.conf.ItemHeight
}

// MaxScrollTop is the largest meaningful scroll offset for n rows.
func (r *Renderer) MaxScrollTop(n int) int {
	return max(0, r.TotalHeight(n)-r.conf.ContainerHeight)
}

// ClampScrollTop keeps scrollTop within [0, MaxScrollTop(n)].
func (r *Renderer) ClampScrollTop(n, scrollTop int) int {
	return min(max(scrollTop, 0), r.MaxScrollTop(n))
}

// Window returns the rows of an n-row list to materialize at scrollTop:
// the visible rows plus Overscan rows on each side, clamped to [0, n).
func (r *Renderer) Window(n, scrollTop int) Window {
	if n <= 0 {
		return Window{Rows: []Row{}}
	}
	h := r.conf.ItemHeight
	start := r.ClampScrollTop(n, scrollTop) / h
	end := min(start+r.visibleCount+r.conf.Overscan, n)
	start = min(max(0, start-r.conf.Overscan), end)

	w := Window{
		Start:       start,
		End:         end,
		TotalHeight: r.TotalHeight(n),
		Rows:        make([]Row, 0, end-start),
	}
	for i := start; i < end; i++ {
		w.Rows = append(w.Rows, Row{Index: i, Top: i * h})
	}
	return w
}

// ScrollIntoView returns the scroll offset closest to scrollTop that shows row index entirely.
// When the container is shorter than a row, the row top wins.
func (r *Renderer) ScrollIntoView(n, index, scrollTop int) int {
	if index < 0 || index >= n {
		return r.ClampScrollTop(n, scrollTop)
	}
	top := index * r.conf.ItemHeight
	bottom := top + r.conf.ItemHeight
	switch {
	case top < scrollTop:
		scrollTop = top
	case bottom > scrollTop+r.conf.ContainerHeight:
		scrollTop = min(bottom-r.conf.ContainerHeight, top)
	}
	return r.ClampScrollTop(n, scrollTop)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
