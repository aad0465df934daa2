package sim

import (
	"sync"

	"github.com/joeblew999/plat-map/internal/geo"
	"github.com/joeblew999/plat-map/internal/provider"
)

// Renderer is a headless page: elements with fixed positions and a cursor.
type Renderer struct {
	mu      sync.Mutex
	cursor  string
	offsets map[string]geo.Pixel
	sizes   map[string][2]float64
	cursors []string
}

var _ provider.Renderer = (*Renderer)(nil)

// NewRenderer creates a Renderer with the cursor set to "auto".
func NewRenderer() *Renderer {
	return &Renderer{
		cursor:  "auto",
		offsets: make(map[string]geo.Pixel),
		sizes:   make(map[string][2]float64),
	}
}

// SetElement places element id at offset with the given outer size.
func (r *Renderer) SetElement(id string, offset geo.Pixel, width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets[id] = offset
	r.sizes[id] = [2]float64{width, height}
}

func (r *Renderer) ElementOffset(id string) geo.Pixel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.offsets[id]
}

func (r *Renderer) OuterDimensions(id string) (float64, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.sizes[id]
	return s[0], s[1]
}

// MoveElement keeps the element's size. An unknown element is created with no size.
func (r *Renderer) MoveElement(id string, offset geo.Pixel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.offsets[id] = offset
}

func (r *Renderer) SetCursor(c string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = c
	r.cursors = append(r.cursors, c)
}

func (r *Renderer) Cursor() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cursor
}

// CursorHistory returns every cursor set so far.
func (r *Renderer) CursorHistory() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.cursors...)
}
