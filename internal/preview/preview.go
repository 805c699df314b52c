// Package preview turns local image bytes into terminal previews and tracks
// the lifetime of every preview it hands out.
package preview

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultWidth  = 40
	DefaultHeight = 16

	halfBlock = "▀"
)

// Options bound the preview raster in terminal cells.
type Options struct {
	Width  int
	Height int
}

func (o Options) normalize() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// Handle is a preview of one image. It stays valid until Release.
type Handle struct {
	id       string
	name     string
	size     int64
	format   string
	bounds   image.Rectangle
	registry *Registry

	mu       sync.Mutex
	art      string
	released bool
}

func (h *Handle) ID() string     { return h.id }
func (h *Handle) Name() string   { return h.name }
func (h *Handle) Size() int64    { return h.size }
func (h *Handle) Format() string { return h.format }

// Dimensions reports the decoded image size in pixels.
func (h *Handle) Dimensions() (int, int) {
	return h.bounds.Dx(), h.bounds.Dy()
}

// View returns the rendered raster, or "" once released.
func (h *Handle) View() string {
	if h == nil {
		return ""
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.art
}

// Released reports whether Release was called.
func (h *Handle) Released() bool {
	if h == nil {
		return true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release frees the raster and unregisters the handle. Safe to call twice.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.art = ""
	h.mu.Unlock()
	if h.registry != nil {
		h.registry.forget(h.id)
	}
}

// Registry hands out preview handles and tracks the ones still live.
type Registry struct {
	mu   sync.Mutex
	next uint64
	live map[string]*Handle
}

func NewRegistry() *Registry {
	return &Registry{live: map[string]*Handle{}}
}

// Live returns the number of handles not yet released.
func (r *Registry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Acquire decodes the image at path and registers a preview for it.
func (r *Registry) Acquire(path string, opts Options) (*Handle, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	info, err := file.Stat()
	if err != nil {
		return nil, err
	}
	handle, err := r.FromReader(filepath.Base(path), file, opts)
	if err != nil {
		return nil, err
	}
	handle.size = info.Size()
	return handle, nil
}

// FromReader decodes an image stream and registers a preview for it.
func (r *Registry) FromReader(name string, reader io.Reader, opts Options) (*Handle, error) {
	img, format, err := image.Decode(bufio.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	opts = opts.normalize()

	r.mu.Lock()
	r.next++
	handle := &Handle{
		id:       fmt.Sprintf("preview://%d", r.next),
		name:     name,
		format:   format,
		bounds:   img.Bounds(),
		registry: r,
		art:      Render(img, opts),
	}
	r.live[handle.id] = handle
	r.mu.Unlock()
	return handle, nil
}

func (r *Registry) forget(id string) {
	r.mu.Lock()
	delete(r.live, id)
	r.mu.Unlock()
}

// Render scales img to fit the cell box and draws it with half blocks: each
// cell carries two vertical pixels, the top as foreground and the bottom as
// background.
func Render(img image.Image, opts Options) string {
	opts = opts.normalize()
	cols, rows := fitCells(img.Bounds(), opts)
	if cols == 0 || rows == 0 {
		return ""
	}
	scaled := image.NewRGBA(image.Rect(0, 0, cols, rows*2))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			top := hexColor(scaled.At(x, y*2))
			bottom := hexColor(scaled.At(x, y*2+1))
			cell := lipgloss.NewStyle().Foreground(top).Background(bottom)
			b.WriteString(cell.Render(halfBlock))
		}
		if y < rows-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func fitCells(bounds image.Rectangle, opts Options) (int, int) {
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	maxW, maxH := opts.Width, opts.Height*2
	cols, pixelRows := w, h
	if cols > maxW {
		pixelRows = pixelRows * maxW / cols
		cols = maxW
	}
	if pixelRows > maxH {
		cols = cols * maxH / pixelRows
		pixelRows = maxH
	}
	if cols < 1 {
		cols = 1
	}
	rows := (pixelRows + 1) / 2
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}
