package system

import (
	"image"
	"sync"
)

// FramePool recycles RGBA frame buffers of one fixed surface size to
// keep the garbage collector out of the encode hot path. Each exporter
// owns its own pool; pools are never shared across surfaces.
type FramePool struct {
	rect image.Rectangle
	pool sync.Pool
}

// NewFramePool creates a pool producing width x height buffers.
func NewFramePool(width, height int) *FramePool {
	p := &FramePool{rect: image.Rect(0, 0, width, height)}
	p.pool.New = func() any { return image.NewRGBA(p.rect) }
	return p
}

// Get returns a buffer of the pool's surface size. Contents are
// whatever the previous user left; callers overwrite every pixel.
func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put hands a buffer back for reuse. Buffers of another size are
// dropped so a misrouted image can never be handed out later.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || !img.Rect.Eq(p.rect) {
		return
	}
	p.pool.Put(img)
}
