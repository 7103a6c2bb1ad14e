// Package pages partitions the infinite canvas into fixed-size virtual
// pages and tracks which pages hold content. The index is owned by one
// replay session; nothing here is process-global.
package pages

import (
	"math"
	"sort"
	"sync"

	"github.com/ivlev/inkreplay/internal/element"
)

// Key identifies a page cell in the infinite grid. The origin page is
// (0,0); rows grow downward, columns rightward.
type Key struct {
	Row int
	Col int
}

// Page is one grid cell plus the elements currently inside its bounds.
// The element slice is computed by Rebuild, not owned.
type Page struct {
	Key      Key
	Elements []*element.Element
}

// MinTimestamp returns the earliest timestamp among the page's
// elements, or +Inf for an empty page.
func (p *Page) MinTimestamp() float64 {
	min := math.Inf(1)
	for _, e := range p.Elements {
		if e.Timestamp < min {
			min = e.Timestamp
		}
	}
	return min
}

// Index maps elements to virtual pages of a fixed size. Pages are
// created lazily on first reference and cached by key.
type Index struct {
	pageW float64
	pageH float64

	mu    sync.RWMutex
	pages map[Key]*Page
}

// NewIndex creates an index over pages of the given size.
func NewIndex(pageW, pageH float64) *Index {
	return &Index{
		pageW: pageW,
		pageH: pageH,
		pages: map[Key]*Page{},
	}
}

// KeyFor maps a world point to its page cell. The boundary is closed on
// the low side and open on the high side: x equal to the page width
// lands on the next column, never the current one.
func (x *Index) KeyFor(p element.Point) Key {
	return Key{
		Row: int(math.Floor(p.Y / x.pageH)),
		Col: int(math.Floor(p.X / x.pageW)),
	}
}

// FindPage returns the page containing the element's anchor point,
// creating it on first reference. An element straddling a boundary is
// assigned entirely to its anchor's page.
func (x *Index) FindPage(e *element.Element) *Page {
	key := x.KeyFor(e.Anchor())

	x.mu.Lock()
	defer x.mu.Unlock()
	return x.pageLocked(key)
}

func (x *Index) pageLocked(key Key) *Page {
	if p, ok := x.pages[key]; ok {
		return p
	}
	p := &Page{Key: key}
	x.pages[key] = p
	return p
}

// Rebuild clears every page association and reassigns all elements in
// one pass. The result depends only on the element set, so repeated
// calls are idempotent.
func (x *Index) Rebuild(elements []*element.Element) {
	x.mu.Lock()
	defer x.mu.Unlock()

	for _, p := range x.pages {
		p.Elements = nil
	}
	for _, e := range elements {
		p := x.pageLocked(x.KeyFor(e.Anchor()))
		p.Elements = append(p.Elements, e)
	}
}

// AnimationOrder returns the non-empty pages ordered by the minimum
// timestamp of their contents, earliest-drawn page first.
func (x *Index) AnimationOrder() []*Page {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var ordered []*Page
	for _, p := range x.pages {
		if len(p.Elements) > 0 {
			ordered = append(ordered, p)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		ti, tj := ordered[i].MinTimestamp(), ordered[j].MinTimestamp()
		if ti != tj {
			return ti < tj
		}
		// Equal first-draw times: fall back to grid order so the
		// result stays deterministic.
		if ordered[i].Key.Row != ordered[j].Key.Row {
			return ordered[i].Key.Row < ordered[j].Key.Row
		}
		return ordered[i].Key.Col < ordered[j].Key.Col
	})
	return ordered
}

// PageCount returns the number of non-empty pages.
func (x *Index) PageCount() int {
	x.mu.RLock()
	defer x.mu.RUnlock()

	n := 0
	for _, p := range x.pages {
		if len(p.Elements) > 0 {
			n++
		}
	}
	return n
}

// Bounds returns the world rectangle covered by a page key.
func (x *Index) Bounds(key Key) (minX, minY, maxX, maxY float64) {
	minX = float64(key.Col) * x.pageW
	minY = float64(key.Row) * x.pageH
	return minX, minY, minX + x.pageW, minY + x.pageH
}

// PageSize returns the configured cell dimensions.
func (x *Index) PageSize() (w, h float64) {
	return x.pageW, x.pageH
}
