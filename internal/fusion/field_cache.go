package fusion

import (
	"container/list"
	"fmt"
	"time"

	"github.com/windtrace/windtrace/internal/model"
)

// fieldCacheKey identifies a field request precisely enough that two
// identical requests hit the same cache slot.
type fieldCacheKey struct {
	tsUnixNano int64
	nx, ny     int
	bbox       model.BoundingBox
}

func newFieldCacheKey(ts time.Time, bbox model.BoundingBox, nx, ny int) fieldCacheKey {
	return fieldCacheKey{tsUnixNano: ts.UnixNano(), nx: nx, ny: ny, bbox: bbox}
}

func (k fieldCacheKey) String() string {
	return fmt.Sprintf("%d|%dx%d|%v", k.tsUnixNano, k.nx, k.ny, k.bbox)
}

type fieldCacheEntry struct {
	key   fieldCacheKey
	field *model.WindField
	// window is the [lo,hi] timestamp range this field's construction
	// drew observations from; any insertion landing in this range
	// invalidates the entry (§4.4's cache invalidation rule).
	windowLo, windowHi time.Time
}

// fieldCache is a bounded LRU of WindField results keyed by
// (timestamp, resolution, bbox), invalidated by timestamp-window
// overlap rather than simple key equality.
type fieldCache struct {
	capacity int
	ll       *list.List
	items    map[fieldCacheKey]*list.Element
}

func newFieldCache(capacity int) *fieldCache {
	if capacity < 1 {
		capacity = 1
	}
	return &fieldCache{capacity: capacity, ll: list.New(), items: make(map[fieldCacheKey]*list.Element)}
}

func (c *fieldCache) get(key fieldCacheKey) (*model.WindField, bool) {
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*fieldCacheEntry).field, true
}

func (c *fieldCache) put(key fieldCacheKey, field *model.WindField, windowLo, windowHi time.Time) {
	if el, ok := c.items[key]; ok {
		entry := el.Value.(*fieldCacheEntry)
		entry.field = field
		entry.windowLo, entry.windowHi = windowLo, windowHi
		c.ll.MoveToFront(el)
		return
	}
	entry := &fieldCacheEntry{key: key, field: field, windowLo: windowLo, windowHi: windowHi}
	el := c.ll.PushFront(entry)
	c.items[key] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*fieldCacheEntry).key)
		}
	}
}

// invalidate drops every cached entry whose source window contains
// ts, per an observation inserted at ts.
func (c *fieldCache) invalidate(ts time.Time) {
	var toRemove []*list.Element
	for el := c.ll.Front(); el != nil; el = el.Next() {
		entry := el.Value.(*fieldCacheEntry)
		if !ts.Before(entry.windowLo) && !ts.After(entry.windowHi) {
			toRemove = append(toRemove, el)
		}
	}
	for _, el := range toRemove {
		c.ll.Remove(el)
		delete(c.items, el.Value.(*fieldCacheEntry).key)
	}
}
