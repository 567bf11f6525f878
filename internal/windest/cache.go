package windest

import "container/list"

// angleDiffCache is a bounded LRU keyed on a pair of headings rounded
// to 0.5 degrees, exploiting the heavy redundancy of the VMG grid
// search (spec.md §4.3's "bounded LRU of angle-difference results").
// No generic LRU exists anywhere in the dependency stack this engine
// draws from, and this is small enough (one map + one list) not to
// warrant pulling in a single-purpose third-party cache library.
type angleDiffCache struct {
	capacity int
	ll       *list.List
	items    map[[2]float64]*list.Element
}

type cacheEntry struct {
	key   [2]float64
	value float64
}

func newAngleDiffCache(capacity int) *angleDiffCache {
	if capacity < 1 {
		capacity = 1
	}
	return &angleDiffCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[[2]float64]*list.Element, capacity),
	}
}

func roundHalfDeg(v float64) float64 {
	return float64(int(v*2+0.5)) / 2
}

func (c *angleDiffCache) key(a, b float64) [2]float64 {
	return [2]float64{roundHalfDeg(a), roundHalfDeg(b)}
}

func (c *angleDiffCache) get(a, b float64) (float64, bool) {
	k := c.key(a, b)
	el, ok := c.items[k]
	if !ok {
		return 0, false
	}
	c.ll.MoveToFront(el)
	return el.Value.(*cacheEntry).value, true
}

func (c *angleDiffCache) put(a, b, value float64) {
	k := c.key(a, b)
	if el, ok := c.items[k]; ok {
		el.Value.(*cacheEntry).value = value
		c.ll.MoveToFront(el)
		return
	}
	el := c.ll.PushFront(&cacheEntry{key: k, value: value})
	c.items[k] = el
	if c.ll.Len() > c.capacity {
		oldest := c.ll.Back()
		if oldest != nil {
			c.ll.Remove(oldest)
			delete(c.items, oldest.Value.(*cacheEntry).key)
		}
	}
}

func (c *angleDiffCache) len() int {
	return c.ll.Len()
}
