package suggest

import (
	"math"
	"sync"

	"github.com/charmbracelet/log"
)

// OfferedCache remembers recently offered items so an editor can accept one
// by ID. The least recently offered items are evicted first.
type OfferedCache struct {
	items       map[string]SuggestionItem
	accessTime  map[string]int64
	accessCount int64
	maxItems    int
	hits        int64
	mu          sync.Mutex
}

func NewOfferedCache(maxItems int) *OfferedCache {
	if maxItems < 1 {
		maxItems = 1
	}
	return &OfferedCache{
		items:      make(map[string]SuggestionItem, maxItems),
		accessTime: make(map[string]int64, maxItems),
		maxItems:   maxItems,
	}
}

// Put records items, evicting the oldest when the cache is full.
func (oc *OfferedCache) Put(items []SuggestionItem) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	for _, it := range items {
		if _, ok := oc.items[it.ID]; !ok && len(oc.items) >= oc.maxItems {
			oc.evictLRU()
		}
		oc.items[it.ID] = it
		oc.accessTime[it.ID] = oc.nextAccessTime()
	}
}

// Get returns the item offered under id.
func (oc *OfferedCache) Get(id string) (SuggestionItem, bool) {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	it, ok := oc.items[id]
	if ok {
		oc.hits++
		oc.accessTime[id] = oc.nextAccessTime()
	}
	return it, ok
}

// Clear drops every item. Items from an older snapshot are cleared when a
// new one is published.
func (oc *OfferedCache) Clear() {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	clear(oc.items)
	clear(oc.accessTime)
}

func (oc *OfferedCache) Stats() map[string]int {
	oc.mu.Lock()
	defer oc.mu.Unlock()

	return map[string]int{
		"offeredItems":    len(oc.items),
		"maxOfferedItems": oc.maxItems,
		"offeredHits":     int(oc.hits),
	}
}

func (oc *OfferedCache) nextAccessTime() int64 {
	oc.accessCount++
	return oc.accessCount
}

func (oc *OfferedCache) evictLRU() {
	var oldestID string
	var oldestTime int64 = math.MaxInt64

	for id, t := range oc.accessTime {
		if t < oldestTime {
			oldestTime = t
			oldestID = id
		}
	}

	if oldestID != "" {
		delete(oc.items, oldestID)
		delete(oc.accessTime, oldestID)
		log.Debugf("Evicted offered item %s", oldestID)
	}
}
