package decoration

import "sync"

const tagAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TagAllocator hands out the per-store prefix used in decoration ids.
// Tags cycle through a-z then A-Z, so ids from stores created close together
// never collide. It is safe for concurrent use.
type TagAllocator struct {
	mu   sync.Mutex
	next int
}

// NewTagAllocator creates an allocator whose first tag is "a".
func NewTagAllocator() *TagAllocator {
	return &TagAllocator{}
}

// Next returns the next tag.
func (a *TagAllocator) Next() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	tag := tagAlphabet[a.next : a.next+1]
	a.next = (a.next + 1) % len(tagAlphabet)
	return tag
}

// DefaultTagAllocator is used by stores created without WithTagAllocator.
var DefaultTagAllocator = NewTagAllocator()
