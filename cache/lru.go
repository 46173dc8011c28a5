// Package cache provides the shared encoded-blob cache: a thread-safe LRU
// keyed by opaque string ids and bounded by a configurable byte budget.
// One cache is shared across open documents; a miss is never an error,
// it just means the caller regenerates the blob.
package cache

// lruNode is one node of the intrusive recency list.
type lruNode[K any] struct {
	key        K
	prev, next *lruNode[K]
}

// lruList is a doubly-linked recency list. The front is most recently
// used, the back is the eviction candidate. Not safe for concurrent use;
// callers hold the cache lock.
type lruList[K any] struct {
	head, tail *lruNode[K]
	length     int
}

func newLRUList[K any]() *lruList[K] {
	return &lruList[K]{}
}

// Len returns the number of nodes in the list.
func (l *lruList[K]) Len() int {
	return l.length
}

// PushFront inserts a new node for key at the front and returns it.
func (l *lruList[K]) PushFront(key K) *lruNode[K] {
	n := &lruNode[K]{key: key}
	l.attachFront(n)
	l.length++
	return n
}

// MoveToFront marks a node as most recently used.
func (l *lruList[K]) MoveToFront(n *lruNode[K]) {
	if l.head == n {
		return
	}
	l.detach(n)
	l.attachFront(n)
}

// Remove unlinks a node.
func (l *lruList[K]) Remove(n *lruNode[K]) {
	l.detach(n)
	n.prev, n.next = nil, nil
	l.length--
}

// RemoveOldest unlinks and returns the least recently used key.
func (l *lruList[K]) RemoveOldest() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	n := l.tail
	l.Remove(n)
	return n.key, true
}

// Clear drops every node.
func (l *lruList[K]) Clear() {
	l.head, l.tail = nil, nil
	l.length = 0
}

func (l *lruList[K]) attachFront(n *lruNode[K]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	}
	l.head = n
	if l.tail == nil {
		l.tail = n
	}
}

func (l *lruList[K]) detach(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else if l.head == n {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else if l.tail == n {
		l.tail = n.prev
	}
}
