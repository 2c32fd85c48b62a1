package subnettree

import "sync"

// Locked is a Tree guarded by a read-write mutex: mutations are serialized
// while matches may run concurrently with each other.
type Locked struct {
	mu   sync.RWMutex
	tree *Tree
}

func NewLocked() *Locked {
	return &Locked{tree: New()}
}

func (l *Locked) Insert(network uint32, bits int, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.tree.Insert(network, bits, owner)
}

func (l *Locked) Remove(network uint32, bits int, owner string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.tree.Remove(network, bits, owner)
}

func (l *Locked) Match(addr uint32) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.tree.Match(addr)
}

func (l *Locked) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.tree.Len()
}

// Walk holds the read lock for the whole walk; fn must not call back into l
// to mutate it.
func (l *Locked) Walk(fn func(network uint32, bits int, owners []string) bool) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.tree.Walk(fn)
}
