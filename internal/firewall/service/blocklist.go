package service

import "sync"

// Blocklist is the set of client identities explicitly denied. Membership is
// binary with no expiry; an identity stays blocked until explicitly
// unblocked or the process restarts.
type Blocklist struct {
	mu         sync.RWMutex
	identities map[string]struct{}
}

// NewBlocklist creates an empty Blocklist.
func NewBlocklist() *Blocklist {
	return &Blocklist{
		identities: make(map[string]struct{}),
	}
}

// Block adds the identity to the set. Returns false when it was already
// present.
func (b *Blocklist) Block(identity string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.identities[identity]; ok {
		return false
	}
	b.identities[identity] = struct{}{}
	return true
}

// Unblock removes the identity from the set. Returns false when it was not
// present.
func (b *Blocklist) Unblock(identity string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.identities[identity]; !ok {
		return false
	}
	delete(b.identities, identity)
	return true
}

// IsBlocked reports membership.
func (b *Blocklist) IsBlocked(identity string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.identities[identity]
	return ok
}

// Len returns the number of blocked identities.
func (b *Blocklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.identities)
}
