package adjudicator

import (
	"sync"

	"github.com/perun-network/icp-adjudicator-go/chantypes"
)

// lockManager hands out one mutex per channel, created lazily, the
// same shape htlcswitch.Switch uses for its linkIndex: a single
// mutex guarding a map whose values are themselves independently
// lockable. This is what gives conclude/dispute per-channel
// linearizability (spec.md §5) without serializing unrelated
// channels behind one global lock.
type lockManager struct {
	mu    sync.Mutex
	locks map[chantypes.ChannelId]*sync.Mutex
}

func newLockManager() *lockManager {
	return &lockManager{locks: make(map[chantypes.ChannelId]*sync.Mutex)}
}

func (lm *lockManager) lockFor(ch chantypes.ChannelId) *sync.Mutex {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	l, ok := lm.locks[ch]
	if !ok {
		l = &sync.Mutex{}
		lm.locks[ch] = l
	}
	return l
}
