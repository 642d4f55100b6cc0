package sync

import stdsync "sync"

// keyedMutex serializes sync calls per caller, so two devices of the same
// user cannot interleave their read-modify-write phases. Entries are
// reference counted and dropped once the last holder releases.
type keyedMutex struct {
	mu    stdsync.Mutex
	locks map[string]*callerLock
}

type callerLock struct {
	mu   stdsync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*callerLock)}
}

// Lock blocks until the caller's slot is free and returns the release func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &callerLock{}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
