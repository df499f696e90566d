package memstore

import "sync"

// RWLock is a readers/writer lock. Readers share the lock; a writer holds it
// alone. Once a writer is waiting, newly arriving readers queue behind it, and
// a writer releasing the lock lets the readers already queued go first.
//
// The zero value is an unlocked lock.
type RWLock struct {
	mu   sync.Mutex
	cond *sync.Cond

	readers        int
	writing        bool
	writersWaiting int
	readersWaiting int
	// readerPass is the number of queued readers admitted ahead of waiting
	// writers by the last Unlock.
	readerPass int
}

// RLock acquires the read side.
func (l *RWLock) RLock() {
	l.mu.Lock()
	l.readersWaiting++
	for l.writing || (l.writersWaiting > 0 && l.readerPass == 0) {
		l.wait()
	}
	l.readersWaiting--
	if l.readerPass > 0 {
		l.readerPass--
	}
	l.readers++
	l.mu.Unlock()
}

// RUnlock releases the read side.
func (l *RWLock) RUnlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers == 0 {
		panic("memstore: RUnlock of unlocked RWLock")
	}
	l.readers--
	if l.readers == 0 {
		l.broadcast()
	}
}

// Lock acquires the write side.
func (l *RWLock) Lock() {
	l.mu.Lock()
	l.writersWaiting++
	for l.writing || l.readers > 0 || l.readerPass > 0 {
		l.wait()
	}
	l.writersWaiting--
	l.writing = true
	l.mu.Unlock()
}

// Unlock releases the write side.
func (l *RWLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.writing {
		panic("memstore: Unlock of unlocked RWLock")
	}
	l.writing = false
	l.readerPass = l.readersWaiting
	l.broadcast()
}

// wait and broadcast must be called with mu held.
func (l *RWLock) wait() {
	if l.cond == nil {
		l.cond = sync.NewCond(&l.mu)
	}
	l.cond.Wait()
}

func (l *RWLock) broadcast() {
	if l.cond != nil {
		l.cond.Broadcast()
	}
}
