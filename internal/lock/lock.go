// Package lock provides a reader/writer lock built on a single mutex and
// condition variable. Any number of readers may hold the read side at once;
// the write side is exclusive. Waiting writers block new readers, so a writer
// is never starved by a steady stream of readers.
package lock

import "sync"

// MultiReaderLock guards one logical resource with a read view and a write
// view. The zero value is not usable; call New.
type MultiReaderLock struct {
	mu             sync.Mutex
	cond           *sync.Cond
	readers        int
	writer         bool
	waitingWriters int

	read  readLock
	write writeLock
}

// New returns an unlocked MultiReaderLock.
func New() *MultiReaderLock {
	l := &MultiReaderLock{}
	l.cond = sync.NewCond(&l.mu)
	l.read = readLock{l}
	l.write = writeLock{l}
	return l
}

// ReadLock returns the shared view of the lock.
func (l *MultiReaderLock) ReadLock() sync.Locker {
	return &l.read
}

// WriteLock returns the exclusive view of the lock.
func (l *MultiReaderLock) WriteLock() sync.Locker {
	return &l.write
}

// RLock acquires the read lock.
func (l *MultiReaderLock) RLock() { l.read.Lock() }

// RUnlock releases the read lock.
func (l *MultiReaderLock) RUnlock() { l.read.Unlock() }

// Lock acquires the write lock.
func (l *MultiReaderLock) Lock() { l.write.Lock() }

// Unlock releases the write lock.
func (l *MultiReaderLock) Unlock() { l.write.Unlock() }

// Readers reports how many readers currently hold the lock.
func (l *MultiReaderLock) Readers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readers
}

// HasWriter reports whether a writer currently holds the lock.
func (l *MultiReaderLock) HasWriter() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer
}

type readLock struct {
	l *MultiReaderLock
}

func (r *readLock) Lock() {
	l := r.l
	l.mu.Lock()
	for l.writer || l.waitingWriters > 0 {
		l.cond.Wait()
	}
	l.readers++
	l.mu.Unlock()
}

func (r *readLock) Unlock() {
	l := r.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.readers == 0 {
		panic("lock: read unlock without matching lock")
	}
	l.readers--
	if l.readers == 0 {
		l.cond.Broadcast()
	}
}

type writeLock struct {
	l *MultiReaderLock
}

func (w *writeLock) Lock() {
	l := w.l
	l.mu.Lock()
	l.waitingWriters++
	for l.writer || l.readers > 0 {
		l.cond.Wait()
	}
	l.waitingWriters--
	l.writer = true
	l.mu.Unlock()
}

func (w *writeLock) Unlock() {
	l := w.l
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.writer {
		panic("lock: write unlock without matching lock")
	}
	l.writer = false
	l.cond.Broadcast()
}
