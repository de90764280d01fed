package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// ErrSinkClosed is returned by Write once Close has been called.
var ErrSinkClosed = errors.New("log sink closed")

// Sink is an asynchronous, append-only line writer. Write only enqueues;
// a single background worker owns the file and appends entries in FIFO
// order, opening and closing the file per entry so external readers can
// tail it at any time.
//
// Sink implements zapcore.WriteSyncer.
type Sink struct {
	path string
	diag io.Writer

	mu       sync.Mutex
	idle     *sync.Cond // Broadcast when a drain pass empties the queue
	queue    [][]byte
	draining bool
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}

	written atomic.Int64
	dropped atomic.Int64
}

// NewSink creates a sink appending to path and starts its worker.
// Write failures are reported on diag (os.Stderr when nil).
func NewSink(path string, diag io.Writer) *Sink {
	if diag == nil {
		diag = os.Stderr
	}
	s := &Sink{
		path: path,
		diag: diag,
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Path returns the log file path
func (s *Sink) Path() string {
	return s.path
}

// Write enqueues one encoded line. It never blocks on file I/O.
func (s *Sink) Write(p []byte) (int, error) {
	line := append([]byte(nil), p...)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrSinkClosed
	}
	s.queue = append(s.queue, line)
	startDrain := !s.draining
	s.draining = true
	s.mu.Unlock()

	if startDrain {
		select {
		case s.wake <- struct{}{}:
		default:
		}
	}
	return len(p), nil
}

// Sync blocks until every entry enqueued before the call has been handled.
func (s *Sink) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) > 0 || s.draining {
		s.idle.Wait()
	}
	return nil
}

// Close drains the queue, stops the worker and rejects further writes.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		<-s.done
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	return nil
}

// Written returns how many entries reached the file
func (s *Sink) Written() int64 {
	return s.written.Load()
}

// Dropped returns how many entries failed to write
func (s *Sink) Dropped() int64 {
	return s.dropped.Load()
}

func (s *Sink) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.drain()
		case <-s.stop:
			s.drain()
			return
		}
	}
}

// drain writes entries one at a time until the queue is empty, then goes idle.
func (s *Sink) drain() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		line := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.draining = true
		s.mu.Unlock()

		if err := s.appendLine(line); err != nil {
			s.dropped.Add(1)
			fmt.Fprintf(s.diag, "Error writing to log file: %v\n", err)
			continue
		}
		s.written.Add(1)
	}
}

func (s *Sink) appendLine(line []byte) error {
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = f.Write(line)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
