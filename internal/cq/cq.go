// Package cq implements a simple concurrent queue. Any number of
// goroutines may add to the queue, while a single consumer collects
// everything added since its last collection in one batch.
package cq

import "sync"

// Flush runs every function in queue in order and returns the errors
// that they produced.
func Flush(queue []func() error) (errs []error) {
	for _, ev := range queue {
		err := ev()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

type Queue[T any] struct {
	done  chan struct{}
	close sync.Once

	add chan T
	get chan []T
}

func New[T any]() *Queue[T] {
	q := Queue[T]{
		done: make(chan struct{}),
		add:  make(chan T),
		get:  make(chan []T),
	}
	go q.run()

	return &q
}

// Stop stops the queue. Values that have not been collected are
// discarded. It is safe to call Stop more than once.
func (q *Queue[T]) Stop() {
	q.close.Do(func() {
		close(q.done)
	})
}

// Done is closed when the queue is stopped.
func (q *Queue[T]) Done() <-chan struct{} {
	return q.done
}

// Add returns a channel that values can be sent on to add them to the
// queue. Senders should also select on Done.
func (q *Queue[T]) Add() chan<- T {
	return q.add
}

// Push adds v to the queue. It returns false if the queue has been
// stopped.
func (q *Queue[T]) Push(v T) bool {
	select {
	case <-q.done:
		return false
	case q.add <- v:
		return true
	}
}

// Get returns a channel that yields everything added to the queue
// since the last receive. It only becomes ready when there is at
// least one value waiting.
func (q *Queue[T]) Get() <-chan []T {
	return q.get
}

func (q *Queue[T]) run() {
	var s []T
	var get chan []T

	for {
		select {
		case <-q.done:
			return

		case v := <-q.add:
			s = append(s, v)
			get = q.get

		case get <- s:
			s = nil
			get = nil
		}
	}
}
