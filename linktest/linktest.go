package linktest

/*
   Copyright 2020 The linkrun authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

import (
	"sync"
	"time"

	"github.com/linkrun/linkrun"
)

// ImmediateStream yields the given items back to back, then End.
type ImmediateStream[T any] struct {
	items []T
	idx   int
}

// Immediate creates a stream yielding the given items without waiting.
func Immediate[T any](items ...T) (stream *ImmediateStream[T]) {
	stream = &ImmediateStream[T]{}
	stream.items = items
	return stream
}

// Poll the next item.
func (s *ImmediateStream[T]) Poll(task *linkrun.Task) (item T, res linkrun.Result) {
	if s.idx >= len(s.items) {
		return item, linkrun.End
	}

	item = s.items[s.idx]
	s.idx++
	return item, linkrun.Item
}

// IntervalStream yields one item per interval, returning NotReady between
// items with a timer armed to notify the pulling task.
type IntervalStream[T any] struct {
	items    []T
	idx      int
	interval time.Duration
	last     time.Time
}

// Interval creates a stream yielding the given items one per interval.
func Interval[T any](interval time.Duration, items ...T) (stream *IntervalStream[T]) {
	stream = &IntervalStream[T]{}
	stream.items = items
	stream.interval = interval
	return stream
}

// Poll the next item, or arm a wakeup for the remaining interval.
func (s *IntervalStream[T]) Poll(task *linkrun.Task) (item T, res linkrun.Result) {
	if s.idx >= len(s.items) {
		return item, linkrun.End
	}

	if wait := s.interval - time.Since(s.last); wait > 0 {
		time.AfterFunc(wait, task.Notify)
		return item, linkrun.NotReady
	}

	item = s.items[s.idx]
	s.idx++
	s.last = time.Now()
	return item, linkrun.Item
}

// Collector is a runnable draining a stream into memory, optionally
// sleeping between pulls to emulate a slow consumer.
type Collector[T any] struct {
	mtx   sync.Mutex
	input linkrun.Stream[T]
	delay time.Duration
	items []T
}

// Collect creates a collector over the given stream.
func Collect[T any](input linkrun.Stream[T]) (collector *Collector[T]) {
	collector = &Collector[T]{}
	collector.input = input
	return collector
}

// WithDelay makes the collector sleep for the given duration after every
// collected item.
func (c *Collector[T]) WithDelay(delay time.Duration) *Collector[T] {
	c.delay = delay
	return c
}

// Items collected so far.
func (c *Collector[T]) Items() (items []T) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	items = make([]T, len(c.items))
	copy(items, c.items)
	return items
}

// Poll drains the input stream.
func (c *Collector[T]) Poll(task *linkrun.Task) (state linkrun.State) {
	for {
		item, res := c.input.Poll(task)

		switch res {
		case linkrun.NotReady:
			return linkrun.Blocked

		case linkrun.End:
			return linkrun.Done

		case linkrun.Item:
			c.mtx.Lock()
			c.items = append(c.items, item)
			c.mtx.Unlock()

			if c.delay > 0 {
				time.Sleep(c.delay)
			}
		}
	}
}

// Close implements linkrun.Runnable. A collector has no outgoing queues.
func (c *Collector[T]) Close() {}

// RunLink spawns the link runnables with one collector per egressor and
// waits for completion, returning the items collected per egress port.
func RunLink[T any](link linkrun.Link[T]) (results [][]T) {
	executor := linkrun.NewExecutor("linktest")

	collectors := make([]*Collector[T], len(link.Egressors))
	for i := range link.Egressors {
		collectors[i] = Collect(link.Egressors[i])
		executor.Spawn("collector", collectors[i])
	}

	executor.SpawnAll("link", link.Runnables)
	executor.Wait()

	results = make([][]T, len(collectors))
	for i := range collectors {
		results[i] = collectors[i].Items()
	}
	return results
}
