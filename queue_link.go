package linkrun

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

// QueueLink is the bounded buffer stage. Its runnable moves items from the
// ingress stream into a bounded queue, decoupling the upstream and
// downstream schedules: bursts are absorbed up to the queue capacity, and
// the two sides run as independent tasks.
type QueueLink[T any] struct {
	ingressor Stream[T]
	capacity  int
}

// NewQueueLink creates a QueueLink builder with the default capacity.
func NewQueueLink[T any]() (l *QueueLink[T]) {
	l = &QueueLink[T]{}
	l.capacity = DefaultCapacity
	return l
}

// Ingressor sets the single input stream.
func (l *QueueLink[T]) Ingressor(ingressor Stream[T]) *QueueLink[T] {
	l.ingressor = ingressor
	return l
}

// Ingressors sets the input streams. A QueueLink takes exactly one.
func (l *QueueLink[T]) Ingressors(ingressors []Stream[T]) *QueueLink[T] {
	if len(ingressors) != 1 {
		panic("linkrun: QueueLink takes exactly one ingressor")
	}
	l.ingressor = ingressors[0]
	return l
}

// Capacity sets the bounded queue capacity. Valid range 1..=1000.
func (l *QueueLink[T]) Capacity(capacity int) *QueueLink[T] {
	guardCapacity(capacity)
	l.capacity = capacity
	return l
}

// BuildLink finalizes the builder.
func (l *QueueLink[T]) BuildLink() (link Link[T]) {
	if l.ingressor == nil {
		panic("linkrun: cannot build QueueLink, missing ingressor")
	}

	q := newQueue[T](l.capacity)

	ingressor := &queueIngressor[T]{}
	ingressor.input = l.ingressor
	ingressor.out = q

	link.Runnables = []Runnable{ingressor}
	link.Egressors = []Stream[T]{newQueueEgressor(q)}
	return link
}

// queueIngressor drives the producer end of a QueueLink. It pulls the
// ingress stream and pushes into the bounded queue until the queue is full
// or the ingress has nothing ready, parking accordingly.
type queueIngressor[T any] struct {
	input  Stream[T]
	out    *queue[T]
	closed bool
}

func (r *queueIngressor[T]) Poll(task *Task) (state State) {
	for {
		if r.out.full() {
			r.out.parkProducer(task)
			return Blocked
		}

		item, res := r.input.Poll(task)

		switch res {
		case NotReady:
			return Blocked

		case End:
			r.Close()
			return Done

		case Item:
			r.out.push(item)
			r.out.park.Notify()
		}
	}
}

func (r *queueIngressor[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.out.close()
}
