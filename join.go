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

// JoinLink merges its ingress streams into one egress, scanning the ports
// in strict round-robin order and forwarding at most one item per scan
// position. Within a port FIFO order is preserved; interleaving across
// ports is not a contract. The join completes once every ingress has
// returned End.
type JoinLink[T any] struct {
	ingressors []Stream[T]
	capacity   int
}

// NewJoinLink creates a JoinLink builder with the default capacity.
func NewJoinLink[T any]() (l *JoinLink[T]) {
	l = &JoinLink[T]{}
	l.capacity = DefaultCapacity
	return l
}

// Ingressor appends an input stream.
func (l *JoinLink[T]) Ingressor(ingressor Stream[T]) *JoinLink[T] {
	l.ingressors = append(l.ingressors, ingressor)
	return l
}

// Ingressors appends the given input streams.
func (l *JoinLink[T]) Ingressors(ingressors []Stream[T]) *JoinLink[T] {
	l.ingressors = append(l.ingressors, ingressors...)
	return l
}

// Capacity sets the output queue capacity. Valid range 1..=1000.
func (l *JoinLink[T]) Capacity(capacity int) *JoinLink[T] {
	guardCapacity(capacity)
	l.capacity = capacity
	return l
}

// BuildLink finalizes the builder.
func (l *JoinLink[T]) BuildLink() (link Link[T]) {
	if len(l.ingressors) == 0 {
		panic("linkrun: cannot build JoinLink, missing ingressors")
	}
	guardEgressors(len(l.ingressors))

	q := newQueue[T](l.capacity)

	runnable := &joinRunnable[T]{}
	runnable.inputs = l.ingressors
	runnable.out = q
	runnable.ended = make([]bool, len(l.ingressors))

	link.Runnables = []Runnable{runnable}
	link.Egressors = []Stream[T]{newQueueEgressor(q)}
	return link
}

// joinRunnable drives a JoinLink. One pass polls each live port once
// starting at the round-robin cursor; a pass with no progress parks, with
// this task's handle left in every live upstream so any producing port
// wakes the scan.
type joinRunnable[T any] struct {
	inputs []Stream[T]
	out    *queue[T]
	ended  []bool
	done   int
	next   int
	closed bool
}

func (r *joinRunnable[T]) Poll(task *Task) (state State) {
	for {
		if r.out.full() {
			r.out.parkProducer(task)
			return Blocked
		}

		progress := false

		for i := 0; i < len(r.inputs); i++ {
			port := (r.next + i) % len(r.inputs)
			if r.ended[port] {
				continue
			}

			item, res := r.inputs[port].Poll(task)

			switch res {
			case NotReady:
				continue

			case End:
				r.ended[port] = true
				r.done++
				progress = true
				continue

			case Item:
				r.out.push(item)
				r.out.park.Notify()
				r.next = (port + 1) % len(r.inputs)
				progress = true
			}

			// Forwarded one item, restart the scan at the cursor so the
			// output bound is re-checked.
			break
		}

		if r.done == len(r.inputs) {
			r.Close()
			return Done
		}

		if !progress {
			return Blocked
		}
	}
}

func (r *joinRunnable[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.out.close()
}
