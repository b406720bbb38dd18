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

// ForkLink broadcasts every item to all of its egress ports. Admission is
// all or nothing: the runnable only pulls upstream once every port has
// room, parking against the first full port otherwise, so an item is never
// partially delivered.
//
// Items are duplicated with the configured CloneFunc. The default is a
// plain assignment copy, correct for value types; items holding references
// need an explicit deep clone, see Frame.Clone.
type ForkLink[T any] struct {
	ingressor Stream[T]
	clone     CloneFunc[T]
	capacity  int
	egressors int
}

// NewForkLink creates a ForkLink builder with the default capacity and an
// assignment copy CloneFunc.
func NewForkLink[T any]() (l *ForkLink[T]) {
	l = &ForkLink[T]{}
	l.capacity = DefaultCapacity
	l.clone = func(item T) (clone T) { return item }
	return l
}

// Ingressor sets the single input stream.
func (l *ForkLink[T]) Ingressor(ingressor Stream[T]) *ForkLink[T] {
	l.ingressor = ingressor
	return l
}

// Ingressors sets the input streams. A ForkLink takes exactly one.
func (l *ForkLink[T]) Ingressors(ingressors []Stream[T]) *ForkLink[T] {
	if len(ingressors) != 1 {
		panic("linkrun: ForkLink takes exactly one ingressor")
	}
	l.ingressor = ingressors[0]
	return l
}

// CloneWith sets the item duplication function.
func (l *ForkLink[T]) CloneWith(clone CloneFunc[T]) *ForkLink[T] {
	l.clone = clone
	return l
}

// Capacity sets the per port queue capacity. Valid range 1..=1000.
func (l *ForkLink[T]) Capacity(capacity int) *ForkLink[T] {
	guardCapacity(capacity)
	l.capacity = capacity
	return l
}

// NumEgressors sets the number of egress ports. Valid range 1..=1000.
func (l *ForkLink[T]) NumEgressors(num int) *ForkLink[T] {
	guardEgressors(num)
	l.egressors = num
	return l
}

// BuildLink finalizes the builder.
func (l *ForkLink[T]) BuildLink() (link Link[T]) {
	if l.ingressor == nil {
		panic("linkrun: cannot build ForkLink, missing ingressor")
	}
	if l.egressors == 0 {
		panic("linkrun: cannot build ForkLink, missing num egressors")
	}

	outs := make([]*queue[T], l.egressors)
	link.Egressors = make([]Stream[T], l.egressors)
	for port := range outs {
		outs[port] = newQueue[T](l.capacity)
		link.Egressors[port] = newQueueEgressor(outs[port])
	}

	ingressor := &forkIngressor[T]{}
	ingressor.input = l.ingressor
	ingressor.clone = l.clone
	ingressor.outs = outs

	link.Runnables = []Runnable{ingressor}
	return link
}

// forkIngressor drives a ForkLink.
type forkIngressor[T any] struct {
	input  Stream[T]
	clone  CloneFunc[T]
	outs   []*queue[T]
	closed bool
}

func (r *forkIngressor[T]) Poll(task *Task) (state State) {
	for {
		// Only this task pushes, so a port observed non-full here stays
		// non-full until the broadcast below.
		for _, out := range r.outs {
			if out.full() {
				out.parkProducer(task)
				return Blocked
			}
		}

		item, res := r.input.Poll(task)

		switch res {
		case NotReady:
			return Blocked

		case End:
			r.Close()
			return Done

		case Item:
			for _, out := range r.outs {
				out.push(r.clone(item))
				out.park.Notify()
			}
		}
	}
}

func (r *forkIngressor[T]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, out := range r.outs {
		out.close()
	}
}
