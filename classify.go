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

import "fmt"

// ClassifyLink routes each item to exactly one of its egress ports, chosen
// by the user classifier and dispatcher. When the selected port's queue is
// full the runnable parks against that port and does not advance, which
// preserves per class ordering at the cost of head of line blocking across
// ports.
type ClassifyLink[T, C any] struct {
	ingressor  Stream[T]
	classifier Classifier[T, C]
	dispatch   DispatchFunc[C]
	capacity   int
	egressors  int
}

// NewClassifyLink creates a ClassifyLink builder with the default capacity.
func NewClassifyLink[T, C any]() (l *ClassifyLink[T, C]) {
	l = &ClassifyLink[T, C]{}
	l.capacity = DefaultCapacity
	return l
}

// Ingressor sets the single input stream.
func (l *ClassifyLink[T, C]) Ingressor(ingressor Stream[T]) *ClassifyLink[T, C] {
	l.ingressor = ingressor
	return l
}

// Ingressors sets the input streams. A ClassifyLink takes exactly one.
func (l *ClassifyLink[T, C]) Ingressors(ingressors []Stream[T]) *ClassifyLink[T, C] {
	if len(ingressors) != 1 {
		panic("linkrun: ClassifyLink takes exactly one ingressor")
	}
	l.ingressor = ingressors[0]
	return l
}

// Classifier sets the user classification function.
func (l *ClassifyLink[T, C]) Classifier(classifier Classifier[T, C]) *ClassifyLink[T, C] {
	l.classifier = classifier
	return l
}

// Dispatcher sets the class to port mapping.
func (l *ClassifyLink[T, C]) Dispatcher(dispatch DispatchFunc[C]) *ClassifyLink[T, C] {
	l.dispatch = dispatch
	return l
}

// Capacity sets the per port queue capacity. Valid range 1..=1000.
func (l *ClassifyLink[T, C]) Capacity(capacity int) *ClassifyLink[T, C] {
	guardCapacity(capacity)
	l.capacity = capacity
	return l
}

// NumEgressors sets the number of egress ports. Valid range 1..=1000.
func (l *ClassifyLink[T, C]) NumEgressors(num int) *ClassifyLink[T, C] {
	guardEgressors(num)
	l.egressors = num
	return l
}

// BuildLink finalizes the builder.
func (l *ClassifyLink[T, C]) BuildLink() (link Link[T]) {
	if l.ingressor == nil {
		panic("linkrun: cannot build ClassifyLink, missing ingressor")
	}
	if l.classifier == nil {
		panic("linkrun: cannot build ClassifyLink, missing classifier")
	}
	if l.dispatch == nil {
		panic("linkrun: cannot build ClassifyLink, missing dispatcher")
	}
	if l.egressors == 0 {
		panic("linkrun: cannot build ClassifyLink, missing num egressors")
	}

	outs := make([]*queue[T], l.egressors)
	link.Egressors = make([]Stream[T], l.egressors)
	for port := range outs {
		outs[port] = newQueue[T](l.capacity)
		link.Egressors[port] = newQueueEgressor(outs[port])
	}

	ingressor := &classifyIngressor[T, C]{}
	ingressor.input = l.ingressor
	ingressor.classifier = l.classifier
	ingressor.dispatch = l.dispatch
	ingressor.outs = outs

	link.Runnables = []Runnable{ingressor}
	return link
}

// classifyIngressor drives a ClassifyLink. An item pulled but not yet
// admitted to its full port is held as pending so routing never reorders
// or drops within a class.
type classifyIngressor[T, C any] struct {
	input       Stream[T]
	classifier  Classifier[T, C]
	dispatch    DispatchFunc[C]
	outs        []*queue[T]
	pending     T
	pendingPort int
	hasPending  bool
	closed      bool
}

func (r *classifyIngressor[T, C]) Poll(task *Task) (state State) {
	for {
		if r.hasPending {
			out := r.outs[r.pendingPort]
			if out.full() {
				out.parkProducer(task)
				return Blocked
			}
			out.push(r.pending)
			out.park.Notify()
			r.hasPending = false
		}

		item, res := r.input.Poll(task)

		switch res {
		case NotReady:
			return Blocked

		case End:
			r.Close()
			return Done

		case Item:
			port := r.dispatch(r.classifier.Classify(item))
			if port < 0 || port >= len(r.outs) {
				panic(fmt.Sprintf("linkrun: dispatcher returned port %d for %d egressors",
					port, len(r.outs)))
			}
			r.pending = item
			r.pendingPort = port
			r.hasPending = true
		}
	}
}

func (r *classifyIngressor[T, C]) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, out := range r.outs {
		out.close()
	}
}
