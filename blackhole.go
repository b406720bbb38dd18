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

// BlackHoleLink drains and discards every item from any number of ingress
// streams. It has no egress and completes once all ingresses have
// returned End.
type BlackHoleLink[T any] struct {
	ingressors []Stream[T]
}

// NewBlackHoleLink creates a BlackHoleLink builder.
func NewBlackHoleLink[T any]() (l *BlackHoleLink[T]) {
	return &BlackHoleLink[T]{}
}

// Ingressor appends an input stream.
func (l *BlackHoleLink[T]) Ingressor(ingressor Stream[T]) *BlackHoleLink[T] {
	l.ingressors = append(l.ingressors, ingressor)
	return l
}

// Ingressors appends the given input streams.
func (l *BlackHoleLink[T]) Ingressors(ingressors []Stream[T]) *BlackHoleLink[T] {
	l.ingressors = append(l.ingressors, ingressors...)
	return l
}

// BuildLink finalizes the builder.
func (l *BlackHoleLink[T]) BuildLink() (link Link[T]) {
	if len(l.ingressors) == 0 {
		panic("linkrun: cannot build BlackHoleLink, missing ingressors")
	}

	hole := &blackHole[T]{}
	hole.inputs = l.ingressors
	hole.ended = make([]bool, len(l.ingressors))

	link.Runnables = []Runnable{hole}
	return link
}

// blackHole drives a BlackHoleLink. Each pass visits every live port in
// order and drains it until it is not ready or has ended; a pass with no
// progress blocks.
type blackHole[T any] struct {
	inputs []Stream[T]
	ended  []bool
	done   int
}

func (r *blackHole[T]) Poll(task *Task) (state State) {
	for {
		progress := false

		for port := 0; port < len(r.inputs); port++ {
			if r.ended[port] {
				continue
			}

			for {
				_, res := r.inputs[port].Poll(task)

				if res == Item {
					progress = true
					continue
				}

				if res == End {
					r.ended[port] = true
					r.done++
					progress = true
				}
				break
			}
		}

		if r.done == len(r.inputs) {
			return Done
		}

		if !progress {
			return Blocked
		}
	}
}

func (r *blackHole[T]) Close() {}
