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

import (
	"encoding/binary"
)

// CaptureLink is a terminal sink persisting every drained item into a
// Store, keyed by a monotonic capture sequence so Range replays the
// capture in arrival order. Store errors are logged and the item dropped,
// capture is an observer and must not stall the pipeline.
type CaptureLink[T Encoder] struct {
	ingressors []Stream[T]
	store      Store
}

// NewCaptureLink creates a CaptureLink builder.
func NewCaptureLink[T Encoder]() (l *CaptureLink[T]) {
	return &CaptureLink[T]{}
}

// Ingressor appends an input stream.
func (l *CaptureLink[T]) Ingressor(ingressor Stream[T]) *CaptureLink[T] {
	l.ingressors = append(l.ingressors, ingressor)
	return l
}

// Ingressors appends the given input streams.
func (l *CaptureLink[T]) Ingressors(ingressors []Stream[T]) *CaptureLink[T] {
	l.ingressors = append(l.ingressors, ingressors...)
	return l
}

// Store sets the capture store.
func (l *CaptureLink[T]) Store(store Store) *CaptureLink[T] {
	l.store = store
	return l
}

// BuildLink finalizes the builder.
func (l *CaptureLink[T]) BuildLink() (link Link[T]) {
	if len(l.ingressors) == 0 {
		panic("linkrun: cannot build CaptureLink, missing ingressors")
	}
	if l.store == nil {
		panic("linkrun: cannot build CaptureLink, missing store")
	}

	capture := &captureRunnable[T]{}
	capture.inputs = l.ingressors
	capture.store = l.store
	capture.ended = make([]bool, len(l.ingressors))

	link.Runnables = []Runnable{capture}
	return link
}

// captureRunnable drains its ingresses like a black hole, persisting each
// item before discarding it.
type captureRunnable[T Encoder] struct {
	inputs []Stream[T]
	store  Store
	ended  []bool
	done   int
	seq    uint64
}

func (r *captureRunnable[T]) Poll(task *Task) (state State) {
	for {
		progress := false

		for port := 0; port < len(r.inputs); port++ {
			if r.ended[port] {
				continue
			}

			for {
				item, res := r.inputs[port].Poll(task)

				if res == Item {
					r.persist(task, item)
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

func (r *captureRunnable[T]) persist(task *Task, item T) {
	value, err := item.Encode()
	if err != nil {
		task.Logger().Errorw("error serializing captured item",
			"store", r.store.Name(), "error", err)
		return
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, r.seq)
	r.seq++

	if err = r.store.Set(key, value); err != nil {
		task.Logger().Errorw("error persisting captured item",
			"store", r.store.Name(), "error", err)
	}
}

func (r *captureRunnable[T]) Close() {}
