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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// sliceStream yields the given items back to back, then End.
type sliceStream struct {
	items []int
	idx   int
}

func (s *sliceStream) Poll(task *Task) (item int, res Result) {
	if s.idx >= len(s.items) {
		return item, End
	}
	item = s.items[s.idx]
	s.idx++
	return item, Item
}

// slowDrain collects with a delay per item to force backpressure.
type slowDrain struct {
	mtx   sync.Mutex
	input Stream[int]
	delay time.Duration
	items []int
}

func (d *slowDrain) Poll(task *Task) (state State) {
	for {
		item, res := d.input.Poll(task)

		switch res {
		case NotReady:
			return Blocked
		case End:
			return Done
		case Item:
			d.mtx.Lock()
			d.items = append(d.items, item)
			d.mtx.Unlock()
			time.Sleep(d.delay)
		}
	}
}

func (d *slowDrain) Close() {}

func TestQueueLinkBackpressure(t *testing.T) {
	items := make([]int, 2000)
	for x := range items {
		items[x] = x
	}

	q := newQueue[int](10)
	ingressor := &queueIngressor[int]{}
	ingressor.input = &sliceStream{items: items}
	ingressor.out = q

	drain := &slowDrain{}
	drain.input = newQueueEgressor(q)
	drain.delay = 100 * time.Microsecond

	executor := NewExecutor("backpressure")
	executor.Spawn("queue", ingressor)
	executor.Spawn("drain", drain)
	executor.Wait()

	assert.Equal(t, items, drain.items)

	// The fast producer must have parked against the slow consumer.
	assert.Greater(t, q.park.Parks(), uint64(0))
}

func TestQueueLinkBuilderPanics(t *testing.T) {
	assert.Panics(t, func() { NewQueueLink[int]().BuildLink() })
	assert.Panics(t, func() { NewQueueLink[int]().Capacity(0) })
	assert.Panics(t, func() { NewQueueLink[int]().Capacity(1001) })
	assert.Panics(t, func() {
		NewQueueLink[int]().Ingressors([]Stream[int]{})
	})
}

func TestQueueLinkPassThrough(t *testing.T) {
	items := []int{0, 1, 2, 420, 1337, 3, 4, 5, 6, 7, 8, 9}

	link := NewQueueLink[int]().
		Ingressor(&sliceStream{items: items}).
		Capacity(4).
		BuildLink()

	drain := &slowDrain{}
	drain.input = link.Egressors[0]

	executor := NewExecutor("passthrough")
	executor.SpawnAll("queue", link.Runnables)
	executor.Spawn("drain", drain)
	executor.Wait()

	assert.Equal(t, items, drain.items)
}
