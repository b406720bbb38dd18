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
	"sync/atomic"
)

type parkState uint8

const (
	// parkEmpty: no one parked, no pending wakeup.
	parkEmpty = parkState(0)
	// parkParked: one task is waiting to be notified.
	parkParked = parkState(1)
	// parkIndirect: a wakeup was raised while no one was parked. The next
	// park attempt must self notify instead of suspending.
	parkIndirect = parkState(2)
	// parkDead: the peer has terminated. Terminal.
	parkDead = parkState(3)
)

type parkCell struct {
	state parkState
	task  *Task
}

var (
	emptyCell    = &parkCell{state: parkEmpty}
	indirectCell = &parkCell{state: parkIndirect}
	deadCell     = &parkCell{state: parkDead}
)

// TaskPark is the one slot rendezvous cell coordinating the producer and
// the consumer of a single bounded queue. At most one task handle is ever
// held, transitions are atomic, and Dead is terminal.
//
// The no lost wakeup discipline at the call sites is: observe the blocking
// condition, Park the current task, then re-check the condition and Notify
// if it changed. The IndirectNotify state covers the race where a Notify
// lands before anyone parked.
type TaskPark struct {
	cell  atomic.Pointer[parkCell]
	parks atomic.Uint64
}

// NewTaskPark creates an empty TaskPark.
func NewTaskPark() (park *TaskPark) {
	park = &TaskPark{}
	park.cell.Store(emptyCell)
	return park
}

// Park installs the given task as the waiting handle. If a wakeup is
// already pending, or the peer is dead, the task is immediately notified
// so its next wait returns without suspending.
func (p *TaskPark) Park(task *Task) {
	for {
		old := p.cell.Load()

		switch old.state {
		case parkEmpty:
			if p.cell.CompareAndSwap(old, &parkCell{state: parkParked, task: task}) {
				p.parks.Add(1)
				return
			}

		case parkIndirect:
			// Consume the pending wakeup and self notify.
			if p.cell.CompareAndSwap(old, emptyCell) {
				task.Notify()
				return
			}

		case parkParked:
			// Replace the previous occupant, releasing it. Seen when a task
			// woken through another path parks again over its own handle,
			// and during handoff races between the two ends of the queue.
			if p.cell.CompareAndSwap(old, &parkCell{state: parkParked, task: task}) {
				p.parks.Add(1)
				old.task.Notify()
				return
			}

		case parkDead:
			task.Notify()
			return
		}
	}
}

// Notify wakes the parked task if any, or records an indirect wakeup for
// the next park attempt. A dead park notifies no one.
func (p *TaskPark) Notify() {
	for {
		old := p.cell.Load()

		switch old.state {
		case parkParked:
			if p.cell.CompareAndSwap(old, emptyCell) {
				old.task.Notify()
				return
			}

		case parkEmpty:
			if p.cell.CompareAndSwap(old, indirectCell) {
				return
			}

		case parkIndirect, parkDead:
			return
		}
	}
}

// Die transitions the park to Dead, releasing any parked task. Dead is
// terminal, later Park attempts self notify and later Notify calls are
// no-ops.
func (p *TaskPark) Die() {
	for {
		old := p.cell.Load()

		if old.state == parkDead {
			return
		}

		if p.cell.CompareAndSwap(old, deadCell) {
			if old.state == parkParked {
				old.task.Notify()
			}
			return
		}
	}
}

// Dead returns whether the peer has terminated.
func (p *TaskPark) Dead() (dead bool) {
	return p.cell.Load().state == parkDead
}

// Parks returns the number of times a task handle was installed. Useful
// to observe backpressure in tests.
func (p *TaskPark) Parks() (count uint64) {
	return p.parks.Load()
}
