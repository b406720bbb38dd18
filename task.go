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

	"github.com/linkrun/linkrun/log"
)

// Task is the schedulable identity of a running Runnable. It carries the
// wake slot used by TaskParks to resume a suspended task, the executor
// stop channel and a contextual logger.
// A Task is handed to Runnable.Poll and flows upstream through Stream.Poll
// calls so that any stream along the fused pull path can park it.
type Task struct {
	name   string
	wake   chan struct{}
	stopch chan struct{}
	logger log.Logger
}

func newTask(name string, stopch chan struct{}, logger log.Logger) (task *Task) {
	task = &Task{}
	task.name = name
	task.wake = make(chan struct{}, 1)
	task.stopch = stopch
	task.logger = logger
	return task
}

// Name of this task within its executor.
func (t *Task) Name() (name string) {
	return t.name
}

// Logger returns this task contextual logger.
func (t *Task) Logger() (logger log.Logger) {
	return t.logger
}

// Notify marks this task runnable. Safe for concurrent use and always
// non-blocking, redundant notifications coalesce into the single slot.
func (t *Task) Notify() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Done returns a channel closed when the executor is shutting down.
// Runnables blocking on external channels must select on it.
func (t *Task) Done() (done <-chan struct{}) {
	return t.stopch
}

// wait suspends until notified. Returns false when the executor is
// shutting down and the runnable must tear down instead of polling again.
func (t *Task) wait() (ok bool) {
	select {
	case <-t.wake:
		return true
	case <-t.stopch:
		return false
	}
}

// Executor drives runnables, each on its own task, until every one of
// them completes. Parking and waking between tasks is mediated exclusively
// by TaskParks, the executor itself only ever blocks a task on its own
// wake slot.
type Executor struct {
	mtx    sync.Mutex
	wg     sync.WaitGroup
	name   string
	closed bool
	stopch chan struct{}
	logger log.Logger
}

// NewExecutor creates an idle executor.
func NewExecutor(name string) (executor *Executor) {
	executor = &Executor{}
	executor.name = name
	executor.stopch = make(chan struct{})
	executor.logger = log.New("executor", name)
	return executor
}

// Spawn the given runnable under a new task. The runnable is polled until
// Done, suspending whenever it reports Blocked. Close always runs on exit,
// completing the End propagation and TaskPark teardown for the runnable's
// queues.
func (e *Executor) Spawn(name string, runnable Runnable) {
	task := newTask(name, e.stopch, log.New("executor", e.name, "runnable", name))

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer runnable.Close()

		for {
			if runnable.Poll(task) == Done {
				task.logger.Debugw("runnable done")
				return
			}
			if !task.wait() {
				task.logger.Debugw("runnable stopped")
				return
			}
		}
	}()
}

// SpawnAll spawns all given runnables under the given name prefix.
func (e *Executor) SpawnAll(name string, runnables []Runnable) {
	for i := range runnables {
		e.Spawn(name, runnables[i])
	}
}

// Wait for every spawned runnable to complete.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// Shutdown releases every suspended task and waits for all runnables to
// tear down. Runnables observe the stop, run their Close and exit, which
// propagates End through the remaining pipeline.
func (e *Executor) Shutdown() {
	e.mtx.Lock()
	if !e.closed {
		e.closed = true
		close(e.stopch)
	}
	e.mtx.Unlock()

	e.wg.Wait()
	e.logger.Debugw("executor stopped")
}
