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

// Result of a single pull on a Stream.
type Result uint8

const (
	// Item was produced by the pull.
	Item = Result(0)
	// End of the stream. Terminal, further pulls are undefined.
	End = Result(1)
	// NotReady to produce. The pulling task must suspend and will be
	// notified when progress is possible.
	NotReady = Result(2)
)

func (r Result) String() (name string) {
	switch r {
	case Item:
		return "item"
	case End:
		return "end"
	case NotReady:
		return "notready"
	}
	return "unknown"
}

// Stream is a lazy, finite, single consumer sequence of items, pulled in
// the context of the downstream task. A stream returning NotReady has
// arranged for task to be notified once progress is possible, either by
// parking it in a TaskPark or because an upstream stream did so.
type Stream[T any] interface {
	Poll(task *Task) (item T, res Result)
}

// State of a single poll on a Runnable.
type State uint8

const (
	// Blocked on a queue or an ingress stream. The task suspends until
	// notified.
	Blocked = State(0)
	// Done with all work. The runnable will not be polled again.
	Done = State(1)
)

func (s State) String() (name string) {
	switch s {
	case Blocked:
		return "blocked"
	case Done:
		return "done"
	}
	return "unknown"
}

// Runnable is an independently schedulable unit driving a link's internal
// work. Poll makes as much progress as currently possible before reporting
// Blocked or Done.
// Close implements the teardown discipline: it must push an End sentinel
// into every outgoing queue and transition every associated TaskPark to
// Dead, releasing any parked peer. Close must be idempotent, it runs on
// every exit path, after natural completion as well as on early shutdown.
type Runnable interface {
	Poll(task *Task) (state State)
	Close()
}
