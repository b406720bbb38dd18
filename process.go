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

// ProcessLink is the stateless 1:1 transformation stage. It spawns no
// runnables, the stage is fused into the downstream consumer's pull: its
// egressor pulls upstream and applies the processor in the context of
// whichever task is polling it.
type ProcessLink[I, O any] struct {
	ingressor Stream[I]
	processor Processor[I, O]
}

// NewProcessLink creates a ProcessLink builder.
func NewProcessLink[I, O any]() (l *ProcessLink[I, O]) {
	return &ProcessLink[I, O]{}
}

// Ingressor sets the single input stream.
func (l *ProcessLink[I, O]) Ingressor(ingressor Stream[I]) *ProcessLink[I, O] {
	l.ingressor = ingressor
	return l
}

// Ingressors sets the input streams. A ProcessLink takes exactly one.
func (l *ProcessLink[I, O]) Ingressors(ingressors []Stream[I]) *ProcessLink[I, O] {
	if len(ingressors) != 1 {
		panic("linkrun: ProcessLink takes exactly one ingressor")
	}
	l.ingressor = ingressors[0]
	return l
}

// Processor sets the user transformation.
func (l *ProcessLink[I, O]) Processor(processor Processor[I, O]) *ProcessLink[I, O] {
	l.processor = processor
	return l
}

// BuildLink finalizes the builder.
func (l *ProcessLink[I, O]) BuildLink() (link Link[O]) {
	if l.ingressor == nil {
		panic("linkrun: cannot build ProcessLink, missing ingressor")
	}
	if l.processor == nil {
		panic("linkrun: cannot build ProcessLink, missing processor")
	}

	runner := &processRunner[I, O]{}
	runner.input = l.ingressor
	runner.processor = l.processor

	link.Egressors = []Stream[O]{runner}
	return link
}

// processRunner is the single egressor of a ProcessLink. It pulls upstream
// until the processor produces an item or upstream yields End or NotReady,
// so dropped items never surface downstream.
type processRunner[I, O any] struct {
	input     Stream[I]
	processor Processor[I, O]
}

func (r *processRunner[I, O]) Poll(task *Task) (item O, res Result) {
	for {
		in, res := r.input.Poll(task)

		switch res {
		case End:
			return item, End

		case NotReady:
			return item, NotReady

		case Item:
			if out, ok := r.processor.Process(in); ok {
				return out, Item
			}
		}
	}
}
