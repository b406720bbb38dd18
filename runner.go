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
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/linkrun/linkrun/internal/httpserver"
	"github.com/linkrun/linkrun/log"
	"github.com/linkrun/linkrun/types"
)

var (
	errRunnerClosed   = errors.New("runner already closed")
	errEmptyName      = errors.New("name cannot be empty")
	errInvalidGraph   = errors.New("invalid graph")
	errParentNotFound = errors.New("parent not found")
)

// node is the graph bookkeeping record of a wired link.
type node struct {
	name       string
	kind       types.Kind
	downstream []*node
}

// Runner hosts an assembled pipeline: the executor driving its runnables,
// the wiring graph for introspection and the optional debug listener.
// The wiring itself is a plain call sequence of link builder invocations,
// the Runner does not parse graph descriptions.
type Runner struct {
	mtx      sync.Mutex
	name     string
	config   Config
	closed   bool
	executor *Executor
	nodes    map[string]*node
	order    []*node
	server   *httpserver.Server
	logger   log.Logger
}

// NewRunner creates a Runner with the given name and configuration.
func NewRunner(name string, config Config) (runner *Runner, err error) {
	if name == "" {
		return nil, errEmptyName
	}

	runner = &Runner{}
	runner.name = name
	runner.config = config
	runner.executor = NewExecutor(name)
	runner.nodes = make(map[string]*node)
	runner.logger = log.New("pipeline", name)
	return runner, nil
}

// Name of the pipeline.
func (r *Runner) Name() (name string) {
	return r.name
}

// Config returns the pipeline configuration.
func (r *Runner) Config() (config Config) {
	return r.config
}

// Capacity returns the configured default queue capacity.
func (r *Runner) Capacity() (capacity int) {
	return r.config.Get("queue", "capacity").Int(DefaultCapacity)
}

// AddNode records a wired link in the pipeline graph under the given name
// with edges from the given parents. Purely bookkeeping for DotGraph and
// the debug listener, it does not affect execution.
func (r *Runner) AddNode(name string, kind types.Kind, parents ...string) (err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if name == "" {
		return errEmptyName
	}

	if _, exists := r.nodes[name]; exists {
		return errInvalidGraph
	}

	n := &node{}
	n.name = name
	n.kind = kind

	for _, parent := range parents {
		if parent == name {
			return errInvalidGraph
		}

		p, exists := r.nodes[parent]
		if !exists {
			return errParentNotFound
		}

		p.downstream = append(p.downstream, n)
	}

	r.nodes[name] = n
	r.order = append(r.order, n)
	return nil
}

// Spawn the given runnables under the given link name.
func (r *Runner) Spawn(name string, runnables ...Runnable) (err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.closed {
		return errRunnerClosed
	}

	for i := range runnables {
		r.executor.Spawn(name, runnables[i])
	}
	return nil
}

// Start the pipeline ancillary services. Runnables are live from the
// moment they are spawned, Start only brings up the debug listener when
// one is configured.
func (r *Runner) Start() (err error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.closed {
		return errRunnerClosed
	}

	addr := r.config.Get("debug", "addr").String("")
	if addr == "" {
		return nil
	}

	r.server = httpserver.New(httpserver.Config{Addr: addr})

	r.server.AddHandler("GET", "/graph",
		func(w http.ResponseWriter, req *http.Request, _ httpserver.Params) {
			fmt.Fprint(w, r.DotGraph())
		})

	r.server.AddHandler("GET", "/healthz",
		func(w http.ResponseWriter, req *http.Request, _ httpserver.Params) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintln(w, "ok")
		})

	go func() {
		if err := r.server.Start(); err != nil {
			r.logger.Errorw("debug server error", "addr", addr, "error", err)
		}
	}()

	r.logger.Infow("debug server listening", "addr", addr)
	return nil
}

// Wait for every spawned runnable to complete.
func (r *Runner) Wait() {
	r.executor.Wait()
}

// Close the pipeline, releasing every suspended task and waiting for all
// runnables to tear down.
func (r *Runner) Close() (err error) {
	r.mtx.Lock()
	if r.closed {
		r.mtx.Unlock()
		return errRunnerClosed
	}
	r.closed = true
	server := r.server
	r.mtx.Unlock()

	r.executor.Shutdown()

	if server != nil {
		err = server.Close(context.Background())
	}

	r.logger.Infow("pipeline closed")
	return err
}

// DotGraph generates a DOT graph representation of the pipeline wiring.
func (r *Runner) DotGraph() (graph string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	sb := &strings.Builder{}
	sb.WriteString("digraph PIPELINE {\nrankdir=LR;\n")

	for _, n := range r.order {
		sb.WriteString(fmt.Sprintf(`"%s" [label="%s\n%s"]`, n.name, n.name, n.kind))
		sb.WriteString("\r\n")
	}

	for _, n := range r.order {
		for _, child := range n.downstream {
			sb.WriteString(fmt.Sprintf(`"%s" -> "%s"`, n.name, child.name))
			sb.WriteString("\r\n")
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// Pipeline wires a pipeline body between the ingress stream produced by
// the input channel link and the egress stream handed to the output
// channel link, returning the runnables it created along the way.
type Pipeline[I, O any] func(runner *Runner, ingress Stream[I]) (runnables []Runnable, egress Stream[O])

// Run assembles and spawns a whole pipeline between the given external
// bounded channels: input channel -> pipeline body -> output channel.
// Closing the input channel drains the pipeline and closes the output
// channel once every item has flowed through.
func Run[I, O any](runner *Runner, input <-chan I, output chan<- O, pipeline Pipeline[I, O]) (err error) {
	capacity := runner.Capacity()

	in := NewInputChannelLink[I]().
		Channel(input).
		Capacity(capacity).
		BuildLink()

	if err = runner.AddNode("input", types.Input); err != nil {
		return err
	}

	runnables, egress := pipeline(runner, in.Egressors[0])

	out := NewOutputChannelLink[O]().
		Ingressor(egress).
		Channel(output).
		BuildLink()

	if err = runner.AddNode("output", types.Output); err != nil {
		return err
	}

	if err = runner.Spawn("input", in.Runnables...); err != nil {
		return err
	}
	if err = runner.Spawn("pipeline", runnables...); err != nil {
		return err
	}
	if err = runner.Spawn("output", out.Runnables...); err != nil {
		return err
	}

	return runner.Start()
}
