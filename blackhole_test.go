package linkrun_test

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
	"testing"
	"time"

	"github.com/linkrun/linkrun"
	"github.com/linkrun/linkrun/linktest"
	"github.com/stretchr/testify/assert"
)

func TestBlackHoleLinkPanicsWithoutIngressors(t *testing.T) {
	assert.Panics(t, func() {
		linkrun.NewBlackHoleLink[int]().BuildLink()
	})
}

func TestBlackHoleLinkFinishes(t *testing.T) {
	items := []int{0, 1, 2, 420, 1337, 3, 4, 5, 6, 7, 8, 9}

	link := linkrun.NewBlackHoleLink[int]().
		Ingressor(linktest.Immediate(items...)).
		BuildLink()

	// Completion is the whole assertion, the hole has no egress.
	linktest.RunLink(link)
	assert.Empty(t, link.Egressors)
}

func TestBlackHoleLinkFinishesWithWait(t *testing.T) {
	items := []int{0, 1, 2, 420, 1337, 3, 4, 5, 6, 7, 8, 9}

	link := linkrun.NewBlackHoleLink[int]().
		Ingressor(linktest.Interval(time.Millisecond, items...)).
		Ingressor(linktest.Immediate(items...)).
		BuildLink()

	linktest.RunLink(link)
}

func TestBlackHoleLinkDrainsClassifiedPort(t *testing.T) {
	items := []int{0, 1, 2, 420, 1337, 3, 4, 5, 6, 7, 8, 9}

	classify := linkrun.NewClassifyLink[int, bool]().
		Ingressor(linktest.Immediate(items...)).
		Classifier(evenness()).
		Dispatcher(evenOddDispatch).
		NumEgressors(2).
		BuildLink()

	hole := linkrun.NewBlackHoleLink[int]().
		Ingressor(classify.Egressors[1]).
		BuildLink()

	collector := linktest.Collect(classify.Egressors[0])

	executor := linkrun.NewExecutor("blackhole")
	executor.Spawn("collector", collector)
	executor.SpawnAll("classify", classify.Runnables)
	executor.SpawnAll("hole", hole.Runnables)
	executor.Wait()

	assert.Equal(t, []int{0, 2, 420, 4, 6, 8}, collector.Items())
}
