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
	"sort"
	"testing"

	"github.com/linkrun/linkrun"
	"github.com/linkrun/linkrun/linktest"
	"github.com/stretchr/testify/assert"
)

func evenness() (classifier linkrun.Classifier[int, bool]) {
	return linkrun.ClassifierFunc[int, bool](func(item int) (class bool) {
		return item%2 == 0
	})
}

func evenOddDispatch(class bool) (port int) {
	if class {
		return 0
	}
	return 1
}

func TestClassifyLinkPanicsWhenMisbuilt(t *testing.T) {
	assert.Panics(t, func() {
		linkrun.NewClassifyLink[int, bool]().
			Classifier(evenness()).
			Dispatcher(evenOddDispatch).
			NumEgressors(2).
			BuildLink()
	}, "missing ingressor")

	assert.Panics(t, func() {
		linkrun.NewClassifyLink[int, bool]().
			Ingressor(linktest.Immediate[int]()).
			Dispatcher(evenOddDispatch).
			NumEgressors(2).
			BuildLink()
	}, "missing classifier")

	assert.Panics(t, func() {
		linkrun.NewClassifyLink[int, bool]().
			Ingressor(linktest.Immediate[int]()).
			Classifier(evenness()).
			NumEgressors(2).
			BuildLink()
	}, "missing dispatcher")

	assert.Panics(t, func() {
		linkrun.NewClassifyLink[int, bool]().
			Ingressor(linktest.Immediate[int]()).
			Classifier(evenness()).
			Dispatcher(evenOddDispatch).
			BuildLink()
	}, "missing num egressors")

	assert.Panics(t, func() {
		linkrun.NewClassifyLink[int, bool]().NumEgressors(1001)
	}, "num egressors out of range")
}

func TestClassifyLinkByParity(t *testing.T) {
	items := []int{0, 1, 2, 420, 1337, 3, 4, 5, 6, 7, 8, 9}

	link := linkrun.NewClassifyLink[int, bool]().
		Ingressor(linktest.Immediate(items...)).
		Classifier(evenness()).
		Dispatcher(evenOddDispatch).
		NumEgressors(2).
		BuildLink()

	results := linktest.RunLink(link)
	assert.Equal(t, []int{0, 2, 420, 4, 6, 8}, results[0])
	assert.Equal(t, []int{1, 1337, 3, 5, 7, 9}, results[1])
}

func TestClassifyLinkPartitionsInput(t *testing.T) {
	items := []int{5, 12, 7, 3, 99, 4, 18, 2, 2, 61, 40, 11}

	link := linkrun.NewClassifyLink[int, int]().
		Ingressor(linktest.Immediate(items...)).
		Classifier(linkrun.ClassifierFunc[int, int](func(item int) (class int) {
			return item % 3
		})).
		Dispatcher(func(class int) (port int) { return class }).
		NumEgressors(3).
		Capacity(2).
		BuildLink()

	results := linktest.RunLink(link)

	// Every item lands on exactly one egress, the union equals the input.
	var union []int
	for _, result := range results {
		union = append(union, result...)
	}
	assert.Len(t, union, len(items))

	expected := append([]int(nil), items...)
	sort.Ints(expected)
	sort.Ints(union)
	assert.Equal(t, expected, union)
}

func TestJumpDispatcherPortsInRange(t *testing.T) {
	dispatch := linkrun.JumpDispatcher(8)

	for class := uint64(0); class < 4096; class++ {
		port := dispatch(class)
		assert.GreaterOrEqual(t, port, 0)
		assert.Less(t, port, 8)
	}
}

func TestKeyClassifierIsDeterministic(t *testing.T) {
	classifier := linkrun.KeyClassifier[string](42,
		func(item string) (key []byte) { return []byte(item) })

	assert.Equal(t, classifier.Classify("flow-1"), classifier.Classify("flow-1"))
	assert.NotEqual(t, classifier.Classify("flow-1"), classifier.Classify("flow-2"))
}

func TestClassifyLinkFlowAffinity(t *testing.T) {
	flows := []string{"a", "b", "c", "a", "b", "c", "a", "b", "c"}

	link := linkrun.NewClassifyLink[string, uint64]().
		Ingressor(linktest.Immediate(flows...)).
		Classifier(linkrun.KeyClassifier[string](7,
			func(item string) (key []byte) { return []byte(item) })).
		Dispatcher(linkrun.JumpDispatcher(4)).
		NumEgressors(4).
		BuildLink()

	results := linktest.RunLink(link)

	// A flow never splits across ports.
	seen := make(map[string]int)
	for port, result := range results {
		for _, item := range result {
			if prev, ok := seen[item]; ok {
				assert.Equal(t, prev, port, "flow %q split across ports", item)
			}
			seen[item] = port
		}
	}
}
