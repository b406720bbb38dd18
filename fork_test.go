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

	"github.com/linkrun/linkrun"
	"github.com/linkrun/linkrun/linktest"
	"github.com/stretchr/testify/assert"
)

func TestForkLinkPanicsWhenMisbuilt(t *testing.T) {
	assert.Panics(t, func() {
		linkrun.NewForkLink[int]().NumEgressors(10).BuildLink()
	}, "missing ingressor")

	assert.Panics(t, func() {
		linkrun.NewForkLink[int]().
			Ingressor(linktest.Immediate[int]()).
			BuildLink()
	}, "missing num egressors")

	assert.Panics(t, func() {
		linkrun.NewForkLink[int]().Capacity(0)
	}, "capacity out of range")
}

func TestForkLinkBuilderMethodsWorkInAnyOrder(t *testing.T) {
	linkrun.NewForkLink[int]().
		Ingressor(linktest.Immediate[int]()).
		NumEgressors(2).
		BuildLink()

	linkrun.NewForkLink[int]().
		NumEgressors(2).
		Ingressor(linktest.Immediate[int]()).
		BuildLink()
}

func TestForkLinkNoInput(t *testing.T) {
	link := linkrun.NewForkLink[int]().
		Ingressor(linktest.Immediate[int]()).
		NumEgressors(1).
		BuildLink()

	results := linktest.RunLink(link)
	assert.Empty(t, results[0])
}

func TestForkLinkOneWay(t *testing.T) {
	items := []int{0, 1, 2, 420, 1337, 3, 4, 5, 6, 7, 8, 9}

	link := linkrun.NewForkLink[int]().
		Ingressor(linktest.Immediate(items...)).
		NumEgressors(1).
		BuildLink()

	results := linktest.RunLink(link)
	assert.Equal(t, items, results[0])
}

func TestForkLinkThreeWay(t *testing.T) {
	items := []int{0, 1, 2, 420, 1337, 3, 4, 5, 6, 7, 8, 9}

	link := linkrun.NewForkLink[int]().
		Ingressor(linktest.Immediate(items...)).
		NumEgressors(3).
		BuildLink()

	results := linktest.RunLink(link)
	assert.Equal(t, items, results[0])
	assert.Equal(t, items, results[1])
	assert.Equal(t, items, results[2])
}

func TestForkLinkClonesAreIndependent(t *testing.T) {
	frame := linkrun.NewFrame([]byte("payload"))

	link := linkrun.NewForkLink[linkrun.Frame]().
		Ingressor(linktest.Immediate(frame)).
		CloneWith(linkrun.Frame.Clone).
		NumEgressors(2).
		BuildLink()

	results := linktest.RunLink(link)

	left := results[0][0]
	right := results[1][0]
	assert.Equal(t, left.ID, right.ID)
	assert.Equal(t, left.Payload, right.Payload)

	// Mutating one copy must not reach the other.
	left.Payload[0] = 'X'
	assert.NotEqual(t, left.Payload, right.Payload)
}
