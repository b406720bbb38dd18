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
	"github.com/linkrun/linkrun/store/moss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureLinkPanicsWhenMisbuilt(t *testing.T) {
	store, err := moss.Open("capture")
	require.NoError(t, err)
	defer store.Close()

	assert.Panics(t, func() {
		linkrun.NewCaptureLink[linkrun.Frame]().Store(store).BuildLink()
	}, "missing ingressors")

	assert.Panics(t, func() {
		linkrun.NewCaptureLink[linkrun.Frame]().
			Ingressor(linktest.Immediate[linkrun.Frame]()).
			BuildLink()
	}, "missing store")
}

func TestCaptureLinkPersistsInArrivalOrder(t *testing.T) {
	store, err := moss.Open("capture")
	require.NoError(t, err)
	defer store.Close()

	frames := []linkrun.Frame{
		linkrun.NewFrame([]byte("first")),
		linkrun.NewFrame([]byte("second")),
		linkrun.NewFrame([]byte("third")),
	}

	link := linkrun.NewCaptureLink[linkrun.Frame]().
		Ingressor(linktest.Immediate(frames...)).
		Store(store).
		BuildLink()

	assert.Empty(t, link.Egressors)
	linktest.RunLink(link)

	var captured [][]byte
	err = store.Range(nil, nil, func(key, value []byte) error {
		copied := make([]byte, len(value))
		copy(copied, value)
		captured = append(captured, copied)
		return nil
	})
	require.NoError(t, err)

	// Big endian sequence keys replay the capture in arrival order.
	assert.Equal(t, [][]byte{
		[]byte("first"),
		[]byte("second"),
		[]byte("third"),
	}, captured)
}

func TestCaptureLinkDrainsMultipleIngresses(t *testing.T) {
	store, err := moss.Open("capture")
	require.NoError(t, err)
	defer store.Close()

	link := linkrun.NewCaptureLink[linkrun.StringEncoder]().
		Ingressor(linktest.Immediate[linkrun.StringEncoder]("a", "b")).
		Ingressor(linktest.Immediate[linkrun.StringEncoder]("c")).
		Store(store).
		BuildLink()

	linktest.RunLink(link)

	count := 0
	err = store.Range(nil, nil, func(key, value []byte) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
