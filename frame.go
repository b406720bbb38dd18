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
	"github.com/cespare/xxhash"
)

// Frame is an opaque payload flowing through a pipeline. The runtime does
// no protocol parsing, a Frame is bytes plus a content ID calculated over
// the payload.
type Frame struct {
	ID      uint64
	Payload []byte
}

// NewFrame creates a frame over the given payload, calculating its ID if
// the frame has any content.
func NewFrame(payload []byte) (frame Frame) {
	frame.Payload = payload

	if len(payload) > 0 {
		frame.ID = xxhash.Sum64(payload)
	}

	return frame
}

// Clone the frame into an independent copy for broadcast on a ForkLink.
func (f Frame) Clone() (frame Frame) {
	frame.ID = f.ID
	frame.Payload = make([]byte, len(f.Payload))
	copy(frame.Payload, f.Payload)
	return frame
}

// Encode serializes the frame payload as []byte
func (f Frame) Encode() ([]byte, error) {
	return f.Payload, nil
}

// Interface labels the inbound or outbound side of an annotated item.
// Unmarked denotes an unknown or yet to be determined interface.
type Interface uint8

const (
	// Host interface
	Host = Interface(0)
	// Wan interface
	Wan = Interface(1)
	// Lan interface
	Lan = Interface(2)
	// Unmarked interface
	Unmarked = Interface(3)
)

func (i Interface) String() (name string) {
	switch i {
	case Host:
		return "host"
	case Wan:
		return "wan"
	case Lan:
		return "lan"
	case Unmarked:
		return "unmarked"
	}
	return "unknown"
}

// Annotated wraps an item with the inbound interface it originated from
// and the outbound interface it is marked to be routed to.
type Annotated[P any] struct {
	Packet   P
	Inbound  Interface
	Outbound Interface
}
