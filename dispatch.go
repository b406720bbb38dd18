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
	"github.com/dgryski/go-jump"
	"github.com/dgryski/go-wyhash"
)

// JumpDispatcher maps uint64 class keys onto numEgressors ports with jump
// consistent hashing. Items with the same class always land on the same
// port, and class to port assignments move minimally when the port count
// changes between pipeline versions.
func JumpDispatcher(numEgressors int) (dispatch DispatchFunc[uint64]) {
	guardEgressors(numEgressors)

	return func(class uint64) (port int) {
		return int(jump.Hash(class, numEgressors))
	}
}

// KeyClassifier builds a classifier hashing the byte key extracted from
// each item into a uint64 class. Combined with JumpDispatcher it spreads
// flows over ports while keeping each flow on a single port.
func KeyClassifier[T any](seed uint64, key func(item T) []byte) (classifier Classifier[T, uint64]) {
	return ClassifierFunc[T, uint64](func(item T) (class uint64) {
		return wyhash.Hash(key(item), seed)
	})
}
