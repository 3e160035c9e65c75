// Copyright 2025 go-multiversion Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mvd implements CPU feature detection and function multiversioning
// dispatch: deciding which feature/CPU targets a function is cloned for,
// encoding that decision into a compact blob embedded in a compiled image,
// and matching the running host against the embedded targets at load time
// to patch function-pointer slots to the correct pre-compiled variant.
//
// The engine is generic: per-architecture data (CPU tables, feature name
// tables, dependency edges) is supplied as plain immutable values of type
// Arch, and every algorithm here operates only on that data.
package mvd

import "math/bits"

// FeatureWords is the number of 32-bit words in a FeatureList, shared by
// the writer and the reader of an embedded target blob. A blob carrying a
// different word count was produced by an incompatible build and is
// rejected at deserialization time.
const FeatureWords = 4

// MaxFeatureBits is the number of addressable feature bits.
const MaxFeatureBits = 32 * FeatureWords

// FeatureList is a fixed-width bit set of CPU feature flags, indexed by the
// dense architecture-defined bit index of each feature. It is a value type:
// the binary operators return new values, and only SetBit, UnsetBits and
// Mask mutate their receiver. All operations are word-wise and
// allocation-free; the list sits on the load-time critical path.
type FeatureList [FeatureWords]uint32

// Test reports whether the given feature bit is set.
func (fl FeatureList) Test(bit uint32) bool {
	return fl[bit/32]&(1<<(bit%32)) != 0
}

// SetBit sets or clears a single feature bit in place.
func (fl *FeatureList) SetBit(bit uint32, on bool) {
	if on {
		fl[bit/32] |= 1 << (bit % 32)
	} else {
		fl[bit/32] &^= 1 << (bit % 32)
	}
}

// UnsetBits clears the given feature bits in place.
func (fl *FeatureList) UnsetBits(bitIdxs ...uint32) {
	for _, bit := range bitIdxs {
		fl[bit/32] &^= 1 << (bit % 32)
	}
}

// Or returns the union of the two feature lists.
func (fl FeatureList) Or(other FeatureList) FeatureList {
	var r FeatureList
	for i := range fl {
		r[i] = fl[i] | other[i]
	}
	return r
}

// And returns the intersection of the two feature lists.
func (fl FeatureList) And(other FeatureList) FeatureList {
	var r FeatureList
	for i := range fl {
		r[i] = fl[i] & other[i]
	}
	return r
}

// AndNot returns the features in fl that are not in other.
func (fl FeatureList) AndNot(other FeatureList) FeatureList {
	var r FeatureList
	for i := range fl {
		r[i] = fl[i] &^ other[i]
	}
	return r
}

// Not returns the complement of the feature list.
func (fl FeatureList) Not() FeatureList {
	var r FeatureList
	for i := range fl {
		r[i] = ^fl[i]
	}
	return r
}

// Mask intersects the list with masks in place.
func (fl *FeatureList) Mask(masks FeatureList) {
	for i := range fl {
		fl[i] &= masks[i]
	}
}

// NBits returns the number of set feature bits.
func (fl FeatureList) NBits() int {
	cnt := 0
	for _, w := range fl {
		cnt += bits.OnesCount32(w)
	}
	return cnt
}

// Empty reports whether no feature bit is set.
func (fl FeatureList) Empty() bool {
	for _, w := range fl {
		if w != 0 {
			return false
		}
	}
	return true
}

// LE reports whether fl is a subset of other, i.e. fl has no bit set
// outside other.
func (fl FeatureList) LE(other FeatureList) bool {
	for i := range fl {
		if fl[i]&^other[i] != 0 {
			return false
		}
	}
	return true
}

// FeatureMask builds a FeatureList from a list of feature bit indices.
// Indices outside [0, MaxFeatureBits) are ignored so that tables can carry
// placeholder entries.
func FeatureMask(bitIdxs ...uint32) FeatureList {
	var fl FeatureList
	for _, bit := range bitIdxs {
		if bit < MaxFeatureBits {
			fl.SetBit(bit, true)
		}
	}
	return fl
}

// FeatureDep is a directed dependency edge: if Feature is enabled, Dep must
// also be enabled (and if Dep is unavailable, Feature must be cleared).
type FeatureDep struct {
	Feature uint32
	Dep     uint32
}

// EnableDepends returns the least superset of features that is closed under
// the dependency list: every prerequisite of an enabled feature is enabled
// too. The list is rescanned in reverse until a pass makes no progress;
// growth is monotone and bounded by the total bit count, so the loop
// terminates, and reapplying to a closed set is a no-op.
func EnableDepends(features FeatureList, deps []FeatureDep) FeatureList {
	changed := true
	for changed {
		changed = false
		for i := len(deps) - 1; i >= 0; i-- {
			dep := deps[i]
			if !features.Test(dep.Feature) || features.Test(dep.Dep) {
				continue
			}
			features.SetBit(dep.Dep, true)
			changed = true
		}
	}
	return features
}

// DisableDepends is the dual closure: a feature whose prerequisite is
// absent is cleared, iterated to a fixed point.
func DisableDepends(features FeatureList, deps []FeatureDep) FeatureList {
	changed := true
	for changed {
		changed = false
		for i := len(deps) - 1; i >= 0; i-- {
			dep := deps[i]
			if !features.Test(dep.Feature) || features.Test(dep.Dep) {
				continue
			}
			features.UnsetBits(dep.Feature)
			changed = true
		}
	}
	return features
}
