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

package mvd

import "fmt"

// Tag bit in the per-target header word of the clone-index chain and in
// partial-clone index entries. On a header it marks a full-clone target;
// on an index entry it marks a function genuinely cloned for this target
// rather than listed for relocation only.
const (
	CloneTagMask uint32 = 0x80000000
	cloneValMask uint32 = ^CloneTagMask
)

// RelocSlot maps a multiversioned function index to the global pointer
// cell that must be patched with the chosen variant's address. The
// relocation list is sorted by FuncIdx.
type RelocSlot struct {
	FuncIdx uint32
	Slot    uint32 // index into ImageTables.Gvars
}

// ImageTables are the dispatch tables of one loaded compiled image, owned
// by the external loader and read-only here except for Gvars, the global
// pointer cells patched during dispatch. All access is index-based against
// the explicit slice lengths; a walk that runs off any table is an
// internal-consistency error, not undefined behavior.
//
// CloneIdxs is a tagged chain, one segment per target in list order. A
// segment starts with a tag+length header: tag set means the target clones
// every function and is followed by length reloc-needing function indices;
// tag clear means a partial clone, followed by its base target index and
// then length entries (tagged = cloned here, untagged = relocation via the
// base). CloneOffsets carries each target's variant offset table: nfunc
// entries per full-clone target (target 0 reuses FuncOffsets), length
// entries per partial target.
type ImageTables struct {
	TextBase uintptr

	FuncOffsets  []int32
	CloneIdxs    []uint32
	CloneOffsets []int32
	RelocSlots   []RelocSlot
	Gvars        []uintptr
}

// Fptrs is the resolved function-pointer view for the chosen target:
// Offsets covers every function (the target's own table for full clones,
// the base target's otherwise), and for partial clones CloneIdxs and
// CloneOffsets list the functions cloned specifically for this target.
type Fptrs struct {
	Offsets      []int32
	CloneIdxs    []uint32
	CloneOffsets []int32
}

func imageCorrupt(format string, args ...any) error {
	return fmt.Errorf("corrupted image dispatch tables: "+format, args...)
}

// DispatchImage walks the clone-index chain up to the chosen target,
// resolves every multiversioned function's variant offset, and patches the
// associated relocation slots with TextBase-relative absolute addresses.
// It runs once per loaded image, before any code in the image may execute.
// Any error is of the fatal internal-consistency class: the image's
// dispatch metadata does not match its target blob and the caller must
// abort rather than run code through stale pointers.
func DispatchImage(img *ImageTables, targetIdx int) (Fptrs, error) {
	res := Fptrs{Offsets: img.FuncOffsets}
	nfunc := len(img.FuncOffsets)

	if len(img.CloneIdxs) == 0 {
		return res, imageCorrupt("empty clone index chain")
	}
	tagLen := img.CloneIdxs[0]
	if tagLen&CloneTagMask == 0 {
		return res, imageCorrupt("first target is not a full clone")
	}
	idxPos := 1 // past the first header
	offPos := 0

	// Walk to the chosen target, recording every full clone's offset
	// table on the way: those are the only valid bases for later partial
	// clones.
	baseOffsets := make([][]int32, 1, targetIdx+1)
	baseOffsets[0] = img.FuncOffsets
	for i := 0; i < targetIdx; i++ {
		segLen := int(tagLen & cloneValMask)
		if tagLen&CloneTagMask != 0 {
			if i != 0 {
				offPos += nfunc
			}
			idxPos += segLen + 1
		} else {
			offPos += segLen
			idxPos += segLen + 2
		}
		if idxPos > len(img.CloneIdxs) || idxPos < 1 {
			return res, imageCorrupt("clone index chain ends before target %d", targetIdx)
		}
		tagLen = img.CloneIdxs[idxPos-1]
		if tagLen&CloneTagMask != 0 {
			if offPos+nfunc > len(img.CloneOffsets) {
				return res, imageCorrupt("clone offset table ends before target %d", i+1)
			}
			baseOffsets = append(baseOffsets, img.CloneOffsets[offPos:offPos+nfunc])
		} else {
			baseOffsets = append(baseOffsets, nil)
		}
	}

	cloneAll := tagLen&CloneTagMask != 0
	segLen := int(tagLen & cloneValMask)

	if cloneAll {
		if targetIdx != 0 {
			if offPos+nfunc > len(img.CloneOffsets) {
				return res, imageCorrupt("clone offset table too short for target %d", targetIdx)
			}
			res.Offsets = img.CloneOffsets[offPos : offPos+nfunc]
		}
	} else {
		if idxPos >= len(img.CloneIdxs) {
			return res, imageCorrupt("missing base index for target %d", targetIdx)
		}
		baseIdx := int(img.CloneIdxs[idxPos])
		idxPos++
		if baseIdx >= targetIdx {
			return res, imageCorrupt("target %d references base %d ahead of it", targetIdx, baseIdx)
		}
		if baseOffsets[baseIdx] == nil {
			return res, imageCorrupt("target %d references partial-clone base %d", targetIdx, baseIdx)
		}
		res.Offsets = baseOffsets[baseIdx]
	}
	if idxPos+segLen > len(img.CloneIdxs) {
		return res, imageCorrupt("clone index chain too short for target %d", targetIdx)
	}
	if !cloneAll {
		if offPos+segLen > len(img.CloneOffsets) {
			return res, imageCorrupt("clone offset table too short for target %d", targetIdx)
		}
		res.CloneIdxs = img.CloneIdxs[idxPos : idxPos+segLen]
		res.CloneOffsets = img.CloneOffsets[offPos : offPos+segLen]
	}

	// Patch the relocation slots. The slot list is sorted by function
	// index and the chain lists indices in ascending order, so a single
	// forward cursor covers both.
	relocI := 0
	for i := 0; i < segLen; i++ {
		idx := img.CloneIdxs[idxPos+i]
		var offset int32
		if cloneAll {
			if int(idx) >= len(res.Offsets) {
				return res, imageCorrupt("function index %d out of range", idx)
			}
			offset = res.Offsets[idx]
		} else if idx&CloneTagMask != 0 {
			idx &= cloneValMask
			offset = img.CloneOffsets[offPos+i]
		} else {
			// Inherited from the base target: nothing to patch.
			continue
		}
		found := false
		for ; relocI < len(img.RelocSlots); relocI++ {
			slot := img.RelocSlots[relocI]
			if slot.FuncIdx == idx {
				if int(slot.Slot) >= len(img.Gvars) {
					return res, imageCorrupt("relocation slot %d out of range", slot.Slot)
				}
				img.Gvars[slot.Slot] = img.TextBase + uintptr(offset)
				found = true
			} else if slot.FuncIdx > idx {
				break
			}
		}
		if !found {
			return res, imageCorrupt("no relocation slot for cloned function %d", idx)
		}
	}
	return res, nil
}

// SelectImageTarget decodes the target-identifier blob embedded in an
// image and matches it against the permitted feature ceiling, returning
// the chosen target index together with the decoded list. This is the
// load-time composition: the result index feeds DispatchImage.
func SelectImageTarget(arch *Arch, max FeatureList, blob []byte, opts MatchOptions) (int, []TargetData, error) {
	targets, err := DeserializeTargets(blob)
	if err != nil {
		return 0, nil, err
	}
	idx, err := MatchTargets(arch, max, targets, opts)
	if err != nil {
		return 0, nil, err
	}
	return idx, targets, nil
}
