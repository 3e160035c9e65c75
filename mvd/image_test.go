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

import (
	"strings"
	"testing"
)

// fullCloneImage builds an image with two full-clone targets over four
// functions. Functions 1 and 3 are referenced through global slots.
func fullCloneImage() *ImageTables {
	return &ImageTables{
		TextBase:    0x1000,
		FuncOffsets: []int32{0, 16, 32, 48},
		CloneIdxs: []uint32{
			CloneTagMask | 2, 1, 3, // target 0: full clone, reloc funcs 1, 3
			CloneTagMask | 2, 1, 3, // target 1: full clone, reloc funcs 1, 3
		},
		CloneOffsets: []int32{100, 116, 132, 148}, // target 1's table
		RelocSlots:   []RelocSlot{{1, 0}, {3, 1}},
		Gvars:        make([]uintptr, 2),
	}
}

func TestDispatchFullCloneBaseline(t *testing.T) {
	img := fullCloneImage()
	fptrs, err := DispatchImage(img, 0)
	if err != nil {
		t.Fatalf("DispatchImage: %v", err)
	}
	if &fptrs.Offsets[0] != &img.FuncOffsets[0] {
		t.Error("baseline target must use the main offset table")
	}
	if fptrs.CloneIdxs != nil || fptrs.CloneOffsets != nil {
		t.Error("full clone must not report partial clone lists")
	}
	if img.Gvars[0] != 0x1000+16 || img.Gvars[1] != 0x1000+48 {
		t.Errorf("Gvars = %#x, want baseline offsets", img.Gvars)
	}
}

func TestDispatchFullCloneSecondTarget(t *testing.T) {
	img := fullCloneImage()
	fptrs, err := DispatchImage(img, 1)
	if err != nil {
		t.Fatalf("DispatchImage: %v", err)
	}
	if &fptrs.Offsets[0] != &img.CloneOffsets[0] {
		t.Error("target 1 must use its own clone offset table")
	}
	if len(fptrs.Offsets) != len(img.FuncOffsets) {
		t.Errorf("len(Offsets) = %d, want %d", len(fptrs.Offsets), len(img.FuncOffsets))
	}
	if img.Gvars[0] != 0x1000+116 || img.Gvars[1] != 0x1000+148 {
		t.Errorf("Gvars = %#x, want target 1 offsets", img.Gvars)
	}
}

// partialCloneImage builds an image with two full-clone targets and one
// partial-clone target based on target 0. The partial target clones only
// function 2 and lists function 1 for base-inherited dispatch.
func partialCloneImage() *ImageTables {
	return &ImageTables{
		TextBase:    0x2000,
		FuncOffsets: []int32{0, 16, 32, 48},
		CloneIdxs: []uint32{
			CloneTagMask | 1, 1, // target 0: full clone
			CloneTagMask | 1, 1, // target 1: full clone
			2, 0, // target 2: partial, base 0
			1, CloneTagMask | 2, // entries: func 1 inherited, func 2 cloned
		},
		CloneOffsets: []int32{
			100, 116, 132, 148, // target 1's full table
			-1, 232, // target 2: one unused entry, clone of func 2
		},
		RelocSlots: []RelocSlot{{1, 0}, {2, 1}},
		Gvars:      make([]uintptr, 2),
	}
}

func TestDispatchPartialClone(t *testing.T) {
	img := partialCloneImage()
	fptrs, err := DispatchImage(img, 2)
	if err != nil {
		t.Fatalf("DispatchImage: %v", err)
	}
	if &fptrs.Offsets[0] != &img.FuncOffsets[0] {
		t.Error("partial clone must inherit the base target's offset table")
	}
	if len(fptrs.CloneIdxs) != 2 || len(fptrs.CloneOffsets) != 2 {
		t.Fatalf("clone lists = %v / %v, want length 2", fptrs.CloneIdxs, fptrs.CloneOffsets)
	}
	if fptrs.CloneIdxs[1] != CloneTagMask|2 || fptrs.CloneOffsets[1] != 232 {
		t.Errorf("clone entry = %#x/%d, want tagged func 2 at 232", fptrs.CloneIdxs[1], fptrs.CloneOffsets[1])
	}
	// Only the genuinely cloned function gets its slot patched; the
	// inherited one is left for the base target's relocation pass.
	if img.Gvars[1] != 0x2000+232 {
		t.Errorf("Gvars[1] = %#x, want %#x", img.Gvars[1], uintptr(0x2000+232))
	}
	if img.Gvars[0] != 0 {
		t.Errorf("Gvars[0] = %#x, want unpatched", img.Gvars[0])
	}
}

func TestDispatchWalkPastPartialTarget(t *testing.T) {
	// Selecting target 1 must walk over target 0 without consuming
	// clone offsets for it and land on target 1's own table.
	img := partialCloneImage()
	fptrs, err := DispatchImage(img, 1)
	if err != nil {
		t.Fatalf("DispatchImage: %v", err)
	}
	if &fptrs.Offsets[0] != &img.CloneOffsets[0] {
		t.Error("target 1 must use its own clone offset table")
	}
	if img.Gvars[0] != 0x2000+116 {
		t.Errorf("Gvars[0] = %#x, want %#x", img.Gvars[0], uintptr(0x2000+116))
	}
}

func TestDispatchMissingRelocSlot(t *testing.T) {
	img := fullCloneImage()
	img.RelocSlots = []RelocSlot{{1, 0}} // no slot for function 3
	_, err := DispatchImage(img, 1)
	if err == nil {
		t.Fatal("no error for missing relocation slot")
	}
	if !strings.Contains(err.Error(), "no relocation slot") {
		t.Errorf("err = %v, want missing relocation slot", err)
	}
}

func TestDispatchCorruptChain(t *testing.T) {
	img := fullCloneImage()
	img.CloneIdxs[0] &^= CloneTagMask // baseline must be a full clone
	if _, err := DispatchImage(img, 1); err == nil {
		t.Fatal("no error for untagged baseline header")
	}

	img = fullCloneImage()
	img.CloneIdxs = img.CloneIdxs[:3] // chain ends before target 1
	if _, err := DispatchImage(img, 1); err == nil {
		t.Fatal("no error for short clone index chain")
	}

	img = fullCloneImage()
	img.CloneOffsets = img.CloneOffsets[:2] // table shorter than nfunc
	if _, err := DispatchImage(img, 1); err == nil {
		t.Fatal("no error for short clone offset table")
	}

	img = partialCloneImage()
	img.CloneIdxs[5] = 2 // base must be strictly below the target
	if _, err := DispatchImage(img, 2); err == nil {
		t.Fatal("no error for base index not below target")
	}
}

func TestSelectImageTarget(t *testing.T) {
	targets, err := ParseTargets(X86, "generic;haswell,clone_all")
	if err != nil {
		t.Fatalf("ParseTargets: %v", err)
	}
	blob := SerializeTargets(targets)
	max := EnableDepends(x86FeaturesSkylake, X86.Deps)

	idx, decoded, err := SelectImageTarget(X86, max, blob, MatchOptions{})
	if err != nil {
		t.Fatalf("SelectImageTarget: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1", idx)
	}
	if len(decoded) != 2 || decoded[1].Name != "haswell" {
		t.Errorf("decoded = %+v", decoded)
	}

	// The chosen index drives the dispatch walk end to end.
	img := fullCloneImage()
	if _, err := DispatchImage(img, idx); err != nil {
		t.Fatalf("DispatchImage: %v", err)
	}
	if img.Gvars[0] != 0x1000+116 {
		t.Errorf("Gvars[0] = %#x after full flow", img.Gvars[0])
	}

	if _, _, err := SelectImageTarget(X86, max, blob[:7], MatchOptions{}); err == nil {
		t.Fatal("no error for truncated identifier blob")
	}
}
