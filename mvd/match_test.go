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

func mustParse(t *testing.T, arch *Arch, spec string) []TargetData {
	t.Helper()
	targets, err := ParseTargets(arch, spec)
	if err != nil {
		t.Fatalf("ParseTargets(%q): %v", spec, err)
	}
	return targets
}

func TestMatchExcludesInfeasible(t *testing.T) {
	// A host without AVX-512 must never select the AVX-512 target, even
	// though its CPU name is an exact table match.
	targets := mustParse(t, X86, "generic;skylake-avx512")
	max := EnableDepends(x86FeaturesHaswell, X86.Deps)
	idx, err := MatchTargets(X86, max, targets, MatchOptions{})
	if err != nil {
		t.Fatalf("MatchTargets: %v", err)
	}
	if idx != 0 {
		t.Errorf("idx = %d, want 0 (avx512 target must be excluded)", idx)
	}
}

func TestMatchNamePriority(t *testing.T) {
	// Both targets are feasible; the exact CPU name match wins even
	// though it appears earlier in the list.
	targets := mustParse(t, X86, "generic;haswell;generic,avx2")
	max := EnableDepends(x86FeaturesSkylake, X86.Deps)
	idx, err := MatchTargets(X86, max, targets, MatchOptions{})
	if err != nil {
		t.Fatalf("MatchTargets: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1 (named target)", idx)
	}
}

func TestMatchClassRanking(t *testing.T) {
	// The wider register class beats a larger feature count in the
	// narrower class. Both targets are generic so name priority stays
	// out of the picture.
	targets := mustParse(t, X86,
		"generic,avx2,bmi,bmi2,fma,popcnt,aes,movbe,rdrnd;generic,avx512f")
	max := EnableDepends(x86FeaturesSkylakeAVX512, X86.Deps)
	idx, err := MatchTargets(X86, max, targets, MatchOptions{})
	if err != nil {
		t.Fatalf("MatchTargets: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1 (avx512 class)", idx)
	}
}

func TestMatchFeatureCountTieBreak(t *testing.T) {
	// Same AVX class: the candidate with more enabled bits wins
	// regardless of list position.
	targets := mustParse(t, X86, "broadwell;haswell")
	max := EnableDepends(x86FeaturesSkylake, X86.Deps)
	idx, err := MatchTargets(X86, max, targets, MatchOptions{})
	if err != nil {
		t.Fatalf("MatchTargets: %v", err)
	}
	if idx != 0 {
		t.Errorf("idx = %d, want 0 (broadwell has more features)", idx)
	}
}

func TestMatchPositionTieBreak(t *testing.T) {
	// Fully tied candidates: the latest list position wins.
	targets := mustParse(t, X86, "haswell;haswell;haswell")
	max := EnableDepends(x86FeaturesSkylake, X86.Deps)
	idx, err := MatchTargets(X86, max, targets, MatchOptions{})
	if err != nil {
		t.Fatalf("MatchTargets: %v", err)
	}
	if idx != 2 {
		t.Errorf("idx = %d, want 2 (latest position)", idx)
	}
}

func TestMatchDeterminism(t *testing.T) {
	targets := mustParse(t, X86, "generic;haswell;broadwell;generic,avx2,bmi")
	max := EnableDepends(x86FeaturesSkylake, X86.Deps)
	first, err := MatchTargets(X86, max, targets, MatchOptions{})
	if err != nil {
		t.Fatalf("MatchTargets: %v", err)
	}
	for i := 0; i < 32; i++ {
		idx, err := MatchTargets(X86, max, targets, MatchOptions{})
		if err != nil {
			t.Fatalf("MatchTargets: %v", err)
		}
		if idx != first {
			t.Fatalf("run %d: idx = %d, previous = %d", i, idx, first)
		}
	}
}

func TestMatchExternalNameLookup(t *testing.T) {
	// A CPU name only the embedded toolchain knows still counts as an
	// exact name match when the lookup callback accepts it.
	targets := mustParse(t, X86, "generic;futurelake,avx2")
	max := EnableDepends(x86FeaturesSkylake, X86.Deps)

	idx, err := MatchTargets(X86, max, targets, MatchOptions{
		NameLookup: func(name string) bool { return name == "futurelake" },
	})
	if err != nil {
		t.Fatalf("MatchTargets: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1 (toolchain-recognized name)", idx)
	}

	// Without the callback the unknown name is not a name match and the
	// generic entry survives; class ranking then prefers the AVX target.
	idx, err = MatchTargets(X86, max, targets, MatchOptions{})
	if err != nil {
		t.Fatalf("MatchTargets: %v", err)
	}
	if idx != 1 {
		t.Errorf("idx = %d, want 1 (widest class)", idx)
	}
}

func TestMatchNoFeasibleTarget(t *testing.T) {
	// Index 0 always being feasible is a construction invariant of the
	// build side; a list violating it is internal corruption.
	targets := mustParse(t, X86, "skylake-avx512")
	_, err := MatchTargets(X86, FeatureList{}, targets, MatchOptions{})
	if err == nil {
		t.Fatal("no error for infeasible target list")
	}
	if !strings.Contains(err.Error(), "internal consistency") {
		t.Errorf("err = %v, want internal consistency class", err)
	}
	if _, err := MatchTargets(X86, FeatureList{}, nil, MatchOptions{}); err == nil {
		t.Fatal("no error for empty target list")
	}
}

func TestTargetFeatures(t *testing.T) {
	targets := mustParse(t, X86, "haswell,-avx2,avx512vpopcntdq")
	got := TargetFeatures(X86, &targets[0])
	if got.Test(X86AVX2) {
		t.Error("explicitly disabled avx2 still present")
	}
	if !got.Test(X86AVX512VPOPCNTDQ) || !got.Test(X86AVX512F) {
		t.Error("explicit enable not closed under dependencies")
	}
	if !got.Test(X86SSE42) {
		t.Error("CPU default features missing")
	}
}
