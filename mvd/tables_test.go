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

import "testing"

func TestCPULookups(t *testing.T) {
	spec := X86.FindCPUByName("skylake-avx512")
	if spec == nil {
		t.Fatal("skylake-avx512 not in table")
	}
	if spec.ID != X86CPUSkylakeAVX512 || spec.Fallback != X86CPUSkylake {
		t.Errorf("spec = %+v", spec)
	}
	if got := X86.FindCPUByID(spec.ID); got == nil || got.Name != "skylake-avx512" {
		t.Errorf("FindCPUByID = %+v", got)
	}
	if X86.FindCPUByName("no-such-cpu") != nil {
		t.Error("lookup of unknown name succeeded")
	}
	if got := X86.CPUName(CPUID(1234)); got != GenericCPUName {
		t.Errorf("CPUName(unknown) = %q, want %q", got, GenericCPUName)
	}
	if got := X86.CPUIDForName("no-such-cpu"); got != GenericCPU {
		t.Errorf("CPUIDForName(unknown) = %d, want generic", got)
	}
}

func TestFindFeatureBit(t *testing.T) {
	bit, ok := X86.FindFeatureBit("sse4.2")
	if !ok || bit != X86SSE42 {
		t.Errorf("FindFeatureBit(sse4.2) = %d, %v", bit, ok)
	}
	if _, ok := X86.FindFeatureBit("sse4"); ok {
		t.Error("prefix of a feature name matched")
	}
	if got := X86.FeatureNameForBit(X86AVX512VBMI); got != "avx512vbmi" {
		t.Errorf("FeatureNameForBit = %q", got)
	}
	if got := X86.FeatureNameForBit(MaxFeatureBits - 1); got != "" {
		t.Errorf("FeatureNameForBit(unclaimed) = %q", got)
	}
}

func TestCPUDefaultsSatisfyDeps(t *testing.T) {
	// Every CPU's default feature set must already be dependency-closed;
	// the matcher relies on closure being a no-op for table entries.
	for _, arch := range []*Arch{X86, ARM64} {
		for i := range arch.CPUs {
			spec := &arch.CPUs[i]
			closed := EnableDepends(spec.Features, arch.Deps)
			if closed != spec.Features {
				t.Errorf("%s/%s: default features not closed: %v vs %v",
					arch.Name, spec.Name, spec.Features, closed)
			}
		}
	}
}

func TestCPUFallbacksExist(t *testing.T) {
	for _, arch := range []*Arch{X86, ARM64} {
		for i := range arch.CPUs {
			spec := &arch.CPUs[i]
			if arch.FindCPUByID(spec.Fallback) == nil {
				t.Errorf("%s/%s: fallback CPU %d not in table",
					arch.Name, spec.Name, spec.Fallback)
			}
		}
	}
}
