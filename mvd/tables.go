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

// GenericCPUName is the reserved CPU name for the baseline target: the
// minimum required feature set of the architecture the runtime itself was
// compiled for.
const GenericCPUName = "generic"

// CPUID is an opaque architecture-specific CPU identifier. The zero value
// is the generic/unknown CPU on every architecture.
type CPUID uint32

// GenericCPU is the CPUID of the baseline CPU.
const GenericCPU CPUID = 0

// FeatureName maps a human-readable feature name to its bit index and the
// minimum toolchain version that recognizes it (0 = always recognized).
type FeatureName struct {
	Name         string
	Bit          uint32
	ToolchainVer uint32
}

// CPUSpec describes one named CPU: its identifier, the CPU to fall back to
// when the toolchain is too old to recognize it, the minimum toolchain
// version, and its default feature set. CPU tables are static per-arch
// data; their order is an iteration order only, not a precedence.
type CPUSpec struct {
	Name         string
	ID           CPUID
	Fallback     CPUID
	ToolchainVer uint32
	Features     FeatureList
}

// Arch bundles the static tables of one architecture. All engine functions
// take an *Arch as read-only data; nothing here is mutated after package
// initialization.
type Arch struct {
	Name string

	CPUs     []CPUSpec
	Features []FeatureName
	Deps     []FeatureDep

	// VectorClasses holds the feature bit identifying each SIMD
	// register-width class, widest first (e.g. AVX-512 before AVX). A
	// feature set's class rank is the position of the first class bit it
	// contains; sets matching none rank below all classes.
	VectorClasses []uint32
}

// FindCPUByID returns the CPU table entry with the given identifier, or nil.
func (a *Arch) FindCPUByID(cpu CPUID) *CPUSpec {
	for i := range a.CPUs {
		if a.CPUs[i].ID == cpu {
			return &a.CPUs[i]
		}
	}
	return nil
}

// FindCPUByName returns the CPU table entry with the given name, or nil.
func (a *Arch) FindCPUByName(name string) *CPUSpec {
	for i := range a.CPUs {
		if a.CPUs[i].Name == name {
			return &a.CPUs[i]
		}
	}
	return nil
}

// CPUName returns the name of the given CPU, or "generic" if it is not in
// the table.
func (a *Arch) CPUName(cpu CPUID) string {
	if spec := a.FindCPUByID(cpu); spec != nil {
		return spec.Name
	}
	return GenericCPUName
}

// CPUIDForName returns the identifier of the named CPU, or GenericCPU if
// the name is not in the table.
func (a *Arch) CPUIDForName(name string) CPUID {
	if spec := a.FindCPUByName(name); spec != nil {
		return spec.ID
	}
	return GenericCPU
}

// FindFeatureBit returns the bit index of the named feature, or false if
// the name is not in the table.
func (a *Arch) FindFeatureBit(name string) (uint32, bool) {
	for i := range a.Features {
		if a.Features[i].Name == name {
			return a.Features[i].Bit, true
		}
	}
	return 0, false
}

// FeatureNameForBit returns the name of the feature with the given bit
// index, or "" if no table entry claims it.
func (a *Arch) FeatureNameForBit(bit uint32) string {
	for i := range a.Features {
		if a.Features[i].Bit == bit {
			return a.Features[i].Name
		}
	}
	return ""
}

// MaxToolchainFeatures returns the set of all features recognized by the
// given toolchain version. Intersecting with it removes features the
// toolchain cannot compile for.
func (a *Arch) MaxToolchainFeatures(toolchainVer uint32) FeatureList {
	var fl FeatureList
	for i := range a.Features {
		if a.Features[i].ToolchainVer <= toolchainVer {
			fl.SetBit(a.Features[i].Bit, true)
		}
	}
	return fl
}

// VectorClassRank returns the register-width class rank of a feature set:
// len(VectorClasses) for the widest class down to 1 for the narrowest, and
// 0 for a set containing no class feature (scalar baseline).
func (a *Arch) VectorClassRank(features FeatureList) int {
	for i, bit := range a.VectorClasses {
		if features.Test(bit) {
			return len(a.VectorClasses) - i
		}
	}
	return 0
}
