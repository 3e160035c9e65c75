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

// AArch64 feature bit indices. FP and ASIMD (NEON) are the ARMv8 baseline
// and have no bits.
const (
	ARM64CRC uint32 = iota
	ARM64AES
	ARM64SHA2
	ARM64SHA3
	ARM64RDM
	ARM64LSE
	ARM64FullFP16
	ARM64FP16FML
	ARM64DotProd
	ARM64RCPC
	ARM64SVE
	ARM64SVE2
	ARM64I8MM
	ARM64BF16
)

// AArch64 CPU identifiers.
const (
	ARM64CPUGeneric CPUID = iota
	ARM64CPUCortexA57
	ARM64CPUCortexA76
	ARM64CPUNeoverseN1
	ARM64CPUNeoverseV1
	ARM64CPUThunderX2T99
	ARM64CPUAppleM1
	ARM64CPUAppleM2
)

var arm64FeatureNames = []FeatureName{
	{"crc", ARM64CRC, 0},
	{"aes", ARM64AES, 0},
	{"sha2", ARM64SHA2, 0},
	{"sha3", ARM64SHA3, 0},
	{"rdm", ARM64RDM, 0},
	{"lse", ARM64LSE, 0},
	{"fullfp16", ARM64FullFP16, 0},
	{"fp16fml", ARM64FP16FML, 0},
	{"dotprod", ARM64DotProd, 0},
	{"rcpc", ARM64RCPC, 0},
	{"sve", ARM64SVE, 0},
	{"sve2", ARM64SVE2, 90000},
	{"i8mm", ARM64I8MM, 110000},
	{"bf16", ARM64BF16, 110000},
}

var arm64FeatureDeps = []FeatureDep{
	{ARM64FP16FML, ARM64FullFP16},
	{ARM64SVE, ARM64FullFP16},
	{ARM64SVE2, ARM64SVE},
}

var (
	arm64FeaturesA57 = FeatureMask(ARM64CRC, ARM64AES, ARM64SHA2)
	arm64FeaturesA76 = arm64FeaturesA57.Or(FeatureMask(
		ARM64RDM, ARM64LSE, ARM64FullFP16, ARM64DotProd, ARM64RCPC))
	arm64FeaturesNeoverseN1 = arm64FeaturesA76
	arm64FeaturesNeoverseV1 = arm64FeaturesNeoverseN1.Or(FeatureMask(
		ARM64FP16FML, ARM64SVE, ARM64I8MM, ARM64BF16))
	arm64FeaturesThunderX2 = FeatureMask(ARM64CRC, ARM64AES, ARM64SHA2, ARM64RDM, ARM64LSE)
	arm64FeaturesAppleM1   = FeatureMask(
		ARM64CRC, ARM64AES, ARM64SHA2, ARM64SHA3, ARM64RDM, ARM64LSE,
		ARM64FullFP16, ARM64FP16FML, ARM64DotProd, ARM64RCPC)
	arm64FeaturesAppleM2 = arm64FeaturesAppleM1.Or(FeatureMask(
		ARM64I8MM, ARM64BF16))
)

var arm64CPUs = []CPUSpec{
	{GenericCPUName, ARM64CPUGeneric, GenericCPU, 0, FeatureList{}},
	{"cortex-a57", ARM64CPUCortexA57, GenericCPU, 0, arm64FeaturesA57},
	{"cortex-a76", ARM64CPUCortexA76, ARM64CPUCortexA57, 0, arm64FeaturesA76},
	{"neoverse-n1", ARM64CPUNeoverseN1, ARM64CPUCortexA76, 90000, arm64FeaturesNeoverseN1},
	{"neoverse-v1", ARM64CPUNeoverseV1, ARM64CPUNeoverseN1, 110000, arm64FeaturesNeoverseV1},
	{"thunderx2t99", ARM64CPUThunderX2T99, GenericCPU, 0, arm64FeaturesThunderX2},
	{"apple-m1", ARM64CPUAppleM1, ARM64CPUCortexA76, 120000, arm64FeaturesAppleM1},
	{"apple-m2", ARM64CPUAppleM2, ARM64CPUAppleM1, 150000, arm64FeaturesAppleM2},
}

// ARM64 is the AArch64 architecture table. SVE ranks above the ASIMD
// baseline; there is no narrower class bit since ASIMD is unconditional.
var ARM64 = &Arch{
	Name:          "aarch64",
	CPUs:          arm64CPUs,
	Features:      arm64FeatureNames,
	Deps:          arm64FeatureDeps,
	VectorClasses: []uint32{ARM64SVE},
}
