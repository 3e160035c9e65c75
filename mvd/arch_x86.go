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

// x86-64 feature bit indices. SSE2 is the architecture baseline and has no
// bit; everything below is relative to that baseline.
const (
	X86SSE3 uint32 = iota
	X86PCLMUL
	X86SSSE3
	X86FMA
	X86CX16
	X86SSE41
	X86SSE42
	X86MOVBE
	X86POPCNT
	X86AES
	X86XSAVE
	X86AVX
	X86F16C
	X86RDRND
	X86FSGSBASE
	X86BMI
	X86AVX2
	X86BMI2
	X86RTM
	X86AVX512F
	X86AVX512DQ
	X86AVX512IFMA
	X86AVX512CD
	X86AVX512BW
	X86AVX512VL
	X86AVX512VBMI
	X86SHA
	X86RDSEED
	X86ADX
	X86CLFLUSHOPT
	X86CLWB
	X86PRFCHW
	X86AVX512VBMI2
	X86AVX512VNNI
	X86AVX512BITALG
	X86AVX512VPOPCNTDQ
	X86AVX512BF16
	X86AVX512FP16
	X86VAES
	X86VPCLMULQDQ
	X86GFNI
)

// x86-64 CPU identifiers.
const (
	X86CPUGeneric CPUID = iota
	X86CPUNehalem
	X86CPUWestmere
	X86CPUSandyBridge
	X86CPUIvyBridge
	X86CPUHaswell
	X86CPUBroadwell
	X86CPUSkylake
	X86CPUSkylakeAVX512
	X86CPUCascadeLake
	X86CPUIceLakeClient
	X86CPUSapphireRapids
	X86CPUZnver1
	X86CPUZnver2
	X86CPUZnver3
)

var x86FeatureNames = []FeatureName{
	{"sse3", X86SSE3, 0},
	{"pclmul", X86PCLMUL, 0},
	{"ssse3", X86SSSE3, 0},
	{"fma", X86FMA, 0},
	{"cx16", X86CX16, 0},
	{"sse4.1", X86SSE41, 0},
	{"sse4.2", X86SSE42, 0},
	{"movbe", X86MOVBE, 0},
	{"popcnt", X86POPCNT, 0},
	{"aes", X86AES, 0},
	{"xsave", X86XSAVE, 0},
	{"avx", X86AVX, 0},
	{"f16c", X86F16C, 0},
	{"rdrnd", X86RDRND, 0},
	{"fsgsbase", X86FSGSBASE, 0},
	{"bmi", X86BMI, 0},
	{"avx2", X86AVX2, 0},
	{"bmi2", X86BMI2, 0},
	{"rtm", X86RTM, 0},
	{"avx512f", X86AVX512F, 0},
	{"avx512dq", X86AVX512DQ, 0},
	{"avx512ifma", X86AVX512IFMA, 0},
	{"avx512cd", X86AVX512CD, 0},
	{"avx512bw", X86AVX512BW, 0},
	{"avx512vl", X86AVX512VL, 0},
	{"avx512vbmi", X86AVX512VBMI, 0},
	{"sha", X86SHA, 0},
	{"rdseed", X86RDSEED, 0},
	{"adx", X86ADX, 0},
	{"clflushopt", X86CLFLUSHOPT, 0},
	{"clwb", X86CLWB, 0},
	{"prfchw", X86PRFCHW, 0},
	{"avx512vbmi2", X86AVX512VBMI2, 60000},
	{"avx512vnni", X86AVX512VNNI, 60000},
	{"avx512bitalg", X86AVX512BITALG, 60000},
	{"avx512vpopcntdq", X86AVX512VPOPCNTDQ, 60000},
	{"avx512bf16", X86AVX512BF16, 90000},
	{"avx512fp16", X86AVX512FP16, 140000},
	{"vaes", X86VAES, 60000},
	{"vpclmulqdq", X86VPCLMULQDQ, 60000},
	{"gfni", X86GFNI, 60000},
}

var x86FeatureDeps = []FeatureDep{
	{X86SSSE3, X86SSE3},
	{X86FMA, X86AVX},
	{X86SSE41, X86SSSE3},
	{X86SSE42, X86SSE41},
	{X86AVX, X86SSE42},
	{X86F16C, X86AVX},
	{X86AVX2, X86AVX},
	{X86AVX512F, X86AVX2},
	{X86AVX512DQ, X86AVX512F},
	{X86AVX512IFMA, X86AVX512F},
	{X86AVX512CD, X86AVX512F},
	{X86AVX512BW, X86AVX512F},
	{X86AVX512VL, X86AVX512F},
	{X86AVX512VBMI, X86AVX512BW},
	{X86AVX512VBMI2, X86AVX512BW},
	{X86AVX512VNNI, X86AVX512F},
	{X86AVX512BITALG, X86AVX512BW},
	{X86AVX512VPOPCNTDQ, X86AVX512F},
	{X86AVX512BF16, X86AVX512BW},
	{X86AVX512FP16, X86AVX512BW},
	{X86AVX512FP16, X86AVX512VL},
	{X86VAES, X86AES},
	{X86VAES, X86AVX},
	{X86VPCLMULQDQ, X86AVX},
	{X86VPCLMULQDQ, X86PCLMUL},
}

// Cumulative default feature sets, one generation building on the last.
var (
	x86FeaturesNehalem = FeatureMask(
		X86SSE3, X86SSSE3, X86SSE41, X86SSE42, X86POPCNT, X86CX16)
	x86FeaturesWestmere = x86FeaturesNehalem.Or(FeatureMask(
		X86AES, X86PCLMUL))
	x86FeaturesSandyBridge = x86FeaturesWestmere.Or(FeatureMask(
		X86AVX, X86XSAVE))
	x86FeaturesIvyBridge = x86FeaturesSandyBridge.Or(FeatureMask(
		X86RDRND, X86F16C, X86FSGSBASE))
	x86FeaturesHaswell = x86FeaturesIvyBridge.Or(FeatureMask(
		X86AVX2, X86BMI, X86BMI2, X86FMA, X86MOVBE))
	x86FeaturesBroadwell = x86FeaturesHaswell.Or(FeatureMask(
		X86ADX, X86RDSEED, X86PRFCHW))
	x86FeaturesSkylake = x86FeaturesBroadwell.Or(FeatureMask(
		X86RTM, X86CLFLUSHOPT, X86XSAVE))
	x86FeaturesSkylakeAVX512 = x86FeaturesSkylake.Or(FeatureMask(
		X86AVX512F, X86AVX512CD, X86AVX512DQ, X86AVX512BW, X86AVX512VL,
		X86CLWB))
	x86FeaturesCascadeLake = x86FeaturesSkylakeAVX512.Or(FeatureMask(
		X86AVX512VNNI))
	x86FeaturesIceLakeClient = x86FeaturesCascadeLake.Or(FeatureMask(
		X86AVX512IFMA, X86AVX512VBMI, X86AVX512VBMI2, X86AVX512BITALG,
		X86AVX512VPOPCNTDQ, X86VAES, X86VPCLMULQDQ, X86GFNI, X86SHA))
	x86FeaturesSapphireRapids = x86FeaturesIceLakeClient.Or(FeatureMask(
		X86AVX512BF16, X86AVX512FP16))
	x86FeaturesZnver1 = x86FeaturesBroadwell.Or(FeatureMask(
		X86SHA, X86CLFLUSHOPT))
	x86FeaturesZnver2 = x86FeaturesZnver1.Or(FeatureMask(
		X86CLWB, X86RDSEED))
	x86FeaturesZnver3 = x86FeaturesZnver2.Or(FeatureMask(
		X86VAES, X86VPCLMULQDQ))
)

var x86CPUs = []CPUSpec{
	{GenericCPUName, X86CPUGeneric, GenericCPU, 0, FeatureList{}},
	{"nehalem", X86CPUNehalem, GenericCPU, 0, x86FeaturesNehalem},
	{"westmere", X86CPUWestmere, GenericCPU, 0, x86FeaturesWestmere},
	{"sandybridge", X86CPUSandyBridge, GenericCPU, 0, x86FeaturesSandyBridge},
	{"ivybridge", X86CPUIvyBridge, X86CPUSandyBridge, 0, x86FeaturesIvyBridge},
	{"haswell", X86CPUHaswell, X86CPUIvyBridge, 0, x86FeaturesHaswell},
	{"broadwell", X86CPUBroadwell, X86CPUHaswell, 0, x86FeaturesBroadwell},
	{"skylake", X86CPUSkylake, X86CPUBroadwell, 0, x86FeaturesSkylake},
	{"skylake-avx512", X86CPUSkylakeAVX512, X86CPUSkylake, 0, x86FeaturesSkylakeAVX512},
	{"cascadelake", X86CPUCascadeLake, X86CPUSkylakeAVX512, 80000, x86FeaturesCascadeLake},
	{"icelake-client", X86CPUIceLakeClient, X86CPUCascadeLake, 80000, x86FeaturesIceLakeClient},
	{"sapphirerapids", X86CPUSapphireRapids, X86CPUIceLakeClient, 120000, x86FeaturesSapphireRapids},
	{"znver1", X86CPUZnver1, X86CPUBroadwell, 0, x86FeaturesZnver1},
	{"znver2", X86CPUZnver2, X86CPUZnver1, 90000, x86FeaturesZnver2},
	{"znver3", X86CPUZnver3, X86CPUZnver2, 120000, x86FeaturesZnver3},
}

// X86 is the x86-64 architecture table. Register-width classes rank
// AVX-512 above AVX above the SSE baseline.
var X86 = &Arch{
	Name:          "x86-64",
	CPUs:          x86CPUs,
	Features:      x86FeatureNames,
	Deps:          x86FeatureDeps,
	VectorClasses: []uint32{X86AVX512F, X86AVX},
}
