//go:build amd64

package mvd

import "golang.org/x/sys/cpu"

// HostArch returns the architecture table for the running host.
func HostArch() *Arch {
	return X86
}

// HostFeatures maps the capability flags reported by golang.org/x/sys/cpu
// onto the x86-64 feature bits. Flags the cpu package does not expose stay
// clear, which only ever under-reports and keeps dispatch conservative.
func HostFeatures() FeatureList {
	var fl FeatureList
	set := func(bit uint32, on bool) {
		if on {
			fl.SetBit(bit, true)
		}
	}
	set(X86SSE3, cpu.X86.HasSSE3)
	set(X86PCLMUL, cpu.X86.HasPCLMULQDQ)
	set(X86SSSE3, cpu.X86.HasSSSE3)
	set(X86FMA, cpu.X86.HasFMA)
	set(X86CX16, cpu.X86.HasCX16)
	set(X86SSE41, cpu.X86.HasSSE41)
	set(X86SSE42, cpu.X86.HasSSE42)
	set(X86POPCNT, cpu.X86.HasPOPCNT)
	set(X86AES, cpu.X86.HasAES)
	set(X86XSAVE, cpu.X86.HasOSXSAVE)
	set(X86AVX, cpu.X86.HasAVX)
	set(X86RDRND, cpu.X86.HasRDRAND)
	set(X86BMI, cpu.X86.HasBMI1)
	set(X86AVX2, cpu.X86.HasAVX2)
	set(X86BMI2, cpu.X86.HasBMI2)
	set(X86AVX512F, cpu.X86.HasAVX512F)
	set(X86AVX512DQ, cpu.X86.HasAVX512DQ)
	set(X86AVX512IFMA, cpu.X86.HasAVX512IFMA)
	set(X86AVX512CD, cpu.X86.HasAVX512CD)
	set(X86AVX512BW, cpu.X86.HasAVX512BW)
	set(X86AVX512VL, cpu.X86.HasAVX512VL)
	set(X86AVX512VBMI, cpu.X86.HasAVX512VBMI)
	set(X86RDSEED, cpu.X86.HasRDSEED)
	set(X86ADX, cpu.X86.HasADX)
	set(X86AVX512VBMI2, cpu.X86.HasAVX512VBMI2)
	set(X86AVX512VNNI, cpu.X86.HasAVX512VNNI)
	set(X86AVX512BITALG, cpu.X86.HasAVX512BITALG)
	set(X86AVX512VPOPCNTDQ, cpu.X86.HasAVX512VPOPCNTDQ)
	set(X86AVX512BF16, cpu.X86.HasAVX512BF16)
	set(X86VAES, cpu.X86.HasAVX512VAES)
	set(X86VPCLMULQDQ, cpu.X86.HasAVX512VPCLMULQDQ)
	set(X86GFNI, cpu.X86.HasAVX512GFNI)
	return EnableDepends(fl, X86.Deps)
}
