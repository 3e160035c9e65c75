//go:build arm64

package mvd

import "golang.org/x/sys/cpu"

// HostArch returns the architecture table for the running host.
func HostArch() *Arch {
	return ARM64
}

// HostFeatures maps the capability flags reported by golang.org/x/sys/cpu
// onto the AArch64 feature bits. On darwin the cpu package leaves several
// hwcap-derived flags unset; dispatch stays conservative there.
func HostFeatures() FeatureList {
	var fl FeatureList
	set := func(bit uint32, on bool) {
		if on {
			fl.SetBit(bit, true)
		}
	}
	set(ARM64CRC, cpu.ARM64.HasCRC32)
	set(ARM64AES, cpu.ARM64.HasAES)
	set(ARM64SHA2, cpu.ARM64.HasSHA2)
	set(ARM64SHA3, cpu.ARM64.HasSHA3)
	set(ARM64RDM, cpu.ARM64.HasASIMDRDM)
	set(ARM64LSE, cpu.ARM64.HasATOMICS)
	set(ARM64FullFP16, cpu.ARM64.HasASIMDHP)
	set(ARM64FP16FML, cpu.ARM64.HasASIMDFHM)
	set(ARM64DotProd, cpu.ARM64.HasASIMDDP)
	set(ARM64RCPC, cpu.ARM64.HasLRCPC)
	set(ARM64SVE, cpu.ARM64.HasSVE)
	set(ARM64SVE2, cpu.ARM64.HasSVE2)
	set(ARM64I8MM, cpu.ARM64.HasI8MM)
	set(ARM64BF16, cpu.ARM64.HasBF16)
	return EnableDepends(fl, ARM64.Deps)
}
