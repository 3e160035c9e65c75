//go:build !amd64 && !arm64

package mvd

// HostArch returns the architecture table for the running host.
// Architectures without a table fall back to the generic baseline.
func HostArch() *Arch {
	return Generic
}

// HostFeatures returns the empty feature set on architectures without a
// feature table.
func HostFeatures() FeatureList {
	return FeatureList{}
}
