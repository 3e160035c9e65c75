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

import "io"

// DumpCPUSpec writes a human-readable description of a CPU and its enabled
// features: the CPU name (or "generic") and the enabled feature names in
// sorted order. It may run on fault/debug paths, so it takes no locks,
// performs a single Write, and keeps its scratch space on the stack for
// any realistically sized feature table.
func DumpCPUSpec(w io.Writer, arch *Arch, cpu CPUID, features FeatureList) error {
	var scratch [MaxFeatureBits]int
	var buf [1024]byte

	// Insertion sort of the enabled table indices by feature name.
	n := 0
	for i := range arch.Features {
		if n == len(scratch) {
			break
		}
		if !features.Test(arch.Features[i].Bit) {
			continue
		}
		j := n
		for j > 0 && arch.Features[scratch[j-1]].Name > arch.Features[i].Name {
			scratch[j] = scratch[j-1]
			j--
		}
		scratch[j] = i
		n++
	}

	out := buf[:0]
	out = append(out, "CPU: "...)
	out = append(out, arch.CPUName(cpu)...)
	out = append(out, "\nFeatures:"...)
	for i := 0; i < n; i++ {
		if i == 0 {
			out = append(out, ' ')
		} else {
			out = append(out, ", "...)
		}
		out = append(out, arch.Features[scratch[i]].Name...)
	}
	out = append(out, '\n')
	_, err := w.Write(out)
	return err
}
