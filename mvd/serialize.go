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
	"encoding/binary"
	"fmt"
)

// The embedded target blob is an unpadded byte sequence in the host's
// native byte order: it is written into a compiled image and read back by
// the same toolchain/architecture pairing, never shipped across platforms.
//
//	blob   := [ntargets:u32] target*
//	target := [en.flags:u32] [dis.flags:u32] [base:u32] record
//	record := [nwords:u32] [enabled: nwords x u32] [disabled: nwords x u32]
//	          [namelen:u32] [name] [extlen:u32] [ext]
//
// nwords must equal FeatureWords on the reading side; a mismatch means the
// image was produced by an incompatible build and is fatal.

var hostOrder = binary.NativeEndian

// AppendTargetData appends one serialized target record to dst and returns
// the extended slice. The enabled and disabled slices must be the same
// length; that length is written as the record's feature word count. This
// is the low-level writer shared by SerializeTargets and by build tooling
// that assembles blobs with externally supplied word counts.
func AppendTargetData(dst []byte, name string, enabled, disabled []uint32, extFeatures string) []byte {
	dst = hostOrder.AppendUint32(dst, uint32(len(enabled)))
	for _, w := range enabled {
		dst = hostOrder.AppendUint32(dst, w)
	}
	for _, w := range disabled {
		dst = hostOrder.AppendUint32(dst, w)
	}
	dst = hostOrder.AppendUint32(dst, uint32(len(name)))
	dst = append(dst, name...)
	dst = hostOrder.AppendUint32(dst, uint32(len(extFeatures)))
	dst = append(dst, extFeatures...)
	return dst
}

// SerializeTargets encodes a target list into the embedded blob format.
// The encoding is lossless: DeserializeTargets returns a structurally
// equal list.
func SerializeTargets(targets []TargetData) []byte {
	blob := hostOrder.AppendUint32(nil, uint32(len(targets)))
	for i := range targets {
		t := &targets[i]
		blob = hostOrder.AppendUint32(blob, t.En.Flags)
		blob = hostOrder.AppendUint32(blob, t.Dis.Flags)
		blob = hostOrder.AppendUint32(blob, uint32(t.Base))
		blob = AppendTargetData(blob, t.Name, t.En.Features[:], t.Dis.Features[:], t.ExtFeatures)
	}
	return blob
}

type blobReader struct {
	data []byte
	off  int
}

func (r *blobReader) u32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, fmt.Errorf("truncated target blob at offset %d", r.off)
	}
	v := hostOrder.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *blobReader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	if r.off+int(n) > len(r.data) {
		return "", fmt.Errorf("truncated target blob at offset %d", r.off)
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// DeserializeTargets decodes an embedded target blob back into a target
// list. A feature word count differing from FeatureWords, or a blob too
// short for its own headers, indicates a build/load toolchain mismatch;
// the returned error is fatal and callers must not continue with a
// partially decoded list.
func DeserializeTargets(blob []byte) ([]TargetData, error) {
	r := &blobReader{data: blob}
	ntargets, err := r.u32()
	if err != nil {
		return nil, err
	}
	res := make([]TargetData, 0, ntargets)
	for i := uint32(0); i < ntargets; i++ {
		var t TargetData
		if t.En.Flags, err = r.u32(); err != nil {
			return nil, err
		}
		if t.Dis.Flags, err = r.u32(); err != nil {
			return nil, err
		}
		base, err := r.u32()
		if err != nil {
			return nil, err
		}
		t.Base = int(base)
		nwords, err := r.u32()
		if err != nil {
			return nil, err
		}
		if nwords != FeatureWords {
			return nil, fmt.Errorf("target blob feature count %d does not match this build (%d): incompatible image",
				nwords, FeatureWords)
		}
		for j := range t.En.Features {
			if t.En.Features[j], err = r.u32(); err != nil {
				return nil, err
			}
		}
		for j := range t.Dis.Features {
			if t.Dis.Features[j], err = r.u32(); err != nil {
				return nil, err
			}
		}
		if t.Name, err = r.str(); err != nil {
			return nil, err
		}
		if t.ExtFeatures, err = r.str(); err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}
