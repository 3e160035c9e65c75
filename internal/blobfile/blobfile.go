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

// Package blobfile maps target-blob files extracted from compiled images
// into memory for inspection tooling.
package blobfile

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

// File is a read-only memory-mapped blob file.
type File struct {
	f    *os.File
	data mmap.MMap
}

// Open maps the file at path read-only.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &File{f: f, data: m}, nil
}

// Bytes returns the mapped contents. The slice is valid until Close and
// must not be modified.
func (b *File) Bytes() []byte {
	return b.data
}

// Close unmaps and closes the file.
func (b *File) Close() error {
	if b.data != nil {
		if err := b.data.Unmap(); err != nil {
			return err
		}
		b.data = nil
	}
	if b.f != nil {
		err := b.f.Close()
		b.f = nil
		return err
	}
	return nil
}
