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

package blobfile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenBytesClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.bin")
	want := []byte{0x01, 0x00, 0x00, 0x00, 0xde, 0xad, 0xbe, 0xef}
	if err := os.WriteFile(path, want, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !bytes.Equal(f.Bytes(), want) {
		t.Errorf("Bytes = %x, want %x", f.Bytes(), want)
	}
	if err := f.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	// Close is idempotent.
	if err := f.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.bin")); err == nil {
		t.Fatal("Open of missing file succeeded")
	}
}
