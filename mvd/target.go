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
	"fmt"
	"strings"
	"sync"
)

// Target flags carried alongside the explicit enable/disable feature sets.
const (
	// TargetCloneAll forces every multiversioned function to be cloned
	// for this target. In the disable set it records an explicit
	// -clone_all, overriding any default-on full clone.
	TargetCloneAll uint32 = 1 << 0
)

// FeatureFlags pairs an explicit feature set with its flag word.
type FeatureFlags struct {
	Features FeatureList
	Flags    uint32
}

// TargetData is one build/runtime target: a CPU (or generic) name, the
// explicitly enabled and disabled feature sets, feature tokens not in the
// static name table (forwarded verbatim to the code generator), and the
// index of the base target whose clones cover functions this target does
// not clone itself. List position is significant: it is a tie-break
// priority and the namespace for base back-references.
type TargetData struct {
	Name        string
	ExtFeatures string
	En, Dis     FeatureFlags
	Base        int
}

// CloneAll reports whether every function is cloned for this target, given
// the default for its CPU. An explicit clone_all or -clone_all in the spec
// string always wins over the default.
func (t *TargetData) CloneAll(def bool) bool {
	if t.En.Flags&TargetCloneAll != 0 {
		return true
	}
	if t.Dis.Flags&TargetCloneAll != 0 {
		return false
	}
	return def
}

// cloneBaseIndex recognizes the reserved token `base(K)` with K a
// non-negative decimal index. Returns K+1, or 0 if the token does not
// match exactly.
func cloneBaseIndex(tok string) int {
	const prefix = "base("
	if len(tok) <= len(prefix) || !strings.HasPrefix(tok, prefix) {
		return 0
	}
	body := tok[len(prefix) : len(tok)-1]
	if tok[len(tok)-1] != ')' || body == "" || len(body) > 9 {
		return 0
	}
	idx := 0
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c < '0' || c > '9' {
			return 0
		}
		idx = idx*10 + int(c-'0')
	}
	return idx + 1
}

// ParseTargets converts a target specification string into an ordered list
// of target records. The grammar is a semicolon-separated list of targets,
// each a CPU-or-generic name followed by comma-separated feature tokens
// with an optional `+` or `-` sign. Two tokens are reserved: `clone_all`
// and `base(K)`. Tokens not found in the arch's feature name table are not
// errors; they accumulate signed into ExtFeatures for the code generator.
//
// Hard parse errors: an empty CPU name, a signed `-base(K)`, a base index
// not strictly below the current target, and a base target carrying an
// explicit -clone_all. A referenced base target is promoted to full clone.
//
// An empty specification yields an empty list.
func ParseTargets(arch *Arch, spec string) ([]TargetData, error) {
	if spec == "" {
		return nil, nil
	}
	var res []TargetData
	for _, targetSpec := range strings.Split(spec, ";") {
		toks := strings.Split(targetSpec, ",")
		if toks[0] == "" {
			return nil, fmt.Errorf("invalid target option: empty CPU name")
		}
		t := TargetData{Name: toks[0]}
		for _, full := range toks[1:] {
			disable := false
			name := full
			if strings.HasPrefix(full, "-") {
				disable = true
				name = full[1:]
			} else if strings.HasPrefix(full, "+") {
				name = full[1:]
			}
			switch {
			case name == "clone_all":
				if disable {
					t.Dis.Flags |= TargetCloneAll
					t.En.Flags &^= TargetCloneAll
				} else {
					t.En.Flags |= TargetCloneAll
					t.Dis.Flags &^= TargetCloneAll
				}
			case cloneBaseIndex(name) != 0:
				if disable {
					return nil, fmt.Errorf("invalid target option: disabled base index")
				}
				base := cloneBaseIndex(name) - 1
				if base >= len(res) {
					return nil, fmt.Errorf("invalid target option: base index must refer to a previous target")
				}
				if res[base].Dis.Flags&TargetCloneAll != 0 {
					return nil, fmt.Errorf("invalid target option: base target must be clone_all")
				}
				res[base].En.Flags |= TargetCloneAll
				t.Base = base
			default:
				if bit, ok := arch.FindFeatureBit(name); ok {
					if disable {
						t.Dis.Features.SetBit(bit, true)
					} else {
						t.En.Features.SetBit(bit, true)
					}
				} else {
					if t.ExtFeatures != "" {
						t.ExtFeatures += ","
					}
					if disable {
						t.ExtFeatures += "-" + name
					} else {
						t.ExtFeatures += "+" + name
					}
				}
			}
		}
		res = append(res, t)
	}
	return res, nil
}

// Process-wide cached target list. The first InitCmdlineTargets call
// parses and memoizes; every later observer sees the same immutable
// result. Initialization happens once during startup before dispatch, so a
// Once is all the synchronization this needs.
var (
	cmdlineOnce    sync.Once
	cmdlineDone    bool
	cmdlineTargets []TargetData
	cmdlineErr     error
)

// InitCmdlineTargets parses the process's target specification exactly
// once and caches the result. Subsequent calls return the cached list
// regardless of their arguments.
func InitCmdlineTargets(arch *Arch, spec string) ([]TargetData, error) {
	cmdlineOnce.Do(func() {
		cmdlineTargets, cmdlineErr = ParseTargets(arch, spec)
		cmdlineDone = true
	})
	return cmdlineTargets, cmdlineErr
}

// CmdlineTargets returns the cached target list. The second return is
// false if InitCmdlineTargets has not run yet.
func CmdlineTargets() ([]TargetData, bool) {
	return cmdlineTargets, cmdlineDone
}
