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

import "fmt"

// MatchOptions tunes target matching.
type MatchOptions struct {
	// NameLookup, when non-nil, is consulted before the static CPU table
	// when deciding whether a target's CPU name is recognized. It lets an
	// embedded toolchain accept names it knows that the static table does
	// not carry yet.
	NameLookup func(name string) bool
}

// TargetFeatures returns the full required feature set of a target: the
// default features of its named CPU (empty for generic or unknown names),
// adjusted by the explicit enable/disable sets and closed under the
// architecture's dependency list.
func TargetFeatures(arch *Arch, t *TargetData) FeatureList {
	var features FeatureList
	if spec := arch.FindCPUByName(t.Name); spec != nil {
		features = spec.Features
	}
	features = features.Or(t.En.Features).AndNot(t.Dis.Features)
	return EnableDepends(features, arch.Deps)
}

// MatchTargets selects the best target for the current execution context.
// max is the largest feature set permitted (host capabilities intersected
// with any user or toolchain ceiling).
//
// Selection proceeds in fixed stages: targets whose required features are
// not a subset of max are excluded outright (never downgraded); if any
// remaining target has a recognized CPU name, unnamed candidates are
// dropped; survivors are ranked by vector register-width class, then by
// enabled feature count, and a remaining tie goes to the largest list
// index, making list order a deliberate priority signal.
//
// The baseline target at index 0 is the most conservative by construction
// and must always be feasible; an empty candidate set therefore indicates
// corrupted or mismatched target metadata and yields an error of the fatal
// internal-consistency class.
func MatchTargets(arch *Arch, max FeatureList, targets []TargetData, opts MatchOptions) (int, error) {
	if len(targets) == 0 {
		return 0, fmt.Errorf("internal consistency violated: empty target list")
	}

	type candidate struct {
		idx      int
		features FeatureList
		named    bool
	}
	cands := make([]candidate, 0, len(targets))
	haveNamed := false
	for i := range targets {
		t := &targets[i]
		features := TargetFeatures(arch, t)
		if !features.LE(max) {
			continue
		}
		named := false
		if t.Name != GenericCPUName {
			if opts.NameLookup != nil && opts.NameLookup(t.Name) {
				named = true
			} else if arch.FindCPUByName(t.Name) != nil {
				named = true
			}
		}
		haveNamed = haveNamed || named
		cands = append(cands, candidate{idx: i, features: features, named: named})
	}
	if len(cands) == 0 {
		return 0, fmt.Errorf("internal consistency violated: no feasible target (baseline target must always be feasible)")
	}

	best := -1
	bestClass := -1
	bestBits := -1
	for _, c := range cands {
		if haveNamed && !c.named {
			continue
		}
		class := arch.VectorClassRank(c.features)
		if class < bestClass {
			continue
		}
		bits := c.features.NBits()
		if class == bestClass && bits < bestBits {
			continue
		}
		// Equal class and count also land here: the latest list
		// position wins.
		best = c.idx
		bestClass = class
		bestBits = bits
	}
	return best, nil
}
