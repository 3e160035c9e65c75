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

// mvdump inspects CPU multiversioning state: host capabilities, target
// specification strings, and target blobs extracted from compiled images.
//
// Usage:
//
//	mvdump host
//	mvdump parse "generic;skylake,clone_all"
//	mvdump pack "generic;skylake,clone_all" -o targets.bin
//	mvdump inspect targets.bin --select
package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ajroetker/go-multiversion/internal/blobfile"
	"github.com/ajroetker/go-multiversion/mvd"
)

func main() {
	root := &cobra.Command{
		Use:   "mvdump",
		Short: "Inspect CPU feature detection and multiversioning dispatch state",
	}

	host := &cobra.Command{
		Use:   "host",
		Short: "Print the detected host CPU and feature set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost()
		},
	}

	var specFlag string
	parse := &cobra.Command{
		Use:   "parse [spec]",
		Short: "Parse a target specification string and print each target",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(specArg(args, specFlag))
		},
	}
	parse.Flags().StringVar(&specFlag, "cpu-target", "", "target specification (overrides MVD_CPU_TARGET)")

	var packOut string
	var packSpec string
	pack := &cobra.Command{
		Use:   "pack [spec]",
		Short: "Serialize a target specification into a blob file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPack(specArg(args, packSpec), packOut)
		},
	}
	pack.Flags().StringVar(&packSpec, "cpu-target", "", "target specification (overrides MVD_CPU_TARGET)")
	pack.Flags().StringVarP(&packOut, "out", "o", "targets.bin", "output blob file")

	var doSelect bool
	inspect := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Decode a target blob file and print its targets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0], doSelect)
		},
	}
	inspect.Flags().BoolVar(&doSelect, "select", false, "run the matcher against host capabilities")

	root.AddCommand(host, parse, pack, inspect)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// specArg resolves the target specification from the positional argument,
// the flag, or the MVD_CPU_TARGET environment variable, in that order.
func specArg(args []string, flag string) string {
	if len(args) > 0 {
		return args[0]
	}
	if flag != "" {
		return flag
	}
	return env.Str("MVD_CPU_TARGET", mvd.GenericCPUName)
}

func runHost() error {
	arch := mvd.HostArch()
	title := cases.Title(language.English).String(arch.Name)
	fmt.Printf("=== %s host (GOOS %s, GOARCH %s) ===\n", title, runtime.GOOS, runtime.GOARCH)
	features := mvd.HostFeatures()
	cpu := closestHostCPU(arch, features)
	return mvd.DumpCPUSpec(os.Stdout, arch, cpu, features)
}

// closestHostCPU picks the table CPU best describing the host: the entry
// with the most default features that are all present on the host.
func closestHostCPU(arch *mvd.Arch, features mvd.FeatureList) mvd.CPUID {
	best := mvd.GenericCPU
	bestBits := -1
	for i := range arch.CPUs {
		spec := &arch.CPUs[i]
		if !spec.Features.LE(features) {
			continue
		}
		if bits := spec.Features.NBits(); bits > bestBits {
			best = spec.ID
			bestBits = bits
		}
	}
	return best
}

func runParse(spec string) error {
	arch := mvd.HostArch()
	targets, err := mvd.InitCmdlineTargets(arch, spec)
	if err != nil {
		return err
	}
	for i := range targets {
		printTarget(arch, i, &targets[i])
	}
	return nil
}

func runPack(spec, out string) error {
	arch := mvd.HostArch()
	targets, err := mvd.InitCmdlineTargets(arch, spec)
	if err != nil {
		return err
	}
	blob := mvd.SerializeTargets(targets)
	if err := os.WriteFile(out, blob, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %d targets (%d bytes) to %s\n", len(targets), len(blob), out)
	return nil
}

func runInspect(path string, doSelect bool) error {
	f, err := blobfile.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	arch := mvd.HostArch()
	targets, err := mvd.DeserializeTargets(f.Bytes())
	if err != nil {
		return err
	}
	for i := range targets {
		printTarget(arch, i, &targets[i])
	}
	if doSelect {
		idx, err := mvd.MatchTargets(arch, mvd.HostFeatures(), targets, mvd.MatchOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("selected target: %d (%s)\n", idx, targets[idx].Name)
	}
	return nil
}

func printTarget(arch *mvd.Arch, idx int, t *mvd.TargetData) {
	fmt.Printf("[%d] %s\n", idx, t.Name)
	if t.En.Flags&mvd.TargetCloneAll != 0 {
		fmt.Println("    clone_all")
	}
	if t.Dis.Flags&mvd.TargetCloneAll != 0 {
		fmt.Println("    -clone_all")
	}
	if t.Base != 0 {
		fmt.Printf("    base: %d\n", t.Base)
	}
	printFeatureSet(arch, "enable", t.En.Features)
	printFeatureSet(arch, "disable", t.Dis.Features)
	if t.ExtFeatures != "" {
		fmt.Printf("    ext: %s\n", t.ExtFeatures)
	}
}

func printFeatureSet(arch *mvd.Arch, label string, fl mvd.FeatureList) {
	if fl.Empty() {
		return
	}
	fmt.Printf("    %s:", label)
	for i := range arch.Features {
		if fl.Test(arch.Features[i].Bit) {
			fmt.Printf(" %s", arch.Features[i].Name)
		}
	}
	fmt.Println()
}
