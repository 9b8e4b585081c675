// Copyright 2026 The gVisor Authors.
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

package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/cucumber95/Smart-pointers/pkg/log"
	"github.com/cucumber95/Smart-pointers/pkg/refs"
	"github.com/cucumber95/Smart-pointers/ptrcheck/cmd/util"
	"github.com/cucumber95/Smart-pointers/ptrcheck/scenario"
)

// cycleScenario leaks two control blocks that own each other.
const cycleScenario = "strong-cycle"

// LeakCheck implements subcommands.Command for the "leakcheck" command.
type LeakCheck struct {
	injectCycle bool

	// out is where leaks are reported. Defaults to stdout.
	out io.Writer
}

// Name implements subcommands.Command.Name.
func (*LeakCheck) Name() string {
	return "leakcheck"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*LeakCheck) Synopsis() string {
	return "run scenarios under the leak checker and fail if any object outlives them"
}

// Usage implements subcommands.Command.Usage.
func (*LeakCheck) Usage() string {
	return `leakcheck [flags] [scenario...] - checks every scenario that does not leak if none is named.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (l *LeakCheck) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&l.injectCycle, "inject-cycle", false, "also run a scenario that leaks a reference cycle, to show how leaks are reported.")
}

// Execute implements subcommands.Command.Execute.
func (l *LeakCheck) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	ss, err := selectScenarios(f.Args())
	if err != nil {
		util.Fatalf("%v", err)
	}
	if l.injectCycle {
		s, ok := scenario.Lookup(cycleScenario)
		if !ok {
			util.Fatalf("scenario %q is not registered", cycleScenario)
		}
		ss = append(ss, s)
	}
	out := l.out
	if out == nil {
		out = os.Stdout
	}

	if !refs.LeakCheckEnabled() {
		log.Infof("Leak checking is disabled, enabling it in %v mode", refs.LeaksLogWarning)
		refs.SetLeakMode(refs.LeaksLogWarning)
	}
	mark := refs.Mark()

	_, failed := execute(ss)

	leaks := refs.LeaksSince(mark)
	for _, msg := range leaks {
		fmt.Fprintf(out, "LEAK %s\n", msg)
	}
	fmt.Fprintf(out, "%d scenarios, %d failed, %d leaked objects\n", len(ss), failed, len(leaks))

	if len(leaks) > 0 && refs.GetLeakMode() == refs.LeaksPanic {
		refs.DoRepeatedLeakCheck()
	}
	if failed > 0 || len(leaks) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
