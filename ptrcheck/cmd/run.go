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
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/cucumber95/Smart-pointers/pkg/log"
	"github.com/cucumber95/Smart-pointers/ptrcheck/cmd/util"
)

// Run implements subcommands.Command for the "run" command.
type Run struct {
	output

	// out is where reports are printed. Defaults to stdout.
	out io.Writer
}

// Name implements subcommands.Command.Name.
func (*Run) Name() string {
	return "run"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*Run) Synopsis() string {
	return "run scenarios and print the reference counts they observe"
}

// Usage implements subcommands.Command.Usage.
func (*Run) Usage() string {
	return `run [flags] [scenario...] - runs every scenario that does not leak if none is named.
`
}

// SetFlags implements subcommands.Command.SetFlags.
func (r *Run) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.format, "format", "text", "output format: text (default) or json.")
}

// Execute implements subcommands.Command.Execute.
func (r *Run) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if err := r.validate(); err != nil {
		util.Fatalf("%v", err)
	}
	ss, err := selectScenarios(f.Args())
	if err != nil {
		util.Fatalf("%v", err)
	}
	out := r.out
	if out == nil {
		out = os.Stdout
	}

	reps, failed := execute(ss)
	if err := r.print(out, reps); err != nil {
		util.Fatalf("printing reports: %v", err)
	}
	if failed > 0 {
		log.Warningf("%d of %d scenarios failed", failed, len(reps))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
