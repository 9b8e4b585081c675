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
	"text/tabwriter"

	"github.com/google/subcommands"

	"github.com/cucumber95/Smart-pointers/ptrcheck/cmd/util"
	"github.com/cucumber95/Smart-pointers/ptrcheck/scenario"
)

// List implements subcommands.Command for the "list" command.
type List struct {
	quiet bool

	// out is where the list is printed. Defaults to stdout.
	out io.Writer
}

// Name implements subcommands.Command.Name.
func (*List) Name() string {
	return "list"
}

// Synopsis implements subcommands.Command.Synopsis.
func (*List) Synopsis() string {
	return "list the available scenarios"
}

// Usage implements subcommands.Command.Usage.
func (*List) Usage() string {
	return `list [flags]` + "\n"
}

// SetFlags implements subcommands.Command.SetFlags.
func (l *List) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&l.quiet, "quiet", false, "only list scenario names")
}

// Execute implements subcommands.Command.Execute.
func (l *List) Execute(_ context.Context, f *flag.FlagSet, args ...any) subcommands.ExitStatus {
	if f.NArg() != 0 {
		f.Usage()
		return subcommands.ExitUsageError
	}
	out := l.out
	if out == nil {
		out = os.Stdout
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if !l.quiet {
		fmt.Fprint(w, "NAME\tLEAKS\tSYNOPSIS\n")
	}
	for _, s := range scenario.All(true /* withLeaks */) {
		if l.quiet {
			fmt.Fprintln(w, s.Name)
			continue
		}
		fmt.Fprintf(w, "%s\t%t\t%s\n", s.Name, s.Leaks, s.Synopsis)
	}
	if err := w.Flush(); err != nil {
		util.Fatalf("printing scenarios: %v", err)
	}
	return subcommands.ExitSuccess
}
