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

// Package util groups helpers shared by the ptrcheck commands.
package util

import (
	"fmt"
	"io"
	"os"

	"github.com/cucumber95/Smart-pointers/pkg/log"
)

// ErrorLogger is where error messages should be written to. These messages
// are consumed by the user, so they are kept free of log prefixes.
var ErrorLogger io.Writer = os.Stderr

// Fatalf logs the same message to the debug log and to ErrorLogger, and then
// exits with status 128.
func Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Warningf("FATAL ERROR: %s", msg)
	fmt.Fprintf(ErrorLogger, "ptrcheck: %s\n", msg)
	os.Exit(128)
}
