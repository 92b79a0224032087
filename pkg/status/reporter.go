// Copyright 2026 Muzammil Kader
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

// Package status renders per-item outcomes and batch summaries on the
// console. Detail goes to zerolog; the console output is for the human
// driving the migration.
package status

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/muzammilkader/deployment-app/pkg/pipeline"
)

// maxFailureSample bounds how many individual failures a summary prints;
// the full count is always shown.
const maxFailureSample = 5

// 📢 Reporter provides user-friendly feedback about pipeline outcomes
type Reporter struct {
	log zerolog.Logger
}

// 🎯 NewReporter creates a reporter bound to the given logger
func NewReporter(log zerolog.Logger) *Reporter {
	return &Reporter{log: log}
}

// ✅ Success prints a standalone success line
func (r *Reporter) Success(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	pterm.Success.Println(msg)
	r.log.Info().Msg(msg)
}

// ℹ️ Info prints a standalone informational line
func (r *Reporter) Info(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	pterm.Info.Println(msg)
	r.log.Info().Msg(msg)
}

// ⚠️ Warn prints a standalone warning line
func (r *Reporter) Warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	pterm.Warning.Println(msg)
	r.log.Warn().Msg(msg)
}

// ❌ Failure prints a standalone error line
func (r *Reporter) Failure(err error) {
	pterm.Error.Println(err.Error())
	r.log.Error().Err(err).Msg("operation failed")
}

// 📊 Summary prints the aggregate outcome of a batch operation: counts
// plus a bounded sample of individual failures. A batch with failures is
// reported, never hidden, but the process carries on.
func (r *Reporter) Summary(operation string, res *pipeline.BatchResult) {
	succeeded := len(res.Succeeded)
	skipped := len(res.Skipped)
	failed := len(res.Failures)

	line := fmt.Sprintf("%s done. %s, %s.",
		operation,
		color.GreenString("%d succeeded", succeeded),
		color.RedString("%d failed", failed),
	)
	if skipped > 0 {
		line = fmt.Sprintf("%s done. %s, %d skipped, %s.",
			operation,
			color.GreenString("%d succeeded", succeeded),
			skipped,
			color.RedString("%d failed", failed),
		)
	}
	if failed == 0 {
		pterm.Success.Println(line)
	} else {
		pterm.Warning.Println(line)
	}
	r.log.Info().Str("operation", operation).Int("succeeded", succeeded).Int("skipped", skipped).Int("failed", failed).Msg("batch finished")

	for i, f := range res.Failures {
		if i == maxFailureSample {
			pterm.Error.Printfln("... and %d more", failed-maxFailureSample)
			break
		}
		pterm.Error.Printfln("%s (%s): %v", color.New(color.Bold).Sprint(f.Code), f.Stage, f.Err)
		r.log.Error().Str("code", f.Code).Str("stage", f.Stage).Err(f.Err).Msg("item failed")
	}
}

// 📋 Codes prints a pulled identifier list
func (r *Reporter) Codes(codes []string) {
	for _, code := range codes {
		pterm.Println("  " + code)
	}
}
