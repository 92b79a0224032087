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

package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewDeployCmd creates the deploy command.
func NewDeployCmd(opts *RootOpts) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "deploy [code|pattern...]",
		Short: "Upsert staged datasets onto the destination environment",
		Long: `Deploy upserts each selected staged dataset onto the destination.
Selection is explicit: name codes or patterns, or pass --all to deploy
everything pulled. In migration mode the configured replacements run over
each record and the body fields are re-encoded immediately before upsert.
A code with no staged copy is reported as a failure, not fetched on your
behalf.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !all {
				return errors.Errorf("deploy requires explicit dataset codes, patterns, or --all")
			}
			codes, err := selectCodes(opts, args, all)
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			if len(codes) == 0 {
				opts.Reporter.Warn("Nothing selected to deploy.")
				return nil
			}

			res, err := opts.Session.Deploy(cmd.Context(), codes)
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			opts.Reporter.Summary("Upsert", res)
			return batchErr("deploy", res)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "deploy every pulled dataset code")
	return cmd
}
