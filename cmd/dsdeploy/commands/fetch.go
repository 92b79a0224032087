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
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd(opts *RootOpts) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "fetch [code|pattern...]",
		Short: "Fetch dataset payloads from the source into the staging directory",
		Long: `Fetch downloads each selected dataset's payload from the source
environment and stages it locally for inspection and hand-editing. With no
arguments every pulled code is fetched. In migration mode the body and
bodyMeta fields are decoded on the way in so the staged files are readable
JSON. Codes that already have a staged copy are skipped; pass --force to
replace them with a fresh fetch.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := selectCodes(opts, args, true)
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			if len(codes) == 0 {
				opts.Reporter.Warn("No dataset codes available. Run pull first.")
				return nil
			}

			res, err := opts.Session.Fetch(cmd.Context(), codes, force)
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			opts.Reporter.Summary("Fetch", res)
			return batchErr("fetch", res)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "re-fetch even if a staged copy exists")
	return cmd
}

// selectCodes resolves patterns against the pulled codes list. allowAll
// controls what an empty argument list means: everything pulled (reads)
// or nothing (writes, which require explicit selection).
func selectCodes(opts *RootOpts, args []string, allowAll bool) ([]string, error) {
	if len(args) == 0 {
		if !allowAll {
			return nil, nil
		}
		return opts.Session.SelectAll()
	}
	return opts.Session.Select(args)
}
