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
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd(opts *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the staging workspace: pulled codes and staged copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.Session.Store()

			abs, err := filepath.Abs(store.Dir())
			if err != nil {
				abs = store.Dir()
			}
			opts.Reporter.Info("Staging directory: %s", abs)
			opts.Reporter.Info("Mode: %s", opts.Session.Mode())

			pulled, err := store.LoadCodes()
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			staged, err := store.List()
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}

			if pulled == nil {
				opts.Reporter.Warn("No dataset list pulled yet.")
			} else {
				opts.Reporter.Info("Pulled codes: %d", len(pulled))
			}
			if len(staged) == 0 {
				opts.Reporter.Warn("No datasets staged yet.")
				return nil
			}
			opts.Reporter.Info("Staged copies: %d", len(staged))
			opts.Reporter.Codes(staged)
			return nil
		},
	}
	return cmd
}
