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

// NewCleanCmd creates the clean command.
func NewCleanCmd(opts *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clear the staging workspace",
		Long: `Clean removes the staging directory tree: staged dataset copies and
the pulled codes file. Run it between migration runs so data shaped for a
previous environment pair never leaks into the next one. Safe to run
twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Session.Clear(); err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			opts.Reporter.Success("Staging workspace cleared.")
			return nil
		},
	}
	return cmd
}
