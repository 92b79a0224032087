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

// NewPullCmd creates the pull command.
func NewPullCmd(opts *RootOpts) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "List the dataset codes available on the source environment",
		Long: `Pull authenticates against the source environment, lists the dataset
identifiers it offers and records them in the staging directory. Later
fetch, deploy and delete selections resolve against this list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := opts.Session.PullCodes(cmd.Context())
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			opts.Reporter.Success("Pulled %d dataset codes.", len(codes))
			if !quiet {
				opts.Reporter.Codes(codes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the pulled codes")
	return cmd
}
