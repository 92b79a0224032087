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

// NewDeleteCmd creates the delete command.
func NewDeleteCmd(opts *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <code|pattern>...",
		Short: "Delete datasets on the destination environment",
		Long: `Delete removes each selected dataset from the destination. Selection
is always explicit; there is no --all for deletes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codes, err := opts.Session.Select(args)
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}

			res, err := opts.Session.Delete(cmd.Context(), codes)
			if err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			opts.Reporter.Summary("Delete", res)
			return batchErr("delete", res)
		},
	}
	return cmd
}
