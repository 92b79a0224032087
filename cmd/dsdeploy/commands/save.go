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
	"os"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// NewSaveCmd creates the save command.
func NewSaveCmd(opts *RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save <code> <file>",
		Short: "Validate a hand-edited payload and stage it under a dataset code",
		Long: `Save checks that the edited file is well-formed JSON and stages it
under the given code, fully replacing the previous staged copy. Malformed
JSON is rejected and the previous copy is left untouched. Staged files can
also be edited in place; save exists for edits prepared elsewhere.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, path := args[0], args[1]

			data, err := os.ReadFile(path)
			if err != nil {
				err = errors.Errorf("reading edited payload: %w", err)
				opts.Reporter.Failure(err)
				return err
			}

			if err := opts.Session.Store().SaveRaw(code, data); err != nil {
				opts.Reporter.Failure(err)
				return err
			}
			opts.Reporter.Success("Staged edited payload for %s.", code)
			return nil
		},
	}
	return cmd
}
