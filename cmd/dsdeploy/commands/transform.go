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

// NewTransformCmd creates the transform command.
func NewTransformCmd(opts *RootOpts) *cobra.Command {
	var decode, encode bool

	cmd := &cobra.Command{
		Use:   "transform [code|pattern...]",
		Short: "Apply the configured replacements to staged datasets",
		Long: `Transform runs the find/replace rules over each selected staged
record and writes the result back to the staging directory. This is the
standard-mode path where transforms only run when invoked; migration mode
runs them automatically during deploy. --decode moves body fields to their
readable form first, --encode moves them back to the transport encoding
after.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			codes := args
			if len(codes) == 0 {
				staged, err := opts.Session.Store().List()
				if err != nil {
					opts.Reporter.Failure(err)
					return err
				}
				codes = staged
			} else {
				selected, err := opts.Session.Select(args)
				if err != nil {
					opts.Reporter.Failure(err)
					return err
				}
				codes = selected
			}
			if len(codes) == 0 {
				opts.Reporter.Warn("No staged datasets to transform.")
				return nil
			}

			res := opts.Session.Transform(cmd.Context(), codes, decode, encode)
			opts.Reporter.Summary("Transform", res)
			return batchErr("transform", res)
		},
	}

	cmd.Flags().BoolVar(&decode, "decode", false, "decode body fields before substituting")
	cmd.Flags().BoolVar(&encode, "encode", false, "re-encode body fields after substituting")
	return cmd
}
