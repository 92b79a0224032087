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

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/muzammilkader/deployment-app/cmd/dsdeploy/commands"
	"github.com/muzammilkader/deployment-app/pkg/config"
	"github.com/muzammilkader/deployment-app/pkg/pipeline"
	"github.com/muzammilkader/deployment-app/pkg/status"
)

var (
	// Flags
	configFile string
	debug      bool
	modeFlag   string
)

func newRootCmd() *cobra.Command {
	opts := &commands.RootOpts{}

	cmd := &cobra.Command{
		Use:   "dsdeploy",
		Short: "Migrate dataset records between environments of the dataset service",
		Long: `dsdeploy moves dataset records from a source environment to a
destination environment: it lists the datasets on the source, fetches their
payloads into a local staging directory for inspection and hand-editing,
optionally rewrites environment-specific identifiers inside them, and
upserts the results onto the destination.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if debug {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				With().Timestamp().Logger().Level(level)
			ctx := logger.WithContext(cmd.Context())
			cmd.SetContext(ctx)

			cfg, err := config.Load(ctx, configFile)
			if err != nil {
				return err
			}
			if modeFlag != "" {
				cfg.Mode = modeFlag
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			opts.Config = cfg
			opts.Session = pipeline.NewSession(cfg)
			opts.Reporter = status.NewReporter(logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "dsdeploy.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "override operating mode (standard|migration)")

	cmd.AddCommand(
		commands.NewPullCmd(opts),
		commands.NewFetchCmd(opts),
		commands.NewTransformCmd(opts),
		commands.NewDeployCmd(opts),
		commands.NewDeleteCmd(opts),
		commands.NewSaveCmd(opts),
		commands.NewStatusCmd(opts),
		commands.NewCleanCmd(opts),
	)
	return cmd
}
