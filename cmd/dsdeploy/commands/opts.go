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

// Package commands holds the dsdeploy subcommands. Each constructor takes
// the shared RootOpts assembled by the root command.
package commands

import (
	"github.com/muzammilkader/deployment-app/pkg/config"
	"github.com/muzammilkader/deployment-app/pkg/pipeline"
	"github.com/muzammilkader/deployment-app/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// RootOpts carries the dependencies shared by every subcommand.
type RootOpts struct {
	Config   *config.Config
	Session  *pipeline.Session
	Reporter *status.Reporter
}

// batchErr turns a finished batch into the command's error: a batch where
// at least one item succeeded exits cleanly (the failures were already
// reported), a batch where everything failed does not.
func batchErr(operation string, res *pipeline.BatchResult) error {
	if len(res.Failures) > 0 && len(res.Succeeded) == 0 {
		return errors.Errorf("%s failed for all %d datasets", operation, len(res.Failures))
	}
	return nil
}
