/*
Copyright 2025 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package options

import (
	"context"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/kubeflow/emr-serverless-sql/internal/emrserverless"
	"github.com/kubeflow/emr-serverless-sql/internal/logging"
	"github.com/kubeflow/emr-serverless-sql/pkg/config"
	"github.com/kubeflow/emr-serverless-sql/pkg/util"
)

// SessionFactory creates the session a command talks to. Tests replace it with one backed by fakes.
var SessionFactory = func(ctx context.Context, cfg *config.Config, opts ...emrserverless.SessionOption) (*emrserverless.Session, error) {
	clients, err := emrserverless.NewClients(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return emrserverless.NewSession(emrserverless.NewOptions(cfg), clients, opts...), nil
}

// LoadConfig reads the configuration of cmd from its flags, EMRSS_* environment variables
// and the config file, and checks that the given keys are set.
func LoadConfig(cmd *cobra.Command, required ...string) (*config.Config, error) {
	configFile, err := cmd.Flags().GetString(config.KeyConfig)
	if err != nil {
		return nil, err
	}
	v, err := config.NewViper(configFile)
	if err != nil {
		return nil, err
	}
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, util.NewUsageError("%v", err)
	}
	if err := cfg.Validate(required...); err != nil {
		return nil, util.NewUsageError("%v", err)
	}
	return cfg, nil
}

// NewLogger returns the stderr logger of a command.
func NewLogger(cfg *config.Config) logr.Logger {
	return logging.New(os.Stderr, cfg.Development)
}

// ExactArgs is cobra.ExactArgs reporting a usage error.
func ExactArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.ExactArgs(n))
}

// MaximumNArgs is cobra.MaximumNArgs reporting a usage error.
func MaximumNArgs(n int) cobra.PositionalArgs {
	return usageArgs(cobra.MaximumNArgs(n))
}

func usageArgs(args cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, a []string) error {
		if err := args(cmd, a); err != nil {
			return util.NewUsageError("%v", err)
		}
		return nil
	}
}

// FlagErrorFunc turns flag parsing errors into usage errors.
func FlagErrorFunc(_ *cobra.Command, err error) error {
	return util.NewUsageError("%v", err)
}
