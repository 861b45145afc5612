/*
 * Copyright (c) 2020 Siemens AG
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Jonas Plum
 */

// Package cmd provides the casestore commandline subcommands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/forensicanalysis/casestore"
	"github.com/forensicanalysis/casestore/config"
	"github.com/forensicanalysis/casestore/dao"
	"github.com/forensicanalysis/casestore/logging"
)

// InitConfig loads .env files and reads CASESTORE_ prefixed environment
// variables, e.g. CASESTORE_LOG_LEVEL=debug.
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("casestore")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Create is the casestore create commandline subcommand
func Create() *cobra.Command {
	return &cobra.Command{
		Use:   "create <casestore>",
		Short: "Create a casestore",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := casestore.New(args[0])
			if err != nil {
				return err
			}
			return store.Close()
		},
	}
}

// DataSources is the casestore sources commandline subcommand
func DataSources() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources <casestore>",
		Short: "List all data sources",
		Args:  requireOneStore,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, args[0])
			if err != nil {
				return err
			}
			defer s.Close()

			sources, err := s.store.DataSources(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sources)
		},
	}
	configFlags(cmd)
	return cmd
}

func requireOneStore(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("requires exactly one store")
	}
	return storeExists(args[0])
}

func storeExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.Wrap(os.ErrNotExist, path)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}

/* ################################
#   Configuration
################################ */

func configFlags(cmd *cobra.Command) {
	cmd.Flags().String("config", "", "YAML configuration file")
	cmd.Flags().String("log-env", "", "logger environment: prod, local, dev or docker")
	cmd.Flags().String("log-level", "", "log level: debug, info, warn or error")
	cmd.Flags().Bool("show-known-files", false, "do not hide files from known hash sets in file views")
	cmd.Flags().Bool("show-slack-files", false, "do not hide slack files in file views")
}

// loadConfig reads the configuration file and applies flag and environment
// overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return config.Config{}, err
	}
	if v := viper.GetString("log-env"); v != "" {
		cfg.Logging.Env = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.Logging.Level = v
	}
	if viper.GetBool("show-known-files") {
		cfg.Views.HideKnownFiles = false
	}
	if viper.GetBool("show-slack-files") {
		cfg.Views.HideSlackFiles = false
	}
	if cmd.Flags().Lookup("addr") != nil {
		if v := viper.GetString("addr"); v != "" {
			cfg.HTTP.Addr = v
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// session is an open store with its DAO.
type session struct {
	cfg    config.Config
	logger *zap.Logger
	store  *casestore.Store
	dao    *dao.DAO
}

func openSession(cmd *cobra.Command, path string) (*session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	store, err := casestore.Open(path, casestore.WithLogger(logger), casestore.WithPoolSize(cfg.Store.PoolSize))
	if err != nil {
		return nil, err
	}
	d, err := dao.New(store, cfg, dao.WithLogger(logger))
	if err != nil {
		store.Close() // nolint:errcheck
		return nil, err
	}
	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	return &session{cfg: cfg, logger: logger, store: store, dao: d}, nil
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("could not close store", zap.Error(err))
	}
	_ = s.logger.Sync()
}
