package main

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	envPrefix = "AIPFILTER"

	configFlag  = "config"
	verboseFlag = "verbose"
	backendFlag = "backend"
	columnFlag  = "column"
)

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "aipfilter",
		Short:         "AIP-160 filter compiler",
		Long:          `aipfilter compiles AIP-160 filter expressions into MongoDB query documents or PostgreSQL WHERE clauses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(v)
		},
	}
	cmd.PersistentFlags().String(configFlag, "", "Path to a configuration file")
	cmd.PersistentFlags().BoolP(verboseFlag, "v", false, "Log compilation at debug level")
	_ = v.BindPFlag(configFlag, cmd.PersistentFlags().Lookup(configFlag))
	_ = v.BindPFlag(verboseFlag, cmd.PersistentFlags().Lookup(verboseFlag))

	cmd.AddCommand(newCompileCmd(v))
	return cmd
}

func loadConfig(v *viper.Viper) error {
	path := v.GetString(configFlag)
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
