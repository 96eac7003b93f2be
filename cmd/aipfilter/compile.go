package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	filter "github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain"
	"github.com/krew-solutions/aip-filter-go/aipfilter/filter/infrastructure/mongo"
	"github.com/krew-solutions/aip-filter-go/aipfilter/filter/infrastructure/postgresql"
)

func newCompileCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compile <filter>",
		Short: "Compile a filter for a backend",
		Example: `  aipfilter compile 'age >= 18 AND tags:admin'
  aipfilter compile --backend postgresql --column name=full_name 'name = abc*'`,
		Args: cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, _ []string) {
			_ = v.BindPFlag(backendFlag, cmd.Flags().Lookup(backendFlag))
			_ = v.BindPFlag(columnFlag, cmd.Flags().Lookup(columnFlag))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, v, args[0])
		},
	}
	cmd.Flags().String(backendFlag, mongo.BackendName, "Target backend: mongo or postgresql")
	cmd.Flags().StringToString(columnFlag, nil, "Map a filter field to a PostgreSQL column, field=column")
	return cmd
}

type sqlOutput struct {
	SQL  string         `json:"sql"`
	Args map[string]any `json:"args"`
}

func runCompile(cmd *cobra.Command, v *viper.Viper, text string) error {
	log, err := newLogger(v.GetBool(verboseFlag))
	if err != nil {
		return errors.Wrap(err, "build logger")
	}
	defer func() { _ = log.Sync() }()

	backend := v.GetString(backendFlag)
	log.Debug("compiling filter", zap.String("backend", backend), zap.String("filter", text))

	var out []byte
	switch backend {
	case mongo.BackendName:
		result, err := filter.Compile[bson.D](mongo.NewAdapter(), text, filter.WithLogger(log))
		if err != nil {
			return err
		}
		out, err = bson.MarshalExtJSON(result.Predicate(), false, false)
		if err != nil {
			return errors.Wrap(err, "encode extended json")
		}
	case postgresql.BackendName:
		adapter := postgresql.NewAdapter(postgresql.WithColumnMapping(v.GetStringMapString(columnFlag)))
		result, err := filter.Compile[postgresql.Clause](adapter, text, filter.WithLogger(log))
		if err != nil {
			return err
		}
		clause := result.Predicate()
		out, err = json.Marshal(sqlOutput{SQL: clause.SQL, Args: clause.Args})
		if err != nil {
			return errors.Wrap(err, "encode json")
		}
	default:
		return errors.Errorf("unknown backend %q", backend)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
