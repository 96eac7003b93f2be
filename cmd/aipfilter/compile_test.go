package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	filter "github.com/krew-solutions/aip-filter-go/aipfilter/filter/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompileMongo(t *testing.T) {
	out, err := execute(t, "compile", "a > 1 OR NOT tags:x")
	require.NoError(t, err)
	assert.JSONEq(t, `{"$or":[{"a":{"$gt":1}},{"$nor":[{"tags":{"$elemMatch":{"$eq":"x"}}}]}]}`, out)
}

func TestCompilePostgresql(t *testing.T) {
	out, err := execute(t, "compile", "--backend", "postgresql", "--column", "name=full_name", "name = abc* AND age >= 18")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql":"\"full_name\" LIKE @p1 AND \"age\" >= @p2","args":{"p1":"abc%","p2":18}}`, out)
}

func TestCompileBackendFromEnvironment(t *testing.T) {
	t.Setenv("AIPFILTER_BACKEND", "postgresql")
	out, err := execute(t, "compile", "a = 1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql":"\"a\" = @p1","args":{"p1":1}}`, out)
}

func TestCompileConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aipfilter.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: postgresql\ncolumn:\n  name: full_name\n"), 0o600))

	out, err := execute(t, "--config", path, "compile", "name = Bob")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sql":"\"full_name\" = @p1","args":{"p1":"Bob"}}`, out)
}

func TestCompileErrors(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, err := execute(t, "compile", "--backend", "redis", "a = 1")
		assert.ErrorContains(t, err, `unknown backend "redis"`)
	})

	t.Run("invalid literal", func(t *testing.T) {
		_, err := execute(t, "compile", "t >= 2024-13-40")
		var parseErr *filter.LiteralParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("missing filter", func(t *testing.T) {
		_, err := execute(t, "compile")
		assert.Error(t, err)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "compile", "a = 1")
		assert.ErrorContains(t, err, "read config")
	})
}
