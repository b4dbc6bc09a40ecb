package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/multidispatch/internal/config"
	"github.com/zjrosen/multidispatch/internal/dispatch"
)

// execute runs the root command with a fresh config file in a temp dir.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	_ = viper.BindPFlag("catalog.path", rootCmd.PersistentFlags().Lookup("catalog"))
	cfg = config.Config{}
	invokeJSON, checkJSON, configInitForce, replWatch = false, false, false, false
	listOperation = ""
	checkMinResultArg = -1
	_ = rootCmd.PersistentFlags().Set("catalog", "")
	rootCmd.PersistentFlags().Visit(func(f *pflag.Flag) { f.Changed = false })
	for _, c := range rootCmd.Commands() {
		c.Flags().Visit(func(f *pflag.Flag) { f.Changed = false })
	}

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(cfgPath))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestInvoke_Text(t *testing.T) {
	out, err := execute(t, "invoke", "fact", "9")
	require.NoError(t, err)
	require.Equal(t, "362880 int\n", out)

	out, err = execute(t, "invoke", "g", `"a"`, `"a"`)
	require.NoError(t, err)
	require.Equal(t, "\"aa\" string\n", out)
}

func TestInvoke_JSON(t *testing.T) {
	out, err := execute(t, "invoke", "--json", "g", "2", "5")
	require.NoError(t, err)

	var dto map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &dto))
	require.Equal(t, "g", dto["operation"])
	require.Equal(t, float64(10), dto["result"])
	require.Equal(t, "int", dto["type"])
}

func TestInvoke_NoMatch(t *testing.T) {
	_, err := execute(t, "invoke", "fact", "-1")
	require.ErrorIs(t, err, dispatch.ErrNoMatchingClause)
	require.EqualError(t, err, `no clause for "fact" matching (-1)`)
}

func TestInvoke_NegativeArguments(t *testing.T) {
	out, err := execute(t, "invoke", "g", "-2", "-2")
	require.NoError(t, err)
	require.Equal(t, "-4 int\n", out)

	out, err = execute(t, "invoke", "g", "-2.5", "2")
	require.NoError(t, err)
	require.Equal(t, "-5 float64\n", out)

	// Flags after the operation name are arguments too.
	out, err = execute(t, "invoke", "g", "--json", "--json")
	require.NoError(t, err)
	require.Equal(t, "\"--json--json\" string\n", out)
}

func TestInvoke_CatalogFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
operations:
  - name: same
    clauses:
      - patterns: [{var: x}]
        impl: identity
`), 0o600))

	out, err := execute(t, "--catalog", path, "invoke", "same", "7")
	require.NoError(t, err)
	require.Equal(t, "7 int\n", out)

	_, err = execute(t, "--catalog", path, "invoke", "fact", "3")
	require.ErrorIs(t, err, dispatch.ErrUnknownOperation)
}

func TestOperationsList(t *testing.T) {
	out, err := execute(t, "operations:list", "-o", "g")
	require.NoError(t, err)

	var ops []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &ops))
	require.Len(t, ops, 1)
	clauses := ops[0]["clauses"].([]any)
	require.Len(t, clauses, 2)
	require.Equal(t, "(x, x)", clauses[0].(map[string]any)["signature"])
}

func TestCheck(t *testing.T) {
	out, err := execute(t, "check", "kind", "--types", "char", "--seed", "3", "--count", "20")
	require.NoError(t, err)
	require.Equal(t, "OK, passed 20 tests (seed 3)\n", out)

	_, err = execute(t, "check", "answer", "--types", "char", "--seed", "3")
	require.Error(t, err)

	out, err = execute(t, "check", "fact", "--types", "int", "--seed", "3", "--count", "10", "--min-result-arg", "-1")
	require.NoError(t, err)
	require.Equal(t, "OK, passed 10 tests (seed 3)\n", out)

	_, err = execute(t, "check", "fact", "--types", "int", "--min-result-arg", "1")
	require.ErrorContains(t, err, "out of range")

	_, err = execute(t, "check", "nope", "--types", "int")
	require.ErrorContains(t, err, `unknown operation "nope"`)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new", "config.yaml")
	out, err := execute(t, "config:init", path)
	require.NoError(t, err)
	require.Contains(t, out, "wrote "+path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, config.DefaultConfigTemplate(), string(data))

	_, err = execute(t, "config:init", path)
	require.ErrorContains(t, err, "already exists")
}

func TestCatalogUse(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "ops.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("operations: [{name: f, clauses: [{patterns: [_], impl: identity}]}]"), 0o600))
	cfgPath := filepath.Join(dir, "config.yaml")

	out, err := execute(t, "--config", cfgPath, "catalog:use", catalogPath)
	require.NoError(t, err)
	require.Contains(t, out, "catalog.path = "+catalogPath)

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "path: "+catalogPath)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("operations: [{name: f}]"), 0o600))
	_, err = execute(t, "--config", cfgPath, "catalog:use", bad)
	require.ErrorContains(t, err, "no clauses")
}

func TestEngine_MemoAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
operations:
  - name: fact
    memo: true
    clauses:
      - patterns: [{literal: 0}]
        impl: const
        value: 1
      - patterns: [{predicate: positive-int}]
        impl: mul-recurse
`), 0o600))

	c := config.Defaults()
	c.Catalog.Path = path
	c.Dispatch.Memo = true
	e, err := newEngine(c)
	require.NoError(t, err)
	defer e.Close()

	r, err := e.dispatcher.Invoke(t.Context(), "fact", 5)
	require.NoError(t, err)
	require.Equal(t, 120, r)
	before := e.dispatcher.Stats().Invocations
	_, err = e.dispatcher.Invoke(t.Context(), "fact", 5)
	require.NoError(t, err)
	require.Equal(t, before, e.dispatcher.Stats().Invocations, "second call served from the memo cache")

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString(`  - name: id
    clauses:
      - patterns: [_]
        impl: identity
`)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := e.reload()
	require.NoError(t, err)
	require.Len(t, res.Registered, 1)
	require.Len(t, res.Skipped, 2)
	require.True(t, e.dispatcher.Registry().Has("id"))
}

func TestEngine_BuiltInReloadIsNoop(t *testing.T) {
	e, err := newEngine(config.Defaults())
	require.NoError(t, err)
	defer e.Close()

	res, err := e.reload()
	require.NoError(t, err)
	require.Empty(t, res.Registered)
	require.Nil(t, reloadFunc(e))
}
