package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadDefaultsAndFlags(t *testing.T) {
	cfg, err := Load("", flagSet(t, "--main", "src/index.d.ts", "--name", "lib", "--externals"))
	require.NoError(t, err)

	assert.Equal(t, "src/index.d.ts", cfg.Main)
	assert.Equal(t, "lib", cfg.Name)
	assert.Equal(t, DefaultNewline, cfg.Newline)
	assert.Equal(t, DefaultIndent, cfg.Indent)
	assert.Equal(t, DefaultPrefix, cfg.Prefix)
	assert.Equal(t, DefaultSeparator, cfg.Separator)
	assert.True(t, cfg.Externals)
	assert.False(t, cfg.RemoveSource)
}

func TestLoadConfigFileEnvAndFlagPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dts-bundle.yaml")
	writeFile(t, path, "main: a.d.ts\nname: fromfile\nprefix: \"$$\"\nremoveSource: true\nexclude-glob:\n  - \"vendor/**\"\n")
	t.Setenv("DTS_BUNDLE_PREFIX", "env_")

	cfg, err := Load(path, flagSet(t, "--name", "fromflag"))
	require.NoError(t, err)

	assert.Equal(t, "a.d.ts", cfg.Main)
	assert.Equal(t, "fromflag", cfg.Name)
	assert.Equal(t, "env_", cfg.Prefix)
	assert.True(t, cfg.RemoveSource)
	assert.Equal(t, []string{"vendor/**"}, cfg.ExcludeGlob)
}

func TestLoadExplicitConfigMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadDetectsPackageJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "@acme/widgets", "typings": "build/index.d.ts"}`)

	cfg, err := Load("", flagSet(t, "--baseDir", dir))
	require.NoError(t, err)
	assert.Equal(t, "@acme/widgets", cfg.Name)
	assert.Equal(t, filepath.Join(dir, "build", "index.d.ts"), cfg.Main)
}

func TestLoadValidationAggregates(t *testing.T) {
	dir := t.TempDir()
	_, err := Load("", flagSet(t, "--baseDir", dir, "--newline", "mac", "--exclude", "(", "--separator", ""))

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Problems, 5)
	assert.Contains(t, err.Error(), `option "main" must be defined`)
	assert.Contains(t, err.Error(), `option "name" must be defined`)
	assert.Contains(t, err.Error(), "newline")
	assert.Contains(t, err.Error(), "exclude")
	assert.Contains(t, err.Error(), "separator")
}

func TestExcludeFunc(t *testing.T) {
	t.Parallel()

	cfg := &Config{Main: "a", Name: "b", Separator: "/", Exclude: `^internal/`, ExcludeGlob: []string{"**/*.gen.d.ts"}}
	require.NoError(t, cfg.Validate())

	exclude := cfg.ExcludeFunc()
	require.NotNil(t, exclude)
	assert.True(t, exclude("internal/secret.d.ts", false))
	assert.True(t, exclude("lib/x.gen.d.ts", true))
	assert.False(t, exclude("lib/x.d.ts", false))

	none := &Config{Main: "a", Name: "b", Separator: "/"}
	require.NoError(t, none.Validate())
	assert.Nil(t, none.ExcludeFunc())
}

func TestParseNewline(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"lf":   "\n",
		"LF":   "\n",
		"crlf": "\r\n",
		`\r\n`: "\r\n",
		"\r\n": "\r\n",
		"\n":   "\n",
	} {
		got, err := ParseNewline(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseNewline("cr")
	assert.Error(t, err)
}

func TestParseIndent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultIndent, ParseIndent(""))
	assert.Equal(t, "\t", ParseIndent("tab"))
	assert.Equal(t, "\t", ParseIndent(`\t`))
	assert.Equal(t, "  ", ParseIndent("2"))
	assert.Equal(t, "--", ParseIndent("--"))
}

func TestToOptions(t *testing.T) {
	t.Parallel()

	cfg := &Config{Main: "a.d.ts", Name: "lib", Newline: "crlf", Indent: "tab", Separator: ".", Ignore: []string{"tmp/**"}}
	require.NoError(t, cfg.Validate())

	opts := cfg.ToOptions(nil)
	assert.Equal(t, "a.d.ts", opts.Main)
	assert.Equal(t, "\r\n", opts.Newline)
	assert.Equal(t, "\t", opts.Indent)
	assert.Equal(t, ".", opts.Separator)
	assert.Equal(t, []string{"tmp/**"}, opts.IgnoreGlobs)
	assert.Nil(t, opts.Exclude)
}

func TestDetectPackage(t *testing.T) {
	t.Parallel()

	pkg, err := DetectPackage(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Package{}, pkg)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "package.json"), `{"name": "x", "types": "index.d.ts", "typings": "other.d.ts"}`)
	pkg, err = DetectPackage(dir)
	require.NoError(t, err)
	assert.Equal(t, Package{Name: "x", Types: "index.d.ts"}, pkg)

	bad := t.TempDir()
	writeFile(t, filepath.Join(bad, "package.json"), `{`)
	_, err = DetectPackage(bad)
	assert.Error(t, err)
}
