// Package config resolves the settings of a bundling run from defaults, an
// optional config file, DTS_BUNDLE_* environment variables and command-line
// flags, in increasing order of precedence.
//
// Conventions:
//   - Keys use the flag spelling (baseDir, removeSource, exclude-glob);
//     environment variables replace '-' and '.' with '_'.
//   - package.json in the base directory supplies name and main when they
//     are not set anywhere else.
//   - Validation reports every problem at once.
package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"

	"dts-bundle/internal/bundle"
	"dts-bundle/internal/graph"
)

// Default values for optional settings.
const (
	DefaultNewline   = "os"
	DefaultIndent    = "    "
	DefaultPrefix    = "__"
	DefaultSeparator = "/"
)

// Config is the user-facing configuration of one bundling run.
type Config struct {
	Main         string   `mapstructure:"main"`
	Name         string   `mapstructure:"name"`
	BaseDir      string   `mapstructure:"baseDir"`
	Out          string   `mapstructure:"out"`
	Newline      string   `mapstructure:"newline"`
	Indent       string   `mapstructure:"indent"`
	Prefix       string   `mapstructure:"prefix"`
	Separator    string   `mapstructure:"separator"`
	Externals    bool     `mapstructure:"externals"`
	Exclude      string   `mapstructure:"exclude"`
	ExcludeGlob  []string `mapstructure:"exclude-glob"`
	Ignore       []string `mapstructure:"ignore"`
	RemoveSource bool     `mapstructure:"removeSource"`
	Verbose      bool     `mapstructure:"verbose"`

	excludeRx *regexp.Regexp
}

// ValidationError lists every problem found in a Config.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration:\n  " + strings.Join(e.Problems, "\n  ")
}

// Validate checks c and compiles its exclude expression. It returns nil or
// a *ValidationError.
func (c *Config) Validate() error {
	var errs errlist

	if strings.TrimSpace(c.Main) == "" {
		errs.add(`option "main" must be defined`)
	}
	if strings.TrimSpace(c.Name) == "" {
		errs.add(`option "name" must be defined`)
	}
	if c.Separator == "" {
		errs.add(`option "separator" must have non-zero length`)
	}
	if _, err := ParseNewline(c.Newline); err != nil {
		errs.add("%v", err)
	}
	if c.Exclude != "" {
		rx, err := regexp.Compile(c.Exclude)
		if err != nil {
			errs.add("option \"exclude\" is not a valid regular expression: %v", err)
		} else {
			c.excludeRx = rx
		}
	}
	for _, p := range c.ExcludeGlob {
		if !doublestar.ValidatePattern(p) {
			errs.add("option \"exclude-glob\" has an invalid pattern %q", p)
		}
	}
	for _, p := range c.Ignore {
		if !doublestar.ValidatePattern(p) {
			errs.add("option \"ignore\" has an invalid pattern %q", p)
		}
	}
	return errs.err()
}

// ExcludeFunc combines the exclude expression and globs into one predicate
// over slash-separated relative paths, or nil when neither is set. Validate
// must have succeeded.
func (c *Config) ExcludeFunc() graph.ExcludeFunc {
	rx := c.excludeRx
	globs := c.ExcludeGlob
	if rx == nil && len(globs) == 0 {
		return nil
	}
	return func(rel string, _ bool) bool {
		if rx != nil && rx.MatchString(rel) {
			return true
		}
		for _, g := range globs {
			if ok, _ := doublestar.Match(g, rel); ok {
				return true
			}
		}
		return false
	}
}

// ToOptions converts a validated Config into bundle options.
func (c *Config) ToOptions(logger *log.Logger) bundle.Options {
	nl, _ := ParseNewline(c.Newline)
	return bundle.Options{
		Main:         c.Main,
		Name:         c.Name,
		BaseDir:      c.BaseDir,
		Out:          c.Out,
		Newline:      nl,
		Indent:       ParseIndent(c.Indent),
		Prefix:       c.Prefix,
		Separator:    c.Separator,
		Externals:    c.Externals,
		Exclude:      c.ExcludeFunc(),
		IgnoreGlobs:  c.Ignore,
		RemoveSource: c.RemoveSource,
		Verbose:      c.Verbose,
		Logger:       logger,
	}
}

// ParseNewline maps a newline setting to the line ending it names. Besides
// lf, crlf and os, a literal "\n" or "\r\n" (escaped or raw) is accepted.
func ParseNewline(s string) (string, error) {
	switch s {
	case "\n", "\r\n":
		return s, nil
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "os":
		return bundle.OSNewline(), nil
	case "lf", `\n`:
		return "\n", nil
	case "crlf", `\r\n`:
		return "\r\n", nil
	}
	return "", fmt.Errorf("option \"newline\" must be one of lf, crlf, os (got %q)", s)
}

// ParseIndent maps an indent setting to the indentation unit: "tab" or `\t`
// is a tab, a number is that many spaces, anything else is used verbatim.
func ParseIndent(s string) string {
	switch s {
	case "":
		return DefaultIndent
	case "tab", `\t`:
		return "\t"
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return strings.Repeat(" ", n)
	}
	return s
}

// errlist aggregates multiple validation issues into a single error.
type errlist struct {
	msgs []string
}

func (e *errlist) add(format string, args ...any) {
	e.msgs = append(e.msgs, fmt.Sprintf(format, args...))
}

func (e *errlist) err() error {
	if len(e.msgs) == 0 {
		return nil
	}
	return &ValidationError{Problems: e.msgs}
}
