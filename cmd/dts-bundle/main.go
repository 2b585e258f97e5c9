// Package main provides the dts-bundle CLI that merges the declaration files
// reachable from one entry file into a single bundle.
//
// Modes:
//   - write   : dts-bundle --main index.d.ts --name lib [flags]
//   - dry run : dts-bundle ... --dry-run   (print the bundle to stdout)
//   - check   : dts-bundle ... --check     (diff against the existing output)
//
// Exit codes: 0 success, 1 bundling error, 2 usage or configuration error,
// 3 when --check finds the output out of date.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"dts-bundle/internal/bundle"
	"dts-bundle/internal/config"
	"dts-bundle/internal/diff"
	"dts-bundle/internal/trace"
)

// Exit codes.
const (
	exitError = 1
	exitUsage = 2
	exitDrift = 3
)

var errDrift = errors.New("bundle is out of date")

// ExitError carries the process exit code of a failed run.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }

func (e *ExitError) Unwrap() error { return e.Err }

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		return 0
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return exitError
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dts-bundle",
		Short: "Bundle TypeScript declaration files into one",
		Long: `dts-bundle follows references and imports from an entry .d.ts file,
wraps every project file in its own ambient module block and writes the
result as a single declaration file.

Settings are read from flags, DTS_BUNDLE_* environment variables and an
optional dts-bundle.{json,yaml} config file; name and main default to the
package.json "name" and "types" fields.`,
		Version:       bundle.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) > 0 {
				return &ExitError{Code: exitUsage, Err: fmt.Errorf("unexpected arguments: %v", args)}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBundle(cmd, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: exitUsage, Err: err}
	})

	flags := cmd.Flags()
	config.RegisterFlags(flags)
	flags.String("config", "", "config file (default: ./dts-bundle.{json,yaml})")
	flags.Bool("check", false, "compare with the existing output instead of writing it")
	flags.Bool("dry-run", false, "print the bundle to stdout instead of writing it")
	flags.Bool("stats", false, "print a summary table of the typings involved")
	flags.Bool("no-color", false, "disable colored diff output")
	return cmd
}

func runBundle(cmd *cobra.Command, stdout, stderr io.Writer) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")
	check, _ := flags.GetBool("check")
	dryRun, _ := flags.GetBool("dry-run")
	stats, _ := flags.GetBool("stats")
	if noColor, _ := flags.GetBool("no-color"); noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return &ExitError{Code: exitUsage, Err: err}
	}

	logger := trace.New(stderr, cfg.Verbose)
	opts := cfg.ToOptions(logger)
	opts.DryRun = dryRun || check

	res, err := bundle.Bundle(opts)
	if err != nil {
		if errors.Is(err, bundle.ErrMainNotFound) || errors.Is(err, bundle.ErrInvalidOptions) {
			return &ExitError{Code: exitUsage, Err: err}
		}
		return &ExitError{Code: exitError, Err: err}
	}

	switch {
	case check:
		err = checkOutput(stdout, res)
	case dryRun:
		_, err = io.WriteString(stdout, res.Content)
	default:
		fmt.Fprintf(stdout, "wrote %s (%s, %d of %d typings)\n",
			displayPath(res.OutFile), humanize.Bytes(uint64(len(res.Content))), len(res.Used), len(res.SourceTypings))
		if len(res.Removed) > 0 {
			fmt.Fprintf(stdout, "removed %d source typings\n", len(res.Removed))
		}
	}
	if stats && !dryRun {
		fmt.Fprint(stdout, renderStats(res))
	}
	return err
}

// checkOutput diffs the existing output file against the generated content.
// A missing output file counts as empty.
func checkOutput(stdout io.Writer, res *bundle.Result) error {
	current, err := os.ReadFile(res.OutFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &ExitError{Code: exitError, Err: fmt.Errorf("read output: %w", err)}
	}
	name := displayPath(res.OutFile)
	body, _ := diff.Unified(name, name+" (generated)", current, []byte(res.Content), diff.Options{})
	if body == "" {
		fmt.Fprintf(stdout, "%s is up to date\n", name)
		return nil
	}
	writeDiff(stdout, body)
	return &ExitError{Code: exitDrift, Err: errDrift}
}

// displayPath shortens path relative to the working directory when possible.
func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(wd, path)
	if err != nil || filepath.IsAbs(rel) || len(rel) > len(path) {
		return path
	}
	return filepath.ToSlash(rel)
}
