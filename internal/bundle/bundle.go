package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"

	"dts-bundle/internal/dts"
	"dts-bundle/internal/fsutil"
	"dts-bundle/internal/graph"
	"dts-bundle/internal/rewrite"
	"dts-bundle/internal/trace"
	"dts-bundle/internal/walkwalk"
)

var (
	// ErrMainNotFound is returned when the entry file does not exist.
	ErrMainNotFound = errors.New("main does not exist")
	// ErrInvalidOptions is returned for options Bundle cannot work with.
	ErrInvalidOptions = errors.New("invalid options")
)

// Options configures one Bundle run. Zero values are replaced by the
// defaults of DefaultOptions where noted. Prefix and Separator have no
// zero-value default: an empty Prefix is a valid choice, and Separator must
// be set, so start from DefaultOptions.
type Options struct {
	Main      string // entry file, required
	Name      string // bundle export name, required
	BaseDir   string // default: directory of Main
	Out       string // default: Name + ".d.ts", relative to BaseDir
	Newline   string // default: platform line ending
	Indent    string // default: four spaces
	Prefix    string // DefaultOptions: "__"
	Separator string // required, DefaultOptions: "/"
	Externals bool
	// Exclude drops files from the bundle; nil excludes nothing.
	Exclude graph.ExcludeFunc
	// IgnoreGlobs are doublestar patterns hidden from typing discovery.
	IgnoreGlobs  []string
	RemoveSource bool
	Verbose      bool
	// DryRun assembles the bundle without touching the filesystem.
	DryRun bool
	Logger *log.Logger
}

// DefaultOptions returns the option defaults for name and main.
func DefaultOptions(main, name string) Options {
	return Options{
		Main:      main,
		Name:      name,
		Newline:   OSNewline(),
		Indent:    "    ",
		Prefix:    "__",
		Separator: "/",
	}
}

// OSNewline is the platform line ending.
func OSNewline() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// Result describes what a Bundle run produced.
type Result struct {
	Content string
	OutFile string

	// Used lists the bundled files in output order.
	Used []string
	// Excluded lists files rejected by the exclude predicate.
	Excluded []string
	// ExternalDeps lists files named in the dependency banner.
	ExternalDeps []string
	// SourceTypings are all declaration files found under BaseDir.
	SourceTypings []string
	// ExternalTypings are referenced files outside SourceTypings.
	ExternalTypings []string
	// Removed lists source typings deleted by RemoveSource.
	Removed []string
}

type settings struct {
	Options
	baseDir  string
	mainFile string
	outFile  string
}

// Bundle merges the declaration file tree rooted at opts.Main into a single
// file. Nothing is written when an error is returned.
func Bundle(opts Options) (*Result, error) {
	s, err := resolveSettings(opts)
	if err != nil {
		return nil, err
	}
	logger := trace.Or(opts.Logger)
	logSettings(logger, s)

	if _, err := os.Stat(s.mainFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMainNotFound, s.mainFile)
		}
		return nil, err
	}

	trace.Section(logger, "find typings")
	sourceTypings, err := walkwalk.CollectTypings(s.baseDir, s.IgnoreGlobs)
	if err != nil {
		return nil, fmt.Errorf("find typings: %w", err)
	}
	inSource := make(map[string]bool, len(sourceTypings))
	for _, p := range sourceTypings {
		inSource[p] = true
		logger.Debug(" - source typing", "file", p)
	}

	namer := rewrite.Namer{
		BaseDir:   s.baseDir,
		MainFile:  s.mainFile,
		Name:      s.Name,
		Prefix:    s.Prefix,
		Separator: s.Separator,
	}
	parseOpts := dts.Options{
		Indent:        s.Indent,
		Externals:     s.Externals,
		IsProjectFile: func(p string) bool { return inSource[p] },
		Namer:         namer,
		Logger:        logger,
	}
	fm, err := graph.BuildFileMap(s.mainFile, func(p string) (*dts.File, error) {
		return dts.Parse(p, parseOpts)
	}, logger)
	if err != nil {
		return nil, err
	}
	idx, err := graph.BuildExportIndex(fm, logger)
	if err != nil {
		return nil, err
	}
	inc, err := graph.ResolveInclusion(fm, idx, graph.ResolveOptions{
		BaseDir:   s.baseDir,
		Exclude:   s.Exclude,
		Externals: s.Externals,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	trace.Section(logger, "rewrite global external modules")
	rewrite.Apply(inc.Used, namer, logger)

	trace.Section(logger, "build output")
	content := Assemble(inc, AssembleOptions{
		BaseDir: s.baseDir,
		Newline: s.Newline,
		Indent:  s.Indent,
	})

	res := &Result{
		Content:       content,
		OutFile:       s.outFile,
		Excluded:      inc.Excluded,
		ExternalDeps:  inc.ExternalDeps,
		SourceTypings: sourceTypings,
	}
	for _, f := range inc.Used {
		res.Used = append(res.Used, f.Path)
	}
	for _, path := range fm.Order {
		for _, ref := range fm.Files[path].ExternalReferences {
			res.ExternalTypings = pushUnique(res.ExternalTypings, ref)
		}
	}

	if !s.DryRun {
		if err := write(logger, s, res); err != nil {
			return nil, err
		}
	}
	if s.Verbose {
		logStats(logger, res, inc)
	}
	trace.Section(logger, "done")
	return res, nil
}

func write(logger *log.Logger, s settings, res *Result) error {
	if s.RemoveSource {
		trace.Section(logger, "remove source typings")
		removed, err := fsutil.RemoveTypings(res.SourceTypings, s.outFile)
		for _, p := range removed {
			logger.Debug(" - removed", "file", p)
		}
		res.Removed = removed
		if err != nil {
			return fmt.Errorf("remove source typings: %w", err)
		}
	}

	trace.Section(logger, "write output")
	if err := fsutil.WriteFileAtomic(s.outFile, []byte(res.Content)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Debug("wrote", "file", s.outFile, "size", humanize.Bytes(uint64(len(res.Content))))
	return nil
}

func resolveSettings(opts Options) (settings, error) {
	if opts.Main == "" {
		return settings{}, fmt.Errorf("%w: main must be defined", ErrInvalidOptions)
	}
	if opts.Name == "" {
		return settings{}, fmt.Errorf("%w: name must be defined", ErrInvalidOptions)
	}
	if opts.Separator == "" {
		return settings{}, fmt.Errorf("%w: separator must have non-zero length", ErrInvalidOptions)
	}
	if opts.Newline == "" {
		opts.Newline = OSNewline()
	}
	if opts.Indent == "" {
		opts.Indent = "    "
	}
	if opts.Out == "" {
		opts.Out = opts.Name + dts.Suffix
	}

	s := settings{Options: opts}
	base := opts.BaseDir
	if base == "" {
		base = filepath.Dir(filepath.FromSlash(opts.Main))
	}
	var err error
	if s.baseDir, err = filepath.Abs(base); err != nil {
		return settings{}, err
	}
	if s.mainFile, err = filepath.Abs(filepath.FromSlash(opts.Main)); err != nil {
		return settings{}, err
	}
	out := filepath.FromSlash(opts.Out)
	if filepath.IsAbs(out) {
		s.outFile = filepath.Clean(out)
	} else {
		s.outFile = filepath.Join(s.baseDir, out)
	}
	return s, nil
}

func logSettings(logger *log.Logger, s settings) {
	trace.Section(logger, "settings")
	logger.Debug("settings",
		"main", s.Main,
		"name", s.Name,
		"out", s.Out,
		"baseDir", s.baseDir,
		"mainFile", s.mainFile,
		"outFile", s.outFile,
		"externals", s.Externals,
		"exclude", s.Exclude != nil,
		"removeSource", s.RemoveSource,
		"dryRun", s.DryRun,
	)
}

func logStats(logger *log.Logger, res *Result, inc *graph.Inclusion) {
	trace.Section(logger, "statistics")
	for _, p := range res.SourceTypings {
		if inc.IsUsed(p) {
			logger.Debug("used source typing", "file", p)
		} else {
			logger.Debug("unused source typing", "file", p)
		}
	}
	for _, p := range res.Excluded {
		logger.Debug("excluded typing", "file", p)
	}
	for _, p := range res.ExternalTypings {
		if inc.IsUsed(p) {
			logger.Debug("used external typing", "file", p)
		} else {
			logger.Debug("unused external typing", "file", p)
		}
	}
	for _, p := range res.ExternalDeps {
		logger.Debug("external dependency", "file", p)
	}
}

func pushUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
