package dts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, owned bool, lines ...string) []Event {
	t.Helper()
	sc := NewScanner(owned)
	out := make([]Event, 0, len(lines))
	for _, l := range lines {
		ev, err := sc.Scan(l)
		require.NoError(t, err)
		out = append(out, ev)
	}
	return out
}

func TestScanBlockCommentDropped(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false, "/*", " * plain", " */", "declare var a: number;")
	assert.Equal(t, KindBlockOpen, evs[0].Kind)
	assert.Equal(t, KindBlockBody, evs[1].Kind)
	assert.Equal(t, KindBlockClose, evs[2].Kind)
	assert.Equal(t, KindContent, evs[3].Kind)
	assert.Nil(t, evs[3].Doc)
}

func TestScanDocCommentQueuedUntilContent(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false,
		"/**",
		"* Adds.",
		"*/",
		"",
		"declare function add(a: number): number;",
	)
	assert.Equal(t, KindBlank, evs[3].Kind)
	assert.Nil(t, evs[3].Doc)
	assert.Equal(t, []string{"/**", " * Adds.", " */"}, evs[4].Doc)
}

func TestScanInlineDocComment(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false, "    /** short */", "    x: number;", "    y: number;")
	assert.Equal(t, KindBlockClose, evs[0].Kind)
	assert.Equal(t, []string{"    /** short */"}, evs[1].Doc)
	assert.Equal(t, KindContent, evs[2].Kind)
	assert.Nil(t, evs[2].Doc)
}

func TestScanPrivateDropsDoc(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false, "    /**", "     * hidden", "     */", "    private secret;", "    visible: string;")
	assert.Equal(t, KindPrivate, evs[3].Kind)
	assert.Nil(t, evs[4].Doc)

	evs = scanAll(t, false, "    static private x;", "    private static y;")
	assert.Equal(t, KindPrivate, evs[0].Kind)
	assert.Equal(t, KindPrivate, evs[1].Kind)
}

func TestScanReferenceAndComments(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false,
		`/// <reference path="./lib/a.d.ts" />`,
		`/// <amd-module name="x" />`,
		`// note`,
		`    // indented note`,
	)
	assert.Equal(t, KindReference, evs[0].Kind)
	assert.Equal(t, "./lib/a.d.ts", evs[0].Ref)
	assert.Equal(t, KindLineComment, evs[1].Kind)
	assert.Equal(t, KindLineComment, evs[2].Kind)
	assert.Equal(t, KindContent, evs[3].Kind)
	assert.Equal(t, `    // indented note`, evs[3].Text)
}

func TestScanRequireImport(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false, `    import b = require('./b'); // trailing`)
	require.Equal(t, KindImport, evs[0].Kind)
	s := evs[0].Spec
	assert.Equal(t, "    import b = require(", s.Lead)
	assert.Equal(t, "'", s.Quote)
	assert.Equal(t, "./b", s.Name)
	assert.Equal(t, "'); // trailing", s.Trail)
	assert.Equal(t, SyntaxRequire, s.Syntax)
	assert.Equal(t, `    import b = require('__lib/b'); // trailing`, s.With("__lib/b"))
}

func TestScanESImports(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		`import { A, B } from './a';`:        "./a",
		`import * as fs from "fs";`:           "fs",
		`export * from './x';`:                "./x",
		`export { Foo } from 'left-pad';`:     "left-pad",
		`import Def, { Named } from "../up";`: "../up",
	}
	for line, want := range cases {
		evs := scanAll(t, false, line)
		require.Equal(t, KindImport, evs[0].Kind, line)
		assert.Equal(t, want, evs[0].Spec.Name, line)
		assert.Equal(t, SyntaxES, evs[0].Spec.Syntax, line)
		assert.Equal(t, line, evs[0].Spec.With(want), line)
	}
}

func TestScanMismatchedQuotesIsContent(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false, `import { A } from './a";`)
	assert.Equal(t, KindContent, evs[0].Kind)
}

func TestScanAmbientHeader(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false, `declare module "foo" {`)
	require.Equal(t, KindAmbient, evs[0].Kind)
	assert.Equal(t, "declare module ", evs[0].Spec.Lead)
	assert.Equal(t, "foo", evs[0].Spec.Name)
	assert.Equal(t, `" {`, evs[0].Spec.Trail)

	evs = scanAll(t, false, `declare module Internal {`)
	assert.Equal(t, KindContent, evs[0].Kind)
}

func TestScanAmbientHeaderMalformed(t *testing.T) {
	t.Parallel()

	for _, line := range []string{`declare module '' {`, `declare module 'open {`} {
		_, err := NewScanner(false).Scan(line)
		assert.Error(t, err, line)
	}
}

func TestScanStripsPublic(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false,
		"    public static foo: string;",
		"    static public bar(): void;",
		"    public baz;",
		"    publicity: number;",
	)
	assert.Equal(t, "    static foo: string;", evs[0].Text)
	assert.Equal(t, "    static bar(): void;", evs[1].Text)
	assert.Equal(t, "    baz;", evs[2].Text)
	assert.Equal(t, "    publicity: number;", evs[3].Text)
}

func TestScanStripsDeclareOnlyWhenOwned(t *testing.T) {
	t.Parallel()

	owned := scanAll(t, true, "export declare function f(): void;", "declare var x: number;", "  declare var y;")
	assert.Equal(t, "export function f(): void;", owned[0].Text)
	assert.Equal(t, "var x: number;", owned[1].Text)
	assert.Equal(t, "  declare var y;", owned[2].Text)

	foreign := scanAll(t, false, "export declare function f(): void;")
	assert.Equal(t, "export declare function f(): void;", foreign[0].Text)
}

func TestIsFileSpecifier(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"./a", "../b", "/abs/c", `C:\x`, "c:/y"} {
		assert.True(t, IsFileSpecifier(s), s)
	}
	for _, s := range []string{"left-pad", "@scope/pkg", "fs"} {
		assert.False(t, IsFileSpecifier(s), s)
	}
}

func TestIsIdentifier(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"foo", "left-pad", "a.b-c"} {
		assert.True(t, IsIdentifier(s), s)
	}
	for _, s := range []string{"@scope/pkg", "a/b", "-x", ""} {
		assert.False(t, IsIdentifier(s), s)
	}
}

func TestScanEmptyReferenceIsLineComment(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false, `/// <reference path="" />`, `/// <reference path='' />`)
	assert.Equal(t, KindLineComment, evs[0].Kind)
	assert.Empty(t, evs[0].Ref)
	assert.Equal(t, KindLineComment, evs[1].Kind)
}

func TestScanBlockCloseAfterStars(t *testing.T) {
	t.Parallel()

	evs := scanAll(t, false, "/*", " * ( */", "declare var a: number;")
	assert.Equal(t, KindBlockOpen, evs[0].Kind)
	assert.Equal(t, KindBlockClose, evs[1].Kind)
	assert.Equal(t, KindContent, evs[2].Kind)
}

func TestScanInlineBlockDoesNotSwallowLines(t *testing.T) {
	t.Parallel()

	sc := NewScanner(false)
	ev, err := sc.Scan("/* note */")
	require.NoError(t, err)
	assert.Equal(t, KindBlockClose, ev.Kind)
	assert.False(t, sc.Pending())

	ev, err = sc.Scan("declare var a: number;")
	require.NoError(t, err)
	assert.Equal(t, KindContent, ev.Kind)

	_, err = sc.Scan("/* open")
	require.NoError(t, err)
	assert.True(t, sc.Pending())
}
