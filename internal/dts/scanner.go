package dts

import (
	"fmt"
	"regexp"
	"strings"
)

// Kind is the classification of one physical line.
type Kind int

const (
	KindContent Kind = iota
	KindBlank
	KindBlockOpen
	KindBlockBody
	KindBlockClose
	KindReference
	KindLineComment
	KindPrivate
	KindImport
	KindAmbient
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindBlank:
		return "blank"
	case KindBlockOpen:
		return "block-open"
	case KindBlockBody:
		return "block-body"
	case KindBlockClose:
		return "block-close"
	case KindReference:
		return "reference"
	case KindLineComment:
		return "line-comment"
	case KindPrivate:
		return "private"
	case KindImport:
		return "import"
	case KindAmbient:
		return "ambient"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is the result of scanning one line.
type Event struct {
	Kind Kind
	// Text is the line to emit for KindContent, with redundant qualifiers
	// already stripped.
	Text string
	// Ref is the raw path of a reference directive.
	Ref string
	// Spec holds the captured spans of an import or ambient header.
	Spec *Specifier
	// Doc is the queued documentation comment released by this line. It
	// must be emitted before the line itself.
	Doc []string
}

var (
	reBlockClose = regexp.MustCompile(`^[()=* \t]*\*+/`)
	reBlockOpen  = regexp.MustCompile(`^[ \t]*/\*`)
	reDocOpen    = regexp.MustCompile(`^[ \t]*/\*\*`)
	reDocLine    = regexp.MustCompile(`^([ \t]*)(\*.*)$`)
	reBlank      = regexp.MustCompile(`^\s*$`)
	reReference  = regexp.MustCompile(`^[ \t]*///[ \t]*<reference[ \t]+path=(["'])(.*?)["']?[ \t]*/>.*$`)
	rePrivate    = regexp.MustCompile(`^[ \t]*(?:static )?private (?:static )?`)
	rePublic     = regexp.MustCompile(`^([ \t]*)(static |)(public |)(static |)(.*)$`)
	reDeclare    = regexp.MustCompile(`^(export )?declare `)

	// The closing quote of the first two shapes is located by hand in
	// splitQuoted: RE2 has no backreferences.
	reAmbientHead = regexp.MustCompile(`^([ \t]*declare module )(['"])(.*)$`)
	reRequireHead = regexp.MustCompile(`^([ \t]*(?:export )?import .+? = require\()(['"])(.*)$`)
	reESImport    = regexp.MustCompile(`^([ \t]*(?:export|import) ?(?:(?:\* (?:as [^ ,]+)?)|.*)?,? ?(?:[^ ,]+ ?,?)(?:\{(?:[^ ,]+ ?,?)*\})? ?from )(['"])([^ ,]+)(['"];.*)$`)

	reFileSpec   = regexp.MustCompile(`^(?:[./].*|.:.*)$`)
	reIdentifier = regexp.MustCompile(`^\w+(?:[.-]\w+)*$`)
)

// IsFileSpecifier reports whether a module specifier names a file (starts
// with '.', '/' or a drive letter) rather than a package.
func IsFileSpecifier(name string) bool {
	return reFileSpec.MatchString(name)
}

// IsIdentifier reports whether name is a plain dotted/dashed module
// identifier such as "left-pad" or "foo.bar". Only those are renamed.
func IsIdentifier(name string) bool {
	return reIdentifier.MatchString(name)
}

// Scanner classifies the lines of one file. It carries the block comment
// buffer and the queued documentation comment between calls, so lines must
// be fed in source order.
type Scanner struct {
	// Owned strips `declare` qualifiers from content lines.
	Owned bool

	inBlock bool
	block   []string
	doc     []string
}

// NewScanner returns a scanner for a file that is (owned) or is not part of
// the project file set.
func NewScanner(owned bool) *Scanner {
	return &Scanner{Owned: owned}
}

// Scan classifies line. An error is returned only for an ambient module
// header whose name cannot be read.
func (s *Scanner) Scan(line string) (Event, error) {
	if reBlockClose.MatchString(line) {
		s.block = append(s.block, line)
		s.popBlock()
		return Event{Kind: KindBlockClose}, nil
	}
	if reBlockOpen.MatchString(line) {
		s.block = append(s.block, line)
		s.inBlock = true
		if closesInline(line) {
			s.popBlock()
			return Event{Kind: KindBlockClose}, nil
		}
		return Event{Kind: KindBlockOpen}, nil
	}
	if s.inBlock {
		s.block = append(s.block, line)
		return Event{Kind: KindBlockBody}, nil
	}
	if reBlank.MatchString(line) {
		return Event{Kind: KindBlank}, nil
	}
	if strings.HasPrefix(line, "///") {
		if m := reReference.FindStringSubmatch(line); m != nil && m[2] != "" {
			return Event{Kind: KindReference, Ref: m[2]}, nil
		}
	}
	if strings.HasPrefix(line, "//") {
		return Event{Kind: KindLineComment}, nil
	}
	if rePrivate.MatchString(line) {
		s.doc = nil
		return Event{Kind: KindPrivate}, nil
	}

	doc := s.popDoc()
	if spec, ok := matchImport(line); ok {
		return Event{Kind: KindImport, Spec: spec, Doc: doc}, nil
	}
	spec, ok, err := matchAmbient(line)
	if err != nil {
		return Event{}, err
	}
	if ok {
		return Event{Kind: KindAmbient, Spec: spec, Doc: doc}, nil
	}

	text := rePublic.ReplaceAllString(line, "${1}${2}${4}${5}")
	if s.Owned {
		text = reDeclare.ReplaceAllString(text, "${1}")
	}
	return Event{Kind: KindContent, Text: text, Doc: doc}, nil
}

// Pending reports whether a block comment is still open. After the last
// line it means the comment was never closed and its text was dropped.
func (s *Scanner) Pending() bool { return s.inBlock }

// popBlock ends the current block comment. A block opened with `/**` is
// held as the queued doc comment; any other block is dropped.
func (s *Scanner) popBlock() {
	if len(s.block) > 0 {
		if reDocOpen.MatchString(s.block[0]) {
			s.doc = s.block
		}
		s.block = nil
	}
	s.inBlock = false
}

// popDoc releases the queued doc comment, re-spacing its `*` continuation
// lines by one column.
func (s *Scanner) popDoc() []string {
	if s.doc == nil {
		return nil
	}
	out := make([]string, len(s.doc))
	for i, l := range s.doc {
		if m := reDocLine.FindStringSubmatch(l); m != nil {
			out[i] = m[1] + " " + m[2]
		} else {
			out[i] = l
		}
	}
	s.doc = nil
	return out
}

// closesInline reports a `/* ... */` opened and closed on one line. Such a
// comment ends at once instead of holding the block open until a later
// line that starts with `*/`.
func closesInline(line string) bool {
	i := strings.Index(line, "/*")
	return i >= 0 && strings.Contains(line[i+2:], "*/")
}

func matchImport(line string) (*Specifier, bool) {
	if m := reRequireHead.FindStringSubmatch(line); m != nil {
		if name, trail, ok := splitQuoted(m[3], m[2], ");"); ok {
			return &Specifier{Lead: m[1], Quote: m[2], Name: name, Trail: trail, Syntax: SyntaxRequire}, true
		}
	}
	if m := reESImport.FindStringSubmatch(line); m != nil && m[4][:1] == m[2] {
		return &Specifier{Lead: m[1], Quote: m[2], Name: m[3], Trail: m[4], Syntax: SyntaxES}, true
	}
	return nil, false
}

func matchAmbient(line string) (*Specifier, bool, error) {
	m := reAmbientHead.FindStringSubmatch(line)
	if m == nil {
		return nil, false, nil
	}
	name, trail, ok := splitQuoted(m[3], m[2], "")
	if !ok {
		return nil, false, errMalformedAmbient
	}
	return &Specifier{Lead: m[1], Quote: m[2], Name: name, Trail: trail, Syntax: SyntaxAmbient}, true, nil
}

// splitQuoted finds the first closing quote q in rest (the text after the
// opening quote) that leaves a non-empty name and is followed by after.
// trail includes the closing quote.
func splitQuoted(rest, q, after string) (name, trail string, ok bool) {
	for i := 1; i < len(rest); i++ {
		if rest[i] != q[0] {
			continue
		}
		if strings.HasPrefix(rest[i+1:], after) {
			return rest[:i], rest[i:], true
		}
	}
	return "", "", false
}
