// Package regex turns composed grammars into compiled, shareable matchers.
//
// A Regex pairs a grammar recognizer with up to two acceleration tiers
// compiled on the coregex engine: a free-scan candidate prefilter and an
// anchored prefix pre-check. Acceleration is strictly optional; a matcher
// without it produces identical results, only slower. Compiled matchers
// are reference counted and safe for concurrent use.
package regex

//go:generate errtrace -w .

import (
	"sync/atomic"

	"braces.dev/errtrace"

	"github.com/yangle/vte/internal/errorutil"
	"github.com/yangle/vte/internal/grammar"
)

// Purpose selects the default matching mode of a compiled matcher.
type Purpose int

const (
	// PurposeScan compiles a matcher for locating substrings in free text.
	PurposeScan Purpose = iota
	// PurposeValidate compiles a matcher that always anchors at the
	// subject start.
	PurposeValidate
)

// Flags records properties of a compile request.
type Flags uint32

const (
	// FlagMultiline marks the matcher as line-oriented: subjects are
	// expected to be single lines of pre-split text.
	FlagMultiline Flags = 1 << iota
	// FlagUnicode enables Unicode-aware character classification.
	FlagUnicode
)

// ErrCompile is returned when a grammar cannot be compiled into a matcher.
const ErrCompile = errorutil.Error("regex: compile failed")

// Result is a matched span of the subject in byte offsets.
// Start == End is a valid empty match, distinct from no match.
type Result struct {
	Start int
	End   int
}

func (r Result) Empty() bool { return r.Start == r.End }

func (r Result) Len() int { return r.End - r.Start }

// Regex is a compiled, reference-counted recognizer for a single grammar.
type Regex struct {
	root    string
	purpose Purpose
	flags   Flags

	op grammar.Op

	scanHint    string
	prefixHint  string
	scanAccel   matcher
	prefixAccel matcher

	refs atomic.Int32
}

// matcher is the part of a compiled acceleration pattern the engine uses.
type matcher interface {
	Match(b []byte) bool
	FindIndex(b []byte) []int
}

// Compile composes the grammar rooted at root from lib and wraps it into
// a matcher. The returned matcher holds one reference; callers share it
// with Ref and release it with Unref.
func Compile(lib *grammar.Library, root string, purpose Purpose, flags Flags) (*Regex, error) {
	if lib == nil {
		return nil, errtrace.Wrap(errorutil.NewInvalidArgumentError("nil library"))
	}
	op, err := lib.Compose(root)
	if err != nil {
		return nil, errtrace.Wrap(errorutil.NewWrapperError(ErrCompile, err))
	}
	scan, prefix := lib.Hints(root)
	r := &Regex{
		root:       root,
		purpose:    purpose,
		flags:      flags,
		op:         op,
		scanHint:   scan,
		prefixHint: prefix,
	}
	r.refs.Store(1)
	return r, nil
}

// Root returns the name of the grammar the matcher was compiled from.
func (r *Regex) Root() string { return r.root }

func (r *Regex) Purpose() Purpose { return r.purpose }

// Multiline reports whether the matcher was compiled for line-oriented
// subjects.
func (r *Regex) Multiline() bool { return r.flags&FlagMultiline != 0 }

// Unicode reports whether the matcher classifies characters Unicode-aware.
func (r *Regex) Unicode() bool { return r.flags&FlagUnicode != 0 }

// Ref acquires an additional reference to the matcher.
func (r *Regex) Ref() *Regex {
	r.refs.Add(1)
	return r
}

// Unref releases one reference to the matcher.
func (r *Regex) Unref() {
	if r.refs.Add(-1) < 0 {
		panic("regex: unref of released matcher")
	}
}

// Match executes the matcher over subject. With anchored, or when the
// matcher was compiled with PurposeValidate, the match must start at
// offset zero; otherwise the leftmost match is returned.
func (r *Regex) Match(subject []byte, anchored bool) (Result, bool) {
	r.Ref()
	defer r.Unref()
	if anchored || r.purpose == PurposeValidate {
		if r.prefixAccel != nil && !r.prefixAccel.Match(subject) {
			return Result{}, false
		}
		end, ok := r.derive(subject, 0)
		if !ok {
			return Result{}, false
		}
		return Result{Start: 0, End: end}, true
	}
	return r.search(subject, 0)
}

// Search returns the leftmost match starting at or after from.
func (r *Regex) Search(subject []byte, from int) (Result, bool) {
	r.Ref()
	defer r.Unref()
	return r.search(subject, from)
}

func (r *Regex) search(s []byte, from int) (Result, bool) {
	for pos := from; pos >= 0 && pos <= len(s); {
		cand := pos
		if r.scanAccel != nil {
			loc := r.scanAccel.FindIndex(s[pos:])
			if loc == nil {
				return Result{}, false
			}
			cand = pos + loc[0]
		}
		if end, ok := r.derive(s, cand); ok {
			return Result{Start: cand, End: end}, true
		}
		pos = cand + 1
	}
	return Result{}, false
}

// derive runs the recognizer at the given position. When the span ends in
// an apostrophe and the character just before the match start is itself
// an apostrophe, the span is re-derived on the truncated subject so a
// quoted locator does not swallow its closing quote.
func (r *Regex) derive(s []byte, at int) (int, bool) {
	end := r.op(s, at)
	if end < 0 {
		return 0, false
	}
	for end > at && at > 0 && s[end-1] == '\'' && s[at-1] == '\'' {
		e := r.op(s[:end-1], at)
		if e < 0 {
			return 0, false
		}
		end = e
	}
	return end, true
}
