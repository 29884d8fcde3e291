// Package grammar defines the named pattern fragments that make up the
// builtin recognizer grammars and composes them into executable operators.
//
// Fragments form a graph: each fragment may reference other fragments by
// name, never cyclically. References are resolved up front when a grammar
// is composed, so a dangling or cyclic reference fails before a matcher
// is ever built.
package grammar

import "fmt"

// Error is a grammar composition error.
type Error string

func (e Error) Error() string { return fmt.Sprintf("grammar error: %s", string(e)) }

func (e Error) Grammar() bool { return true }

func Errorf(format string, args ...any) Error {
	return Error(fmt.Sprintf(format, args...))
}

// Op recognizes a fragment in s at position at.
// It returns the end offset of the recognized span, which may equal at
// when an optional fragment matches empty, or -1 when the fragment does
// not match at this position. An op may inspect s before at to honor
// boundary context but never consumes it.
type Op func(s []byte, at int) int

// Deps holds the resolved operators of a fragment's references.
type Deps map[string]Op

// A Fragment is a named, reusable piece of a recognizer grammar.
type Fragment struct {
	Name string
	// Refs lists the fragments referenced by Build, by name.
	Refs []string
	// ScanHint and PrefixHint are optional RE2-syntax over-approximations
	// of the fragment's language, consumed by the pattern compiler as
	// acceleration tiers. They never affect match results.
	ScanHint   string
	PrefixHint string
	Build      func(Deps) Op
}

// Library is a set of fragments keyed by name.
// It is safe for concurrent use once fully defined.
type Library struct {
	uni   bool
	frags map[string]Fragment
}

// NewLibrary returns a library populated with the builtin fragments.
// When unicode is true, character classes are Unicode-aware, otherwise
// they cover ASCII only.
func NewLibrary(unicode bool) *Library {
	l := &Library{uni: unicode, frags: make(map[string]Fragment, 32)}
	for _, f := range builtinFragments(unicode) {
		if err := l.Define(f); err != nil {
			panic(err)
		}
	}
	return l
}

// Unicode reports whether the library's character classes are Unicode-aware.
func (l *Library) Unicode() bool { return l.uni }

// Define adds a fragment to the library.
func (l *Library) Define(f Fragment) error {
	if f.Name == "" || f.Build == nil {
		return Error("fragment must have a name and a build func")
	}
	if _, ok := l.frags[f.Name]; ok {
		return Errorf("duplicate fragment %q", f.Name)
	}
	l.frags[f.Name] = f
	return nil
}

// Hints returns the acceleration hint patterns of the named fragment.
func (l *Library) Hints(name string) (scan, prefix string) {
	f, ok := l.frags[name]
	if !ok {
		return "", ""
	}
	return f.ScanHint, f.PrefixHint
}

// Compose resolves the fragment graph rooted at root into a single
// recognizer operator. It fails on undefined or cyclic references.
func (l *Library) Compose(root string) (Op, error) {
	ops := make(map[string]Op, len(l.frags))
	visiting := make(map[string]bool, len(l.frags))

	var resolve func(name, from string) (Op, error)
	resolve = func(name, from string) (Op, error) {
		if op, ok := ops[name]; ok {
			return op, nil
		}
		f, ok := l.frags[name]
		if !ok {
			if from == "" {
				return nil, Errorf("undefined fragment %q", name)
			}
			return nil, Errorf("fragment %q references undefined fragment %q", from, name)
		}
		if visiting[name] {
			return nil, Errorf("cyclic fragment reference through %q", name)
		}
		visiting[name] = true
		deps := make(Deps, len(f.Refs))
		for _, ref := range f.Refs {
			op, err := resolve(ref, name)
			if err != nil {
				return nil, err
			}
			deps[ref] = op
		}
		op := f.Build(deps)
		delete(visiting, name)
		ops[name] = op
		return op, nil
	}
	return resolve(root, "")
}
