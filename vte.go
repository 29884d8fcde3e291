// Package vte recognizes URIs, email addresses and related network
// locators embedded in free-form text, and normalizes every recognized
// span into a canonical scheme-qualified form.
//
// The package ships a fixed registry of builtin recognizers covering
// explicit scheme://... URLs, schemeless www/ftp hosts, file: URLs,
// sip:/sips: URIs, email addresses and news:/man: locators. Use
// [Default] for the shared registry or [NewBuiltins] to build an
// isolated one:
//
//	for _, m := range vte.Recognize("visit www.example.org/docs") {
//		fmt.Println(m.Text) // http://www.example.org/docs
//	}
package vte

import (
	"fmt"
	"sync"

	"github.com/yangle/vte/internal/constraints"
	"github.com/yangle/vte/internal/util"
)

// Tag is the public, caller-visible kind of a recognized span.
type Tag int

const (
	// TagURI marks a span recognized as a URI of any builtin category.
	TagURI Tag = iota
)

// Category identifies a builtin grammar inside the registry.
type Category int

const (
	CategoryURL Category = iota
	CategoryHTTP
	CategoryFile
	CategoryVoIP
	CategoryEmail
	CategoryNewsMan
)

var categoryNames = [...]string{
	CategoryURL:     "url",
	CategoryHTTP:    "http",
	CategoryFile:    "file",
	CategoryVoIP:    "voip",
	CategoryEmail:   "email",
	CategoryNewsMan: "news-man",
}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Match is one recognized span of a scanned subject.
type Match struct {
	// Start and End delimit the raw span in the subject, in bytes.
	Start int
	End   int
	// Tag is the public kind of the recognized span.
	Tag Tag
	// Text is the canonical scheme-qualified form of the span.
	Text string
}

func (m Match) String() string {
	return fmt.Sprintf("[%d:%d) %s", m.Start, m.End, util.Ellipsis(m.Text, 64))
}

var (
	defOnce sync.Once
	def     *Builtins
)

// Default returns the shared process-wide registry, building it on first
// use.
func Default() *Builtins {
	defOnce.Do(func() { def = NewBuiltins() })
	return def
}

// Recognize scans s with the shared registry and returns every
// recognized span in ascending start order.
func Recognize[T constraints.Byteseq](s T) []Match {
	return Default().Scan([]byte(s))
}
