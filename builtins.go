package vte

import (
	"cmp"
	"log/slog"
	"slices"

	"github.com/yangle/vte/internal/grammar"
	"github.com/yangle/vte/internal/log"
	"github.com/yangle/vte/internal/util"
	"github.com/yangle/vte/regex"
)

// Entry pairs a compiled matcher with its category and the transform
// that canonicalizes raw match text.
type Entry struct {
	re        *regex.Regex
	category  Category
	transform func(string) (string, Tag)
}

// Category returns the builtin category the entry recognizes.
func (e *Entry) Category() Category { return e.category }

// Regex returns the entry's compiled matcher. The registry keeps its own
// reference; callers that retain the matcher must Ref it.
func (e *Entry) Regex() *regex.Regex { return e.re }

// Find runs the entry's matcher over subject and canonicalizes the
// result. With anchored the match must start at offset zero.
func (e *Entry) Find(subject []byte, anchored bool) (Match, bool) {
	res, ok := e.re.Match(subject, anchored)
	if !ok {
		return Match{}, false
	}
	return e.newMatch(subject, res), true
}

// Search returns the entry's leftmost canonicalized match starting at or
// after from.
func (e *Entry) Search(subject []byte, from int) (Match, bool) {
	res, ok := e.re.Search(subject, from)
	if !ok {
		return Match{}, false
	}
	return e.newMatch(subject, res), true
}

func (e *Entry) newMatch(subject []byte, res regex.Result) Match {
	text, tag := e.transform(string(subject[res.Start:res.End]))
	return Match{Start: res.Start, End: res.End, Tag: tag, Text: text}
}

func asIs(m string) (string, Tag) { return m, TagURI }

func httpPrefixed(m string) (string, Tag) { return "http://" + m, TagURI }

func mailtoPrefixed(m string) (string, Tag) {
	if len(m) >= 7 && util.EqFold(m[:7], "mailto:") {
		return m, TagURI
	}
	return "mailto:" + m, TagURI
}

type builtinDef struct {
	root      string
	category  Category
	transform func(string) (string, Tag)
}

var builtinDefs = []builtinDef{
	{"url-as-is", CategoryURL, asIs},
	{"url-http", CategoryHTTP, httpPrefixed},
	{"url-file", CategoryFile, asIs},
	{"url-voip", CategoryVoIP, asIs},
	{"email", CategoryEmail, mailtoPrefixed},
	{"news-man", CategoryNewsMan, asIs},
}

// Builtins owns the fixed set of builtin recognizers. Registration order
// is scan order: when spans of different categories overlap, the earlier
// entry wins.
type Builtins struct {
	entries []*Entry
	log     *slog.Logger
}

// NewBuiltins compiles the builtin grammar set into a registry. A
// builtin that fails to compile is logged and skipped; a failed
// acceleration tier only disables that tier.
func NewBuiltins(opts ...Option) *Builtins {
	cfg := newConfig(opts...)
	lib := grammar.NewLibrary(true)
	b := &Builtins{
		entries: make([]*Entry, 0, len(cfg.defs)),
		log:     cfg.logger,
	}
	for _, bd := range cfg.defs {
		re, err := regex.Compile(lib, bd.root, regex.PurposeScan, regex.FlagMultiline|regex.FlagUnicode)
		if err != nil {
			b.log.Error("compile builtin grammar failed",
				slog.Any("grammar", log.StringValue(bd.root)),
				slog.Any("error", err),
			)
			continue
		}
		if cfg.accel {
			for _, mode := range []regex.JITMode{regex.JITComplete, regex.JITPartialSoft} {
				if err := re.Jit(mode); err != nil {
					b.log.Warn("accelerate builtin grammar failed",
						slog.Any("grammar", log.StringValue(bd.root)),
						slog.Any("mode", log.FmtValue(mode, false)),
						slog.Any("error", err),
					)
				}
			}
		}
		b.entries = append(b.entries, &Entry{
			re:        re,
			category:  bd.category,
			transform: bd.transform,
		})
	}
	return b
}

// Entries returns the registry entries in registration order. The
// returned slice is shared and must not be modified.
func (b *Builtins) Entries() []*Entry { return b.entries }

// FindByCategory returns the entry registered for the category.
func (b *Builtins) FindByCategory(c Category) (*Entry, bool) {
	for _, e := range b.entries {
		if e.category == c {
			return e, true
		}
	}
	return nil, false
}

// Scan reports every recognized span of subject across all builtins, in
// ascending start order.
func (b *Builtins) Scan(subject []byte) []Match {
	var out []Match
	var taken [][2]int
	for _, e := range b.entries {
		for pos := 0; pos <= len(subject); {
			res, ok := e.re.Search(subject, pos)
			if !ok {
				break
			}
			if !overlaps(taken, res.Start, res.End) {
				out = append(out, e.newMatch(subject, res))
				taken = append(taken, [2]int{res.Start, res.End})
			}
			if res.End > pos {
				pos = res.End
			} else {
				pos = res.Start + 1
			}
		}
	}
	slices.SortFunc(out, func(a, b Match) int { return cmp.Compare(a.Start, b.Start) })
	return out
}

func overlaps(taken [][2]int, start, end int) bool {
	for _, t := range taken {
		if start < t[1] && t[0] < end {
			return true
		}
	}
	return false
}

// Close releases the registry's references to its matchers. The registry
// must not be used afterwards.
func (b *Builtins) Close() {
	for _, e := range b.entries {
		e.re.Unref()
	}
	b.entries = nil
}
