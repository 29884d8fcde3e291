package regex_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yangle/vte/internal/errorutil"
	"github.com/yangle/vte/internal/grammar"
	"github.com/yangle/vte/regex"
)

func compile(t *testing.T, root string, purpose regex.Purpose) *regex.Regex {
	t.Helper()
	re, err := regex.Compile(grammar.NewLibrary(true), root, purpose, regex.FlagMultiline|regex.FlagUnicode)
	if err != nil {
		t.Fatalf("compile %q: %s", root, err)
	}
	return re
}

func TestCompileErrors(t *testing.T) {
	_, err := regex.Compile(nil, "url-as-is", regex.PurposeScan, 0)
	if !errors.Is(err, errorutil.ErrInvalidArgument) {
		t.Errorf("nil library: got %v, want ErrInvalidArgument", err)
	}

	_, err = regex.Compile(grammar.NewLibrary(true), "no-such-root", regex.PurposeScan, 0)
	if !errors.Is(err, regex.ErrCompile) {
		t.Errorf("unknown root: got %v, want ErrCompile", err)
	}
	if !errorutil.IsGrammarErr(err) {
		t.Errorf("unknown root: cause should be a grammar error, got %v", err)
	}
}

func TestFlags(t *testing.T) {
	re := compile(t, "url-as-is", regex.PurposeScan)
	defer re.Unref()
	if !re.Multiline() || !re.Unicode() {
		t.Errorf("flags not carried: multiline=%v unicode=%v", re.Multiline(), re.Unicode())
	}
	if re.Root() != "url-as-is" {
		t.Errorf("root = %q", re.Root())
	}
}

func TestMatchAnchored(t *testing.T) {
	re := compile(t, "url-as-is", regex.PurposeScan)
	defer re.Unref()

	res, ok := re.Match([]byte("http://example.com for details"), true)
	if !ok {
		t.Fatal("no anchored match")
	}
	want := regex.Result{Start: 0, End: len("http://example.com")}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}

	if _, ok := re.Match([]byte("see http://example.com"), true); ok {
		t.Error("anchored match should not find mid-subject URL")
	}
}

func TestPurposeValidateForcesAnchoring(t *testing.T) {
	re := compile(t, "url-as-is", regex.PurposeValidate)
	defer re.Unref()

	if _, ok := re.Match([]byte("see http://example.com"), false); ok {
		t.Error("validate matcher should anchor even without the anchored flag")
	}
	if _, ok := re.Match([]byte("http://example.com"), false); !ok {
		t.Error("validate matcher should match a valid subject")
	}
}

func TestEmptyMatchIsNotNoMatch(t *testing.T) {
	pass := compile(t, "pass", regex.PurposeValidate)
	defer pass.Unref()
	res, ok := pass.Match([]byte("nocolon"), true)
	if !ok {
		t.Fatal("optional fragment should match empty")
	}
	if !res.Empty() || res.Len() != 0 {
		t.Errorf("want empty result, got %+v", res)
	}

	user := compile(t, "user", regex.PurposeValidate)
	defer user.Unref()
	if _, ok := user.Match(nil, true); ok {
		t.Error("required fragment should not match empty subject")
	}
}

func TestSearch(t *testing.T) {
	re := compile(t, "url-as-is", regex.PurposeScan)
	defer re.Unref()

	subject := []byte("Visit http://example.com for details")
	res, ok := re.Search(subject, 0)
	if !ok {
		t.Fatal("no match")
	}
	if got := string(subject[res.Start:res.End]); got != "http://example.com" {
		t.Errorf("matched %q", got)
	}
	if _, ok := re.Search(subject, res.End); ok {
		t.Error("unexpected second match")
	}
}

func TestSearchApostropheBoundary(t *testing.T) {
	re := compile(t, "url-as-is", regex.PurposeScan)
	defer re.Unref()

	for subject, want := range map[string]string{
		"<a href='http://foo/bar'>foo</a>":  "http://foo/bar",
		"https://en.wikipedia.org/wiki/Cryin'":                 "https://en.wikipedia.org/wiki/Cryin'",
		"<a href=\"https://en.wikipedia.org/wiki/Cryin'\">":    "https://en.wikipedia.org/wiki/Cryin'",
		"<a href='https://en.wikipedia.org/wiki/Aerosmith'>":   "https://en.wikipedia.org/wiki/Aerosmith",
		"<a href=\"https://en.wikipedia.org/wiki/Moore's_law\">": "https://en.wikipedia.org/wiki/Moore's_law",
	} {
		res, ok := re.Search([]byte(subject), 0)
		if !ok {
			t.Errorf("%q: no match", subject)
			continue
		}
		if got := subject[res.Start:res.End]; got != want {
			t.Errorf("%q: matched %q, want %q", subject, got, want)
		}
	}
}

func TestJit(t *testing.T) {
	re := compile(t, "url-as-is", regex.PurposeScan)
	defer re.Unref()

	for _, mode := range []regex.JITMode{regex.JITComplete, regex.JITPartialSoft} {
		if err := re.Jit(mode); err != nil {
			t.Fatalf("jit %s: %s", mode, err)
		}
		if !re.Accelerated(mode) {
			t.Errorf("tier %s not built", mode)
		}
	}
}

func TestJitNoHint(t *testing.T) {
	re := compile(t, "user", regex.PurposeScan)
	defer re.Unref()

	err := re.Jit(regex.JITComplete)
	var aerr *regex.AccelerationError
	if !errors.As(err, &aerr) {
		t.Fatalf("want AccelerationError, got %v", err)
	}
	if aerr.Mode != regex.JITComplete {
		t.Errorf("mode = %s", aerr.Mode)
	}
	if re.Accelerated(regex.JITComplete) {
		t.Error("failed tier must not be marked built")
	}

	// Degraded matcher keeps working.
	if _, ok := re.Search([]byte("--joe--"), 0); !ok {
		t.Error("unaccelerated search failed")
	}
}

func TestSearchAcceleratedEquivalence(t *testing.T) {
	plain := compile(t, "url-as-is", regex.PurposeScan)
	defer plain.Unref()
	accel := compile(t, "url-as-is", regex.PurposeScan)
	defer accel.Unref()
	if err := accel.Jit(regex.JITComplete); err != nil {
		t.Fatalf("jit: %s", err)
	}

	subjects := []string{
		"Visit http://example.com for details",
		"There's no URL here http:/foo",
		"HtTp://déjà-vu.com:10000/déjà/vu",
		"[markdown](https://en.wikipedia.org/wiki/The_Offspring)",
		"nothing to see",
		"http://",
		"ends with http://aa.",
	}
	for _, subject := range subjects {
		r1, ok1 := plain.Search([]byte(subject), 0)
		r2, ok2 := accel.Search([]byte(subject), 0)
		if ok1 != ok2 || r1 != r2 {
			t.Errorf("%q: plain (%v,%v) != accelerated (%v,%v)", subject, r1, ok1, r2, ok2)
		}
	}
}

func TestRefCounting(t *testing.T) {
	re := compile(t, "news-man", regex.PurposeScan)
	r2 := re.Ref()
	if r2 != re {
		t.Error("Ref must return the same matcher")
	}
	re.Unref()
	// Still usable through the second reference.
	if _, ok := r2.Search([]byte("see man:ls(1)"), 0); !ok {
		t.Error("matcher unusable after releasing one of two references")
	}
	r2.Unref()
}
