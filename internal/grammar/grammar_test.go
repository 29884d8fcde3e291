package grammar_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/yangle/vte/internal/errorutil"
	"github.com/yangle/vte/internal/grammar"
)

func TestComposeUndefinedRoot(t *testing.T) {
	lib := grammar.NewLibrary(true)
	_, err := lib.Compose("no-such-fragment")
	if err == nil {
		t.Fatal("want error for undefined root")
	}
	if !errorutil.IsGrammarErr(err) {
		t.Errorf("want grammar error, got %T: %s", err, err)
	}
	if !strings.Contains(err.Error(), "undefined") {
		t.Errorf("unexpected error message: %s", err)
	}
}

func TestComposeDanglingRef(t *testing.T) {
	lib := grammar.NewLibrary(true)
	err := lib.Define(grammar.Fragment{
		Name: "broken",
		Refs: []string{"missing"},
		Build: func(d grammar.Deps) grammar.Op {
			return d["missing"]
		},
	})
	if err != nil {
		t.Fatalf("define: %s", err)
	}
	_, err = lib.Compose("broken")
	if err == nil {
		t.Fatal("want error for dangling reference")
	}
	if !strings.Contains(err.Error(), `"broken"`) || !strings.Contains(err.Error(), `"missing"`) {
		t.Errorf("error should name both fragments: %s", err)
	}
}

func TestComposeCyclicRef(t *testing.T) {
	lib := grammar.NewLibrary(true)
	passOn := func(ref string) func(grammar.Deps) grammar.Op {
		return func(d grammar.Deps) grammar.Op { return d[ref] }
	}
	for _, f := range []grammar.Fragment{
		{Name: "ping", Refs: []string{"pong"}, Build: passOn("pong")},
		{Name: "pong", Refs: []string{"ping"}, Build: passOn("ping")},
	} {
		if err := lib.Define(f); err != nil {
			t.Fatalf("define %q: %s", f.Name, err)
		}
	}
	_, err := lib.Compose("ping")
	if err == nil {
		t.Fatal("want error for cyclic reference")
	}
	var gerr grammar.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("want grammar.Error, got %T", err)
	}
	if !strings.Contains(err.Error(), "cyclic") {
		t.Errorf("unexpected error message: %s", err)
	}
}

func TestDefineDuplicate(t *testing.T) {
	lib := grammar.NewLibrary(true)
	err := lib.Define(grammar.Fragment{
		Name:  "scheme",
		Build: func(grammar.Deps) grammar.Op { return nil },
	})
	if err == nil {
		t.Fatal("want error for duplicate fragment")
	}
}

func TestDefineIncomplete(t *testing.T) {
	lib := grammar.NewLibrary(true)
	if err := lib.Define(grammar.Fragment{Name: "nameless"}); err == nil {
		t.Fatal("want error for fragment without build func")
	}
}

func TestCustomFragmentComposes(t *testing.T) {
	lib := grammar.NewLibrary(true)
	err := lib.Define(grammar.Fragment{
		Name: "host-port",
		Refs: []string{"url-host", "port"},
		Build: func(d grammar.Deps) grammar.Op {
			host, port := d["url-host"], d["port"]
			return func(s []byte, at int) int {
				h := host(s, at)
				if h < 0 {
					return -1
				}
				return port(s, h)
			}
		},
	})
	if err != nil {
		t.Fatalf("define: %s", err)
	}
	op, err := lib.Compose("host-port")
	if err != nil {
		t.Fatalf("compose: %s", err)
	}
	subject := "example.com:8080/rest"
	if end := op([]byte(subject), 0); subject[:end] != "example.com:8080" {
		t.Errorf("matched %q, want %q", subject[:end], "example.com:8080")
	}
}
