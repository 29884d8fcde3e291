package regex

import (
	"fmt"

	"braces.dev/errtrace"
	"github.com/coregx/coregex"

	"github.com/yangle/vte/internal/errorutil"
)

// JITMode selects an acceleration tier.
type JITMode int

const (
	// JITComplete builds the free-scan candidate prefilter.
	JITComplete JITMode = iota
	// JITPartialSoft builds the anchored prefix pre-check.
	JITPartialSoft
)

func (m JITMode) String() string {
	switch m {
	case JITComplete:
		return "complete"
	case JITPartialSoft:
		return "partial-soft"
	default:
		return fmt.Sprintf("JITMode(%d)", int(m))
	}
}

// AccelerationError reports a failed acceleration pass. The matcher
// remains fully usable; matching falls back to the unaccelerated path.
type AccelerationError struct {
	Mode JITMode
	Err  error
}

func (e *AccelerationError) Error() string {
	return fmt.Sprintf("regex: %s acceleration failed: %s", e.Mode, e.Err)
}

func (e *AccelerationError) Unwrap() error { return e.Err }

// Jit builds the given acceleration tier from the grammar's hint pattern.
// It must be called before the matcher is shared; tiers are independent
// and a failed tier leaves the others untouched.
func (r *Regex) Jit(mode JITMode) error {
	hint := r.scanHint
	if mode == JITPartialSoft {
		hint = r.prefixHint
	}
	if hint == "" {
		return errtrace.Wrap(&AccelerationError{
			Mode: mode,
			Err:  errorutil.Error("grammar has no acceleration hint"),
		})
	}
	re, err := coregex.Compile(hint)
	if err != nil {
		return errtrace.Wrap(&AccelerationError{Mode: mode, Err: err})
	}
	if mode == JITPartialSoft {
		r.prefixAccel = re
	} else {
		r.scanAccel = re
	}
	return nil
}

// Accelerated reports whether the given tier was built.
func (r *Regex) Accelerated(mode JITMode) bool {
	if mode == JITPartialSoft {
		return r.prefixAccel != nil
	}
	return r.scanAccel != nil
}
