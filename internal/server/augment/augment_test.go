package augment

import (
	"strings"
	"testing"
)

func TestQuery_PrependsPreamble(t *testing.T) {
	t.Parallel()

	got := Query("what causes edema?")
	if !strings.HasPrefix(got, Preamble) {
		t.Fatalf("result does not start with preamble: %q", got)
	}
	if !strings.HasSuffix(got, "what causes edema?") {
		t.Fatalf("raw text not preserved verbatim: %q", got)
	}
}

func TestQuery_NotIdempotent(t *testing.T) {
	t.Parallel()

	once := Query("x")
	twice := Query(once)
	if once == twice {
		t.Fatalf("expected stacking preambles, got identical strings")
	}
	if strings.Count(twice, Preamble) != 2 {
		t.Fatalf("expected two preambles after reapplying, got %d", strings.Count(twice, Preamble))
	}
}
