package dump

import (
	"strings"
	"testing"
)

func TestDump(t *testing.T) {
	var b strings.Builder
	if err := dump(&b, options{Setup: true, Execute: true}); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, s := range []string{"rsp setup:", "rdp setup:", "frame 0, slot 1:", "65 commands, 520 bytes", "faults 0", "interrupt VI: 1", "interrupt DP: 1"} {
		if !strings.Contains(out, s) {
			t.Errorf("output lacks %q:\n%s", s, out)
		}
	}
}

func TestDumpChecksum(t *testing.T) {
	sum := func(frame int) string {
		var b strings.Builder
		if err := dump(&b, options{Frame: frame, SumsOnly: true}); err != nil {
			t.Fatal(err)
		}
		return b.String()
	}
	if strings.Count(sum(0), "\n") != 1 {
		t.Errorf("checksum only output %q", sum(0))
	}
	if sum(0) != sum(0) {
		t.Error("encoding not deterministic")
	}
	// Matrices are referenced by address, so the commands don't depend on
	// the scene.
	if sum(0) != sum(3) {
		t.Error("advanced scene changed the display list")
	}
}
