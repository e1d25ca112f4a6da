package filename_test

import (
	"strings"
	"testing"
	"time"

	"github.com/yeisme/projecthub/pkg/filename"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Szerződés é.pdf", "Szerzodes_e.pdf"},
		{"Tétel #1.docx", "Tetel__1.docx"},
		{"report-2024_v1.txt", "report-2024_v1.txt"},
		{"Árvíztűrő tükörfúrógép.png", "Arvizturo_tukorfurogep.png"},
		{"a/b\\c?.jpg", "a_b_c_.jpg"},
		{"", ""},
	}

	for _, c := range cases {
		got := filename.Sanitize(c.in)
		if got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
		}

		if !filename.IsSanitized(got) {
			t.Errorf("Sanitize(%q) left forbidden characters: %q", c.in, got)
		}
	}
}

func TestSanitizeNonDecomposableLetters(t *testing.T) {
	got := filename.Sanitize("łódź.pdf")
	if got != "_odz.pdf" {
		t.Errorf("Sanitize = %q", got)
	}
}

func TestNewIDOrderedAndUnique(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	prev := ""

	for range 1000 {
		id := filename.NewIDAt(now)
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}

		if prev != "" && id <= prev {
			t.Fatalf("ids not monotonic: %s <= %s", id, prev)
		}

		if strings.ToLower(id) != id {
			t.Fatalf("id should be lower case: %s", id)
		}

		seen[id] = true
		prev = id
	}
}

func TestNewClientID(t *testing.T) {
	at := time.UnixMilli(1700000000123)

	id := filename.NewClientID(at)

	prefix, suffix, ok := strings.Cut(id, "-")
	if !ok || prefix != "1700000000123" {
		t.Fatalf("NewClientID = %q, want 1700000000123-<suffix>", id)
	}

	if len(suffix) != 6 {
		t.Errorf("suffix %q should have 6 characters", suffix)
	}

	if !filename.IsSanitized(id) || strings.ToLower(id) != id {
		t.Errorf("client id %q must be lower case and sanitized", id)
	}

	if filename.NewClientID(at) == id {
		t.Error("ids generated in the same millisecond should differ")
	}
}
