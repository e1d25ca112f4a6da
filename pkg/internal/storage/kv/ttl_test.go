package kv

import (
	"bytes"
	"testing"
	"time"
)

func TestTTLEnvelope(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	plain, err := sealTTL([]byte("grant"), 0, now)
	if err != nil || !bytes.Equal(plain, []byte("grant")) {
		t.Fatalf("ttl=0 should store value as is, got %q, %v", plain, err)
	}

	sealed, err := sealTTL([]byte("grant"), time.Minute, now)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.HasPrefix(sealed, ttlPrefix) {
		t.Fatalf("sealed value %q has no prefix", sealed)
	}

	cases := []struct {
		name string
		raw  []byte
		at   time.Time
		want string
		live bool
	}{
		{"unwrapped", []byte("raw"), now, "raw", true},
		{"before deadline", sealed, now.Add(59 * time.Second), "grant", true},
		{"at deadline", sealed, now.Add(time.Minute), "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, live, err := openTTL(tc.raw, tc.at)
			if err != nil {
				t.Fatal(err)
			}

			if live != tc.live || string(v) != tc.want {
				t.Errorf("openTTL = (%q, %v), want (%q, %v)", v, live, tc.want, tc.live)
			}
		})
	}

	if _, _, err := openTTL(append(bytes.Clone(ttlPrefix), '{'), now); err == nil {
		t.Error("corrupt envelope should fail")
	}
}
