package utils

import "testing"

func TestRandomHex(t *testing.T) {
	a, b := RandomHex(16), RandomHex(16)
	if len(a) != 32 || a == b {
		t.Fatalf("RandomHex: %q %q", a, b)
	}
}

func TestSameToken(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"abc", "abc", true},
		{"abc", "abd", false},
		{"abc", "abcd", false},
		{"", "", false},
	}
	for _, c := range cases {
		if got := SameToken(c.a, c.b); got != c.want {
			t.Fatalf("SameToken(%q, %q) = %v", c.a, c.b, got)
		}
	}
}
