package main

import "testing"

func TestShortRev(t *testing.T) {
	if got := shortRev("0123456789abcdef"); got != "0123456" {
		t.Fatalf("shortRev = %q", got)
	}
	if got := shortRev("abc"); got != "abc" {
		t.Fatalf("shortRev = %q", got)
	}
	if commit == "" || buildDate == "" {
		t.Fatalf("version not initialised: %q %q", commit, buildDate)
	}
}
