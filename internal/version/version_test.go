package version

import "testing"

func TestVersionStringNonEmpty(t *testing.T) {
	if s := String(); s == "" {
		t.Fatalf("version string is empty")
	}
}

func TestStringMatchesVersion(t *testing.T) {
	old := Version
	defer func() { Version = old }()
	Version = "9.9.9-test"
	if s := String(); s != "9.9.9-test" {
		t.Fatalf("String() = %q, want build override", s)
	}
}
