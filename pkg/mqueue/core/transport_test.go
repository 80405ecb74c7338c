package core

import "testing"

func TestCheckProtocolVersionAcceptsCompatible(t *testing.T) {
	v, err := CheckProtocolVersion("1.2.0")
	if err != nil {
		t.Fatalf("expected 1.2.0 to satisfy %s, got %v", minSupportedProtocolVersion, err)
	}
	if v.String() != "1.2.0" {
		t.Fatalf("expected the parsed version to round-trip, got %s", v)
	}
}

func TestCheckProtocolVersionRejectsOlder(t *testing.T) {
	if _, err := CheckProtocolVersion("0.9.0"); err == nil {
		t.Fatalf("expected 0.9.0 to fail the %s constraint", minSupportedProtocolVersion)
	}
}

func TestCheckProtocolVersionRejectsUnparseable(t *testing.T) {
	if _, err := CheckProtocolVersion("not-a-version"); err == nil {
		t.Fatalf("expected an unparseable version string to error")
	}
}
