package utils

import (
	"testing"
)

/**
 * Test version string parsing
 * @param {*testing.T} t - Testing framework instance
 * @description
 * - Parses well-formed and malformed version strings
 * - Verifies each component lands in the right field
 */
func TestParseVersion(t *testing.T) {
	ver, err := ParseVersion("1.12.3")
	if err != nil {
		t.Fatalf("ParseVersion failed: %v", err)
	}
	if ver.Major != 1 || ver.Minor != 12 || ver.Micro != 3 {
		t.Errorf("unexpected version: %+v", ver)
	}
	if ver.String() != "1.12.3" {
		t.Errorf("unexpected String(): %s", ver.String())
	}

	for _, bad := range []string{"", "1", "1.2", "1.2.3.4", "a.b.c", "1.x.3"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Errorf("ParseVersion(%q) should fail", bad)
		}
	}
}

func TestCompareVersion(t *testing.T) {
	a := VersionNumber{Major: 1, Minor: 2, Micro: 3}
	b := VersionNumber{Major: 1, Minor: 3, Micro: 0}

	if CompareVersion(a, b) >= 0 {
		t.Error("1.2.3 should be older than 1.3.0")
	}
	if CompareVersion(b, a) <= 0 {
		t.Error("1.3.0 should be newer than 1.2.3")
	}
	if CompareVersion(a, a) != 0 {
		t.Error("equal versions should compare to zero")
	}
}
