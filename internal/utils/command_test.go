package utils

import (
	"testing"
)

type commandData struct {
	Port    int
	DataDir string
}

/**
 * Test command line template expansion
 * @param {*testing.T} t - Testing framework instance
 * @description
 * - Expands command and argument templates against a data value
 * - Verifies placeholder substitution and argument order
 */
func TestGetCommandLine(t *testing.T) {
	data := commandData{Port: 27017, DataDir: "/tmp/db"}

	command, args, err := GetCommandLine("mongod",
		[]string{"--dbpath", "{{.DataDir}}", "--port", "{{.Port}}"}, data)
	if err != nil {
		t.Fatalf("GetCommandLine failed: %v", err)
	}
	if command != "mongod" {
		t.Errorf("unexpected command: %s", command)
	}
	expected := []string{"--dbpath", "/tmp/db", "--port", "27017"}
	if len(args) != len(expected) {
		t.Fatalf("unexpected args: %v", args)
	}
	for i, arg := range expected {
		if args[i] != arg {
			t.Errorf("arg %d: got %q, want %q", i, args[i], arg)
		}
	}
}

func TestGetCommandLineBadTemplate(t *testing.T) {
	if _, _, err := GetCommandLine("{{.Broken", nil, nil); err == nil {
		t.Error("expected parse error for unterminated template")
	}
}
