package main

import (
	"bytes"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRootHelpListsCommands(t *testing.T) {
	output, err := executeCommand(t, "--help")
	if err != nil {
		t.Fatalf("help returned error: %v", err)
	}
	for _, command := range []string{"start", "stop", "status", "modules", "triggers", "history", "logs", "config"} {
		if !strings.Contains(output, command) {
			t.Fatalf("help output missing %q:\n%s", command, output)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	output, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version returned error: %v", err)
	}
	if !strings.HasPrefix(output, "cerebro ") {
		t.Fatalf("unexpected version output: %q", output)
	}
}

func TestUnknownCommandFails(t *testing.T) {
	if _, err := executeCommand(t, "frobnicate"); err == nil {
		t.Fatal("expected error for unknown command")
	}
}
