package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestEvalCommandClassic(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"eval", "1", "0", "0", "+", "5", "0", "="})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("executing eval: %v", err)
	}

	if got := strings.TrimSpace(out.String()); got != "150" {
		t.Fatalf("expected %q, got %q", "150", got)
	}
}

func TestEvalCommandSteps(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"eval", "--steps", "5", "/", "0", "="})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("executing eval: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %q", lines)
	}
	if lines[len(lines)-1] != "Infinity" {
		t.Fatalf("expected final display Infinity, got %q", lines[len(lines)-1])
	}
}

func TestEvalCommandRejectsUnknownKey(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"eval", "1", "^"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected error for unknown key")
	}
}
