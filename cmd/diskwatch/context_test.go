package main

import (
	"fmt"
	"strings"
	"syscall"
	"testing"
)

func TestWrapDialErrorMissingSocket(t *testing.T) {
	err := wrapDialError(fmt.Errorf("dial unix: %w", syscall.ENOENT), "/tmp/dw.sock")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "diskwatch --file") {
		t.Fatalf("hint should name the root command invocation: %v", err)
	}
}

func TestWrapDialErrorConnectionRefused(t *testing.T) {
	err := wrapDialError(fmt.Errorf("dial unix: %w", syscall.ECONNREFUSED), "/tmp/dw.sock")
	if err == nil || !strings.Contains(err.Error(), "refused") {
		t.Fatalf("unexpected wrapped error: %v", err)
	}
}
