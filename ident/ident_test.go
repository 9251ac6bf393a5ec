// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ident

import (
	"strings"
	"testing"
)

func TestGenerateSessionID(t *testing.T) {
	id, err := GenerateSessionID()
	if err != nil {
		t.Fatalf("GenerateSessionID() error = %v", err)
	}

	if id == "" {
		t.Fatal("GenerateSessionID() returned empty string")
	}

	// 64 bits of entropy fits in at most 11 base62 characters
	if len(id) > 11 {
		t.Errorf("GenerateSessionID() length = %d, want <= 11", len(id))
	}

	// Verify the ID is URL-safe base62
	const base62Chars = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for _, c := range id {
		if !strings.ContainsRune(base62Chars, c) {
			t.Errorf("GenerateSessionID() contains invalid char: %c", c)
		}
	}
}

func TestGenerateSessionID_Uniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := GenerateSessionID()
		if err != nil {
			t.Fatalf("GenerateSessionID() error = %v", err)
		}
		if seen[id] {
			t.Fatalf("GenerateSessionID() produced duplicate ID %q (extremely unlikely)", id)
		}
		seen[id] = true
	}
}

func TestBase62Encode(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"zero", []byte{0}, "0"},
		{"one", []byte{1}, "1"},
		{"sixty-two", []byte{62}, "10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base62Encode(tt.data)
			if got != tt.want {
				t.Errorf("base62Encode(%v) = %q, want %q", tt.data, got, tt.want)
			}
		})
	}
}
