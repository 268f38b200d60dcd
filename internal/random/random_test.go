package random

import (
	"strings"
	"testing"
)

func TestStringLengthAndAlphabet(t *testing.T) {
	value, err := String(Digits, 6)
	if err != nil {
		t.Fatalf("generation failed: %v", err)
	}
	if len(value) != 6 {
		t.Fatalf("expected 6 characters, got %d", len(value))
	}
	for _, character := range value {
		if !strings.ContainsRune(Digits, character) {
			t.Fatalf("character %q outside alphabet", character)
		}
	}
}

func TestStringRejectsEmptyAlphabet(t *testing.T) {
	if _, err := String("", 10); err == nil {
		t.Fatal("expected an error for an empty alphabet")
	}
}
