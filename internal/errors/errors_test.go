package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNewFillsTemplateFields(t *testing.T) {
	err := New("W001", "tick still busy after 64 passes")
	if err.Code != "W001" {
		t.Errorf("expected W001, got %q", err.Code)
	}
	if err.Category != CategoryRuntime {
		t.Errorf("expected runtime category, got %q", err.Category)
	}
	if err.Detail == "" || err.Suggestion == "" || err.DocURL == "" {
		t.Errorf("registered code must carry detail, suggestion and doc url: %+v", err)
	}
	if got := err.Error(); !strings.HasPrefix(got, "W001: ") {
		t.Errorf("Error() must lead with the code, got %q", got)
	}
}

func TestNewDefaultsMessageFromTemplate(t *testing.T) {
	err := New("W002", "")
	if err.Message == "" {
		t.Error("empty message must fall back to the template message")
	}
}

func TestUnknownCodeStillUsable(t *testing.T) {
	err := New("W999", "something odd")
	if err.Error() != "W999: something odd" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if err.Category != "" {
		t.Errorf("unknown code must not invent a category, got %q", err.Category)
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("connection reset")
	err := Wrap("W006", "delete subtree", cause)
	if !stderrors.Is(err, cause) {
		t.Error("wrapped cause must be reachable via errors.Is")
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("wrapped message missing cause: %q", err.Error())
	}
}

func TestIsMatchesByCode(t *testing.T) {
	a := Newf("W003", "subscription %d: %v", 7, "boom")
	if !stderrors.Is(a, New("W003", "")) {
		t.Error("same-code errors must match")
	}
	if stderrors.Is(a, New("W001", "")) {
		t.Error("different codes must not match")
	}
}

func TestRegistryComplete(t *testing.T) {
	want := []string{"W001", "W002", "W003", "W004", "W005", "W006", "W007"}
	for _, code := range want {
		if _, ok := Lookup(code); !ok {
			t.Errorf("code %s not registered", code)
		}
	}
	if got := len(Codes()); got != len(want) {
		t.Errorf("expected %d codes, got %d", len(want), got)
	}
}
