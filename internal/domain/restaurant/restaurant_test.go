package restaurant

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	if err := ValidateID("res_abc123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateID("restaurant_abc"); err == nil {
		t.Fatal("id without res_ prefix should be rejected")
	}
	if err := ValidateID(""); err == nil {
		t.Fatal("empty id should be rejected")
	}
	if err := ValidateID("res_" + strings.Repeat("x", 47)); err == nil {
		t.Fatal("id over 50 chars should be rejected")
	}
	if err := ValidateID("res_" + strings.Repeat("x", 46)); err != nil {
		t.Fatalf("50-char id should pass: %v", err)
	}
}
