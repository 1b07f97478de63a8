package security

import "testing"

func TestGenerateNumericCode(t *testing.T) {
	code, err := GenerateNumericCode(6)
	if err != nil {
		t.Fatalf("GenerateNumericCode returned error: %v", err)
	}

	if len(code) != 6 {
		t.Fatalf("code length = %d, want 6", len(code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains non-digit %q", code, r)
		}
	}

	if _, err := GenerateNumericCode(0); err == nil {
		t.Fatal("expected error for non-positive length")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	first := HashToken("482913")
	second := HashToken("482913")
	if first != second {
		t.Fatal("expected identical inputs to hash identically")
	}

	if HashToken("482913") == HashToken("482914") {
		t.Fatal("expected different inputs to hash differently")
	}

	if len(first) != 64 {
		t.Fatalf("hash length = %d, want 64 hex characters", len(first))
	}
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a non-empty token")
	}

	other, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken returned error: %v", err)
	}
	if token == other {
		t.Fatal("expected successive tokens to differ")
	}

	if _, err := GenerateSecureToken(0); err == nil {
		t.Fatal("expected error for non-positive length")
	}
}
