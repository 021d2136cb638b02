package pagination

import "testing"

func TestNormalize(t *testing.T) {
	if got := Normalize(0); got != 25 {
		t.Fatalf("Normalize(0) = %d", got)
	}
	if got := Normalize(-3); got != 25 {
		t.Fatalf("Normalize(-3) = %d", got)
	}
	if got := Normalize(50); got != 50 {
		t.Fatalf("Normalize(50) = %d", got)
	}
	if got := Normalize(10000); got != 200 {
		t.Fatalf("Normalize(10000) = %d", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token := EncodeToken(75)
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if got := DecodeToken(token); got != 75 {
		t.Fatalf("DecodeToken = %d, want 75", got)
	}
}

func TestDecodeTokenInvalid(t *testing.T) {
	if got := DecodeToken(""); got != 0 {
		t.Fatalf("empty token decoded to %d", got)
	}
	if got := DecodeToken("not-base64!"); got != 0 {
		t.Fatalf("garbage token decoded to %d", got)
	}
	if got := EncodeToken(0); got != "" {
		t.Fatalf("EncodeToken(0) = %q", got)
	}
}
