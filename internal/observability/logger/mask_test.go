package logger

import "testing"

func TestMaskIBAN(t *testing.T) {
	got := MaskIBAN("CH93 0076 2011 6238 5295 7")
	want := "CH****2957"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	// Short fragments keep nothing but the tail.
	if got := MaskIBAN("CH93"); got != "****CH93" {
		t.Fatalf("expected short value fully masked, got %q", got)
	}
}

func TestMaskAuthorization(t *testing.T) {
	got := MaskAuthorization("Bearer fk_abcdef1234")
	want := "Bearer ****1234"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestMaskJSONBankingFields(t *testing.T) {
	input := map[string]any{
		"company_name": "Muster Treuhand AG",
		"iban":         "CH9300762011623852957",
		"settings": map[string]any{
			"bank_account": "CH9300762011623852957",
			"api_key":      "fk_12345678",
		},
	}
	masked := MaskJSON(input)
	if masked["company_name"] != "Muster Treuhand AG" {
		t.Fatalf("company_name must pass through, got %v", masked["company_name"])
	}
	if masked["iban"] != "****2957" {
		t.Fatalf("expected masked iban, got %v", masked["iban"])
	}
	nested, ok := masked["settings"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested map")
	}
	if nested["bank_account"] != "****2957" {
		t.Fatalf("expected masked bank_account, got %v", nested["bank_account"])
	}
	if nested["api_key"] != "****5678" {
		t.Fatalf("expected masked api_key, got %v", nested["api_key"])
	}
}
