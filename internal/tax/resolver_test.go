package tax

import "testing"

func TestRatesForSwitzerland(t *testing.T) {
	rates := NewResolver().RatesFor("ch")
	if len(rates) != 2 {
		t.Fatalf("expected 2 rates, got %d", len(rates))
	}
	if rates[0].Percent != 8.1 {
		t.Fatalf("expected standard rate 8.1, got %v", rates[0].Percent)
	}
	if rates[1].Percent != 2.6 {
		t.Fatalf("expected reduced rate 2.6, got %v", rates[1].Percent)
	}
}

func TestRatesForUnknownCountry(t *testing.T) {
	rates := NewResolver().RatesFor("ZZ")
	if len(rates) != 0 {
		t.Fatalf("expected empty set for unknown country, got %v", rates)
	}
}

func TestRatesForReturnsCopy(t *testing.T) {
	first := NewResolver().RatesFor("DE")
	first[0].Percent = 99
	second := NewResolver().RatesFor("DE")
	if second[0].Percent != 19 {
		t.Fatalf("resolver table was mutated through a returned slice")
	}
}
