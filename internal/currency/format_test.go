package currency

import "testing"

func TestAmount(t *testing.T) {
	f := NewFormatter("en", "৳")
	cases := []struct {
		in   float64
		want string
	}{
		{1234567.891, "1,234,567.89"},
		{0, "0.00"},
		{0.125, "0.13"},
		{-1700, "-1,700.00"},
	}
	for _, tt := range cases {
		if got := f.Amount(tt.in); got != tt.want {
			t.Errorf("Amount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWithSymbolKeepsSignOutside(t *testing.T) {
	f := NewFormatter("en", "৳")
	if got := f.WithSymbol(-1700); got != "-৳1,700.00" {
		t.Fatalf("WithSymbol(-1700) = %q", got)
	}
	if got := f.WithSymbol(1700); got != "৳1,700.00" {
		t.Fatalf("WithSymbol(1700) = %q", got)
	}
}

func TestNewFormatterBadTagFallsBack(t *testing.T) {
	f := NewFormatter("??", "$")
	if got := f.Amount(1000); got != "1,000.00" {
		t.Fatalf("Amount(1000) = %q", got)
	}
}
