package model

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := map[string]string{
		"0":           "0.00",
		"5":           "5.00",
		"1234.5":      "1,234.50",
		"-98765.432":  "-98,765.43",
		"1000000.005": "1,000,000.01",
	}
	for in, want := range tests {
		if got := FormatMoney(d(in)); got != want {
			t.Errorf("FormatMoney(%s) = %q, want %q", in, got, want)
		}
	}
}
