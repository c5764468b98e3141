package utils

import (
	"testing"
	"time"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		expected string
	}{
		{0, "USD", "$0.00"},
		{1500000, "USD", "$1,500,000.00"},
		{725, "USD", "$725.00"},
		{-72500, "USD", "-$72,500.00"},
		{1234.565, "usd", "$1,234.57"},
		{999.999, "USD", "$1,000.00"},
		{10, "XXX1", "10.00 XXX1"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatCurrency(tt.amount, tt.currency); got != tt.expected {
				t.Errorf("FormatCurrency(%v, %s) = %s, want %s", tt.amount, tt.currency, got, tt.expected)
			}
		})
	}
}

func TestFormatSignedCurrency(t *testing.T) {
	if got := FormatSignedCurrency(72500, "USD"); got != "+$72,500.00" {
		t.Errorf("got %s", got)
	}
	if got := FormatSignedCurrency(-72500, "USD"); got != "-$72,500.00" {
		t.Errorf("got %s", got)
	}
	if got := FormatSignedCurrency(0, "USD"); got != "$0.00" {
		t.Errorf("got %s", got)
	}
}

func TestIsCurrency(t *testing.T) {
	if !IsCurrency("usd") || !IsCurrency("EUR") {
		t.Error("USD and EUR should be known")
	}
	if IsCurrency("DOLLARS") {
		t.Error("DOLLARS should not be a currency")
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{2.8333333, "2.83%"},
		{0, "0.00%"},
		{-4.8333, "-4.83%"},
		{5.5, "5.50%"},
	}
	for _, tt := range tests {
		if got := FormatPercent(tt.input); got != tt.expected {
			t.Errorf("FormatPercent(%v) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{2.45, "+2.45%"},
		{-1.23, "-1.23%"},
		{0, "+0.00%"},
	}
	for _, tt := range tests {
		if got := FormatPct(tt.input); got != tt.expected {
			t.Errorf("FormatPct(%v) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}

func TestFormatFixed(t *testing.T) {
	if got := FormatFixed(0.123456, 4); got != "0.1235" {
		t.Errorf("got %s", got)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{"1000000", 1000000, false},
		{" 1,000,000.50 ", 1000000.5, false},
		{"$500,000", 500000, false},
		{"2.7%", 2.7, false},
		{"(1,250)", -1250, false},
		{"-3.5", -3.5, false},
		{"1e3", 1000, false},
		{"", 0, true},
		{"abc", 0, true},
		{"4.2x", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseNumber(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseNumber(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeISIN(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"US1234567890", "US1234567890"},
		{" us1234567890 ", "US1234567890"},
		{"us-0378 331005", "US0378331005"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeISIN(tt.input); got != tt.expected {
			t.Errorf("NormalizeISIN(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestIsValidISIN(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"US0378331005", true},
		{"US5949181045", true},
		{"GB0002634946", true},
		{"US0378331006", false},
		{"US037833100", false},
		{"1S0378331005", false},
	}
	for _, tt := range tests {
		if got := IsValidISIN(tt.input); got != tt.valid {
			t.Errorf("IsValidISIN(%q) = %v, want %v", tt.input, got, tt.valid)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	if got := FormatTimestamp(ts); got != "2025-03-10 14:30 UTC" {
		t.Errorf("got %s", got)
	}
}
