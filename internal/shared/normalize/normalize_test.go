package normalize

import (
	"testing"
	"time"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{name: "PlainInteger", input: "1200", want: 1200},
		{name: "PlainDecimal", input: "12.5", want: 12.5},
		{name: "NegativeInteger", input: "-300", want: -300},
		{name: "UnicodeMinus", input: "−450", want: -450},
		{name: "ParenthesesNegative", input: "(1200)", want: -1200},
		{name: "ParenthesesWithSpaces", input: "( 1200 )", want: -1200},
		{name: "YenSymbol", input: "¥3000", want: 3000},
		{name: "DollarSymbol", input: "$25.99", want: 25.99},
		{name: "ThousandsSeparators", input: "1,234,567", want: 1234567},
		{name: "SeparatorsAndSymbol", input: "¥ 1,200", want: 1200},
		{name: "ParenthesesYen", input: "(¥5,000)", want: -5000},
		{name: "LeadingTrailingSpace", input: "  42  ", want: 42},
		{name: "TrailingCurrencyWord", input: "1200JPY", want: 1200},
		{name: "Empty", input: "", wantErr: true},
		{name: "WhitespaceOnly", input: "   ", wantErr: true},
		{name: "LoneMinus", input: "-", wantErr: true},
		{name: "LoneDot", input: ".", wantErr: true},
		{name: "MinusDot", input: "-.", wantErr: true},
		{name: "DotMinus", input: ".-", wantErr: true},
		{name: "DoubleMinus", input: "--", wantErr: true},
		{name: "Letters", input: "abc", wantErr: true},
		{name: "EmbeddedMinus", input: "1-2", wantErr: true},
		{name: "DoubleDot", input: "1.2.3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAmountErrorNamesValue(t *testing.T) {
	_, err := ParseAmount("abc")
	if err == nil {
		t.Fatal("expected error")
	}
	pe, ok := err.(*ParseError)
	if !ok {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Field != "amount" || pe.Value != "abc" {
		t.Errorf("unexpected ParseError contents: %+v", pe)
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{name: "Plain", input: "2024-01-05", want: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{name: "Trimmed", input: "  2024-12-31 ", want: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)},
		{name: "MonthRollover", input: "2024-13-01", want: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{name: "Empty", input: "", wantErr: true},
		{name: "TwoParts", input: "2024-01", wantErr: true},
		{name: "NonNumeric", input: "2024-ab-01", wantErr: true},
		{name: "Slashes", input: "2024/01/05", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "TRUE", " True ", "1", "yes", "on", "y", "t"}
	for _, in := range truthy {
		if !ParseBool(in) {
			t.Errorf("ParseBool(%q) = false, want true", in)
		}
	}

	falsy := []string{"", "false", "0", "no", "off", "n", "2", "maybe"}
	for _, in := range falsy {
		if ParseBool(in) {
			t.Errorf("ParseBool(%q) = true, want false", in)
		}
	}
}
