package money_test

import (
	"testing"

	"github.com/ganghaofan/mealorder/internal/money"
	"github.com/shopspring/decimal"
)

func TestFromYuan(t *testing.T) {
	tests := []struct {
		in   string
		want money.Minor
	}{
		{"18", 1800},
		{"18.50", 1850},
		{"0.01", 1},
		{"0", 0},
		{"-5", -500},
		{"-0.01", -1},
		{"999.99", 99999},
		// Half-away-from-zero at the third decimal.
		{"0.005", 1},
		{"-0.005", -1},
		{"0.004", 0},
		// Classic float trap: 19.9 yuan must be exactly 1990 cents.
		{"19.9", 1990},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("bad test input %q: %v", tt.in, err)
		}
		if got := money.FromYuan(d); got != tt.want {
			t.Errorf("FromYuan(%s) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseYuan(t *testing.T) {
	got, err := money.ParseYuan("12.34")
	if err != nil {
		t.Fatalf("ParseYuan: %v", err)
	}
	if got != 1234 {
		t.Errorf("ParseYuan(12.34) = %d, want 1234", got)
	}

	if _, err := money.ParseYuan("abc"); err == nil {
		t.Error("ParseYuan(abc) should fail")
	}
}

func TestRoundTrip(t *testing.T) {
	// Any amount with <= 2 decimal places survives yuan -> minor -> yuan.
	for cents := money.Minor(-10000); cents <= 10000; cents += 7 {
		back := money.FromYuan(cents.Yuan())
		if back != cents {
			t.Fatalf("round trip %d -> %s -> %d", cents, cents.Yuan(), back)
		}
	}
}

func TestFormatting(t *testing.T) {
	if s := money.Minor(1850).String(); s != "18.50" {
		t.Errorf("String() = %q, want 18.50", s)
	}
	if s := money.Minor(-500).String(); s != "-5.00" {
		t.Errorf("String() = %q, want -5.00", s)
	}
}

func TestMulQty(t *testing.T) {
	if got := money.Minor(300).MulQty(2); got != 600 {
		t.Errorf("MulQty = %d, want 600", got)
	}
	if got := money.Minor(-500).MulQty(3); got != -1500 {
		t.Errorf("MulQty = %d, want -1500", got)
	}
}
