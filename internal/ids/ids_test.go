package ids

import (
	"strings"
	"testing"
)

func TestPrefixesAndWidth(t *testing.T) {
	cases := []struct {
		id     string
		prefix string
		length int
	}{
		{Sale(), "INV", 9},
		{Purchase(), "PUR", 9},
		{Payment(), "PAY", 9},
		{Customer(7), "CUST", 7},
		{Product(42), "PROD", 7},
	}
	for _, tc := range cases {
		if !strings.HasPrefix(tc.id, tc.prefix) {
			t.Fatalf("expected prefix %s, got %s", tc.prefix, tc.id)
		}
		if len(tc.id) != tc.length {
			t.Fatalf("expected length %d for %s, got %d", tc.length, tc.id, len(tc.id))
		}
	}
}

func TestTimeDerivedIDsNeverRepeatUnderBurst(t *testing.T) {
	seen := make(map[string]struct{}, 2000)
	for i := 0; i < 2000; i++ {
		id := Sale()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate sale id %s at iteration %d", id, i)
		}
		seen[id] = struct{}{}
	}
}

func TestSequentialIDsPadToThreeDigits(t *testing.T) {
	if got := Customer(1); got != "CUST001" {
		t.Fatalf("expected CUST001, got %s", got)
	}
	if got := Product(123); got != "PROD123" {
		t.Fatalf("expected PROD123, got %s", got)
	}
	if got := Product(1234); got != "PROD1234" {
		t.Fatalf("expected PROD1234, got %s", got)
	}
}
