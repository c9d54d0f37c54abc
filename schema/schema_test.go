package schema

import "testing"

func TestRequiredColumns(t *testing.T) {
	cases := []struct {
		c    Category
		want []string
	}{
		{Quote, []string{"timestamp", "symbol", "bid_price", "ask_price", "micro_price"}},
		{Trade, []string{"timestamp", "symbol", "price"}},
		{FillSim, []string{"timestamp", "symbol", "price", "is_buy", "is_aggressive"}},
		{FillProd, []string{"timestamp", "symbol", "price", "is_buy", "is_aggressive"}},
		{Orders, []string{"timestamp", "symbol", "price", "is_new", "is_cancel", "is_reject", "is_ack"}},
		{Valuation, []string{"timestamp", "symbol", "theo_price"}},
	}
	for _, tc := range cases {
		got := RequiredColumns(tc.c)
		if len(got) != len(tc.want) {
			t.Fatalf("%s: got %v want %v", tc.c, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: got %v want %v", tc.c, got, tc.want)
			}
		}
	}
}

func TestRequiredColumnsReturnsCopy(t *testing.T) {
	cols := RequiredColumns(Trade)
	cols[0] = "mutated"
	if RequiredColumns(Trade)[0] != "timestamp" {
		t.Fatalf("registry mutated through returned slice")
	}
	if RequiredColumns(Category(42)) != nil {
		t.Fatalf("expected nil for unknown category")
	}
}

func TestMissing(t *testing.T) {
	missing := Missing(Quote, []string{"symbol", "timestamp", "ask_price"})
	if len(missing) != 2 || missing[0] != "bid_price" || missing[1] != "micro_price" {
		t.Fatalf("unexpected missing columns: %v", missing)
	}
	if m := Missing(Valuation, []string{"timestamp", "symbol", "theo_price", "extra"}); len(m) != 0 {
		t.Fatalf("expected no missing columns, got %v", m)
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		if err != nil || got != c {
			t.Fatalf("round trip %s: got %v err %v", c, got, err)
		}
	}
	if got, err := ParseCategory("fill_sim"); err != nil || got != FillSim {
		t.Fatalf("short name: got %v err %v", got, err)
	}
	if _, err := ParseCategory("depth"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
