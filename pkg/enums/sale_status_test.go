package enums

import "testing"

func TestParseSaleStatus(t *testing.T) {
	got, err := ParseSaleStatus("")
	if err != nil || got != SaleStatusCompleted {
		t.Fatalf("expected default completed, got %q err=%v", got, err)
	}
	got, err = ParseSaleStatus("pending")
	if err != nil || got != SaleStatusPending {
		t.Fatalf("expected pending, got %q err=%v", got, err)
	}
	if _, err := ParseSaleStatus("refunded"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if SaleStatus("refunded").IsValid() {
		t.Fatal("unknown status reported valid")
	}
}
