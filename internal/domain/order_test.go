package domain

import (
	"errors"
	"testing"
)

func TestOrderStatusIsTerminal(t *testing.T) {
	cases := map[OrderStatus]bool{
		OrderStatusPending:    false,
		OrderStatusOnHold:     false,
		OrderStatusProcessing: false,
		OrderStatusCompleted:  true,
		OrderStatusCancelled:  true,
		OrderStatusFailed:     true,
	}
	for status, want := range cases {
		if got := status.IsTerminal(); got != want {
			t.Fatalf("%s: expected terminal=%v, got %v", status, want, got)
		}
	}
}

func TestParsePurchaseMode(t *testing.T) {
	mode, err := ParsePurchaseMode("")
	if err != nil || mode != PurchaseModeStandard {
		t.Fatalf("expected standard for empty input, got %q %v", mode, err)
	}
	mode, err = ParsePurchaseMode(" Loan ")
	if err != nil || mode != PurchaseModeLoan {
		t.Fatalf("expected loan, got %q %v", mode, err)
	}
	if _, err := ParsePurchaseMode("layaway"); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestParseFavouriteKind(t *testing.T) {
	kind, err := ParseFavouriteKind(" Artist ")
	if err != nil || kind != FavouriteArtist {
		t.Fatalf("expected artist, got %q err=%v", kind, err)
	}
	if _, err := ParseFavouriteKind("sculpture"); !errors.Is(err, ErrInvalidFavourite) {
		t.Fatalf("expected ErrInvalidFavourite, got %v", err)
	}
}
