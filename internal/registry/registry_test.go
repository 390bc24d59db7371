package registry_test

import (
	"testing"

	domaintypes "github.com/murat-sen-cloudpeer/webcrypto-local/internal/domain/types"
	"github.com/murat-sen-cloudpeer/webcrypto-local/internal/registry"
)

func TestLookupFindsInsertedEntry(t *testing.T) {
	r := registry.New()
	h := domaintypes.CryptoHandle{ID: "fp1", ProviderID: "software", Kind: domaintypes.HandlePublicKey}
	r.Insert(h, "software", "live-object")

	got, err := r.Lookup(h)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Object != "live-object" {
		t.Fatalf("got %v, want %v", got.Object, "live-object")
	}
}

func TestLookupMissingReturnsNotFound(t *testing.T) {
	r := registry.New()
	_, err := r.Lookup(domaintypes.CryptoHandle{ID: "nope"})
	if err == nil {
		t.Fatal("expected an error for a missing handle")
	}
	if err.Error() != "Cannot get CryptoItem by ID 'nope'" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestLookupTieBreaksOnFirstInsertedDuplicate(t *testing.T) {
	r := registry.New()
	h := domaintypes.CryptoHandle{ID: "dup", ProviderID: "software", Kind: domaintypes.HandleSecretKey}
	r.Insert(h, "software", "first")
	r.Insert(h, "software", "second")

	got, err := r.Lookup(h)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Object != "first" {
		t.Fatalf("got %v, want %v", got.Object, "first")
	}
}

func TestRemoveTombstonesEntrySoLookupMisses(t *testing.T) {
	r := registry.New()
	h := domaintypes.CryptoHandle{ID: "fp1", ProviderID: "software", Kind: domaintypes.HandlePublicKey}
	r.Insert(h, "software", "live-object")

	if err := r.Remove(h); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := r.Lookup(h); err == nil {
		t.Fatal("expected Lookup to miss after Remove")
	}
}

func TestRemoveUnknownHandleErrors(t *testing.T) {
	r := registry.New()
	if err := r.Remove(domaintypes.CryptoHandle{ID: "nope"}); err == nil {
		t.Fatal("expected an error removing a handle that was never inserted")
	}
}

func TestRemoveOnlyTombstonesFirstMatchingDuplicate(t *testing.T) {
	r := registry.New()
	h := domaintypes.CryptoHandle{ID: "dup", ProviderID: "software", Kind: domaintypes.HandleSecretKey}
	r.Insert(h, "software", "first")
	r.Insert(h, "software", "second")

	if err := r.Remove(h); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	got, err := r.Lookup(h)
	if err != nil {
		t.Fatalf("Lookup after removing the first duplicate: %v", err)
	}
	if got.Object != "second" {
		t.Fatalf("got %v, want %v", got.Object, "second")
	}
}

func TestRemoveTwiceOnSameHandleErrorsSecondTime(t *testing.T) {
	r := registry.New()
	h := domaintypes.CryptoHandle{ID: "fp2", ProviderID: "software", Kind: domaintypes.HandlePublicKey}
	r.Insert(h, "software", "live-object")

	if err := r.Remove(h); err != nil {
		t.Fatalf("first Remove: %v", err)
	}
	if err := r.Remove(h); err == nil {
		t.Fatal("expected a second Remove of an already-removed handle to error")
	}
}
