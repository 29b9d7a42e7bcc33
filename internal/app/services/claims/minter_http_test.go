package claims

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aptos-community/offer-service/internal/app/domain/claim"
	"github.com/aptos-community/offer-service/internal/app/domain/offer"
)

func TestHTTPMinter(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer submit-key" {
			t.Fatalf("unexpected authorization header: %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"tx_hash": "0xfeed"}`))
	}))
	defer server.Close()

	minter, err := NewHTTPMinter(server.Client(), server.URL, "submit-key", nil)
	if err != nil {
		t.Fatalf("new minter: %v", err)
	}

	rec := offer.Record{
		Slug:          "aptos-zero",
		Network:       offer.NetworkDevnet,
		ModuleAddress: "0x4ef",
		SigningKey:    "issuer-key",
		Enabled:       true,
	}
	txHash, err := minter.Mint(context.Background(), rec, "0xabc")
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if txHash != "0xfeed" {
		t.Fatalf("unexpected tx hash: %s", txHash)
	}
	if received["offer_slug"] != "aptos-zero" || received["signing_key"] != "issuer-key" || received["recipient"] != "0xabc" {
		t.Fatalf("unexpected mint payload: %v", received)
	}
}

func TestHTTPMinterErrors(t *testing.T) {
	if _, err := NewHTTPMinter(nil, "", "", nil); err == nil {
		t.Fatalf("expected error for empty endpoint")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "insufficient funds"}`))
	}))
	defer server.Close()

	minter, err := NewHTTPMinter(server.Client(), server.URL, "", nil)
	if err != nil {
		t.Fatalf("new minter: %v", err)
	}
	if _, err := minter.Mint(context.Background(), offer.Record{Slug: "aptos-zero"}, "0xabc"); err == nil {
		t.Fatalf("expected submitter rejection error")
	}

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer failing.Close()

	minter, err = NewHTTPMinter(failing.Client(), failing.URL, "", nil)
	if err != nil {
		t.Fatalf("new minter: %v", err)
	}
	if _, err := minter.Mint(context.Background(), offer.Record{Slug: "aptos-zero"}, "0xabc"); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestHTTPConfirmationResolver(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if got := r.URL.Query().Get("claim_id"); got != "claim-1" {
			t.Fatalf("unexpected claim_id: %q", got)
		}
		switch calls {
		case 1:
			w.Write([]byte(`{"done": false, "retry_after_seconds": 0.1}`))
		case 2:
			w.Write([]byte(`{"done": true, "success": true}`))
		default:
			t.Fatalf("unexpected call count: %d", calls)
		}
	}))
	defer server.Close()

	resolver, err := NewHTTPConfirmationResolver(server.Client(), server.URL, "", nil)
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}

	c := claim.Claim{ID: "claim-1", TxHash: "0xfeed", Status: claim.StatusSubmitted}

	done, success, message, retry, err := resolver.Resolve(context.Background(), c)
	if err != nil || done || success || message != "" || retry <= 0 {
		t.Fatalf("unexpected first resolve: done=%v success=%v message=%q err=%v retry=%v", done, success, message, err, retry)
	}

	time.Sleep(50 * time.Millisecond)

	done, success, message, _, err = resolver.Resolve(context.Background(), c)
	if err != nil || !done || !success || message != "" {
		t.Fatalf("unexpected second resolve: done=%v success=%v message=%q err=%v", done, success, message, err)
	}
}
