package registry

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/aptos-community/offer-service/internal/app/domain/offer"
)

func testRecords() []offer.Record {
	return []offer.Record{
		{
			Slug:          "aptos-zero",
			Network:       offer.NetworkDevnet,
			ModuleAddress: "0x4ef",
			SigningKey:    "issuer-key",
			Enabled:       true,
		},
		{
			Slug:          "launch-week",
			Network:       offer.NetworkTestnet,
			ModuleAddress: "0xbeef",
			Enabled:       true,
		},
	}
}

func TestResolveKnownSlug(t *testing.T) {
	reg := New(testRecords())

	rec, err := reg.Resolve("aptos-zero")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rec.Slug != "aptos-zero" {
		t.Fatalf("expected slug aptos-zero, got %s", rec.Slug)
	}
	if rec.Network != offer.NetworkDevnet {
		t.Fatalf("expected devnet, got %s", rec.Network)
	}
	if rec.ModuleAddress != "0x4ef" || rec.SigningKey != "issuer-key" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestResolveUnknownSlug(t *testing.T) {
	reg := New(testRecords())

	if _, err := reg.Resolve("does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveIdempotent(t *testing.T) {
	reg := New(testRecords())

	first, err := reg.Resolve("aptos-zero")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := reg.Resolve("aptos-zero")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolve not idempotent: %+v vs %+v", first, second)
	}
}

func TestSlugsStableOrder(t *testing.T) {
	reg := New(testRecords())

	slugs := reg.Slugs()
	if len(slugs) != 2 || slugs[0] != "aptos-zero" || slugs[1] != "launch-week" {
		t.Fatalf("unexpected slugs: %v", slugs)
	}
}

func TestSetEnabled(t *testing.T) {
	reg := New(testRecords())

	rec, err := reg.SetEnabled("aptos-zero", false)
	if err != nil {
		t.Fatalf("set enabled: %v", err)
	}
	if rec.Enabled {
		t.Fatalf("expected offer disabled")
	}

	rec, err = reg.Resolve("aptos-zero")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if rec.Enabled {
		t.Fatalf("disable not visible through resolve")
	}

	if _, err := reg.SetEnabled("does-not-exist", true); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSigningKeyNeverSerialized(t *testing.T) {
	reg := New(testRecords())

	rec, err := reg.Resolve("aptos-zero")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	buf, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(buf), "issuer-key") {
		t.Fatalf("signing key leaked into JSON: %s", buf)
	}
	if strings.Contains(rec.String(), "issuer-key") {
		t.Fatalf("signing key leaked into String: %s", rec.String())
	}
}
