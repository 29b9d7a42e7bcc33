package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "offers.yaml")
	body := `
server:
  port: 9000
offers:
  - slug: aptos-zero
    network: devnet
  - slug: launch-week
    network: testnet
    module_address_env: LAUNCH_MODULE
    signing_key_env: LAUNCH_KEY
    disabled: true
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Fatalf("expected port 9000, got %d", cfg.Server.Port)
	}
	if len(cfg.Offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(cfg.Offers))
	}
	if cfg.Offers[0].ModuleAddressEnv != "OFFER_APTOS_ZERO_MODULE_ADDRESS" {
		t.Fatalf("unexpected default env name %s", cfg.Offers[0].ModuleAddressEnv)
	}
	if cfg.Offers[1].ModuleAddressEnv != "LAUNCH_MODULE" {
		t.Fatalf("explicit env name not kept: %s", cfg.Offers[1].ModuleAddressEnv)
	}
}

func TestLoadRejectsUnknownNetwork(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "offers.yaml")
	body := `
offers:
  - slug: aptos-zero
    network: moonbase
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected unknown network error")
	}
}

func TestLoadRejectsDuplicateSlug(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "offers.yaml")
	body := `
offers:
  - slug: aptos-zero
    network: devnet
  - slug: aptos-zero
    network: testnet
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatalf("expected duplicate slug error")
	}
}

func TestResolveOffers(t *testing.T) {
	t.Setenv("OFFER_APTOS_ZERO_MODULE_ADDRESS", "0xabc")
	t.Setenv("OFFER_APTOS_ZERO_SIGNING_KEY", "sekrit")

	cfg := Default()
	records, err := cfg.ResolveOffers()
	if err != nil {
		t.Fatalf("resolve offers: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Slug != "aptos-zero" || rec.ModuleAddress != "0xabc" || rec.SigningKey != "sekrit" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.Enabled {
		t.Fatalf("expected offer enabled by default")
	}
}

func TestServerAddrOverride(t *testing.T) {
	t.Setenv("OFFER_SERVICE_ADDR", "[::1]:9100")

	cfg := Default()
	cfg.applyEnvOverrides()
	if cfg.Server.Host != "::1" || cfg.Server.Port != 9100 {
		t.Fatalf("ipv6 addr override not applied: %s:%d", cfg.Server.Host, cfg.Server.Port)
	}

	t.Setenv("OFFER_SERVICE_ADDR", ":8085")
	cfg = Default()
	cfg.applyEnvOverrides()
	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8085 {
		t.Fatalf("port-only override not applied: %s:%d", cfg.Server.Host, cfg.Server.Port)
	}
}

func TestResolveOffersMissingModuleAddress(t *testing.T) {
	t.Setenv("OFFER_APTOS_ZERO_MODULE_ADDRESS", "")

	cfg := Default()
	if _, err := cfg.ResolveOffers(); err == nil {
		t.Fatalf("expected missing module address error")
	}
}
