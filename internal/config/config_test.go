package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeAccountsFile(t *testing.T, content string) Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write accounts file: %v", err)
	}
	return Config{AccountsPath: path}
}

func TestLoadAccountsBareStrings(t *testing.T) {
	cfg := writeAccountsFile(t, `["alice", "bob"]`)

	accounts, err := cfg.LoadAccounts()
	if err != nil {
		t.Fatalf("LoadAccounts: %v", err)
	}
	if len(accounts) != 2 || accounts[0].Name != "alice" || accounts[1].Name != "bob" {
		t.Errorf("accounts = %v", accounts)
	}
}

func TestLoadAccountsObjects(t *testing.T) {
	cfg := writeAccountsFile(t, `[{"account": "alice"}, {"account": "bob"}]`)

	accounts, err := cfg.LoadAccounts()
	if err != nil {
		t.Fatalf("LoadAccounts: %v", err)
	}
	if len(accounts) != 2 || accounts[0].Name != "alice" || accounts[1].Name != "bob" {
		t.Errorf("accounts = %v", accounts)
	}
}

func TestLoadAccountsRejectsEmptyName(t *testing.T) {
	for _, content := range []string{`["alice", " "]`, `[{"account": ""}]`} {
		cfg := writeAccountsFile(t, content)
		_, err := cfg.LoadAccounts()
		if err == nil {
			t.Fatalf("expected error for %s", content)
		}
		if !strings.Contains(err.Error(), "invalid account input") {
			t.Errorf("error %q must carry the fatal marker", err)
		}
	}
}

func TestLoadAccountsMissingFile(t *testing.T) {
	cfg := Config{AccountsPath: filepath.Join(t.TempDir(), "absent.json")}
	if _, err := cfg.LoadAccounts(); err == nil {
		t.Fatal("expected error for a missing accounts file")
	}
}

func TestValidate(t *testing.T) {
	if err := (Config{AccountsPath: "configs/accounts.json"}).Validate(); err != nil {
		t.Errorf("valid config rejected: %v", err)
	}
	if err := (Config{}).Validate(); err == nil {
		t.Error("empty accounts path must be rejected")
	}
}

func TestParseHelpers(t *testing.T) {
	if got := parseIntWithDefault("", 60); got != 60 {
		t.Errorf("empty int = %d, want default", got)
	}
	if got := parseIntWithDefault("15", 60); got != 15 {
		t.Errorf("parsed int = %d, want 15", got)
	}
	if got := parseIntWithDefault("-3", 60); got != 60 {
		t.Errorf("non-positive int = %d, want default", got)
	}
	if got := parseBoolWithDefault("false", true); got {
		t.Error("explicit false ignored")
	}
	if got := parseBoolWithDefault("garbage", true); !got {
		t.Error("unparsable bool must fall back to default")
	}
}

func TestServiceURLs(t *testing.T) {
	svc := RisingStones
	if svc.LandingURL() != "https://ff14risingstones.web.sdo.com/pc/index.html" {
		t.Errorf("LandingURL = %q", svc.LandingURL())
	}
	want := "https://apiff14risingstones.web.sdo.com/api/home/GHome/login?redirectUrl=https://ff14risingstones.web.sdo.com/pc/index.html"
	if svc.LoginExchangeURL() != want {
		t.Errorf("LoginExchangeURL = %q, want %q", svc.LoginExchangeURL(), want)
	}
}
