package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/137.0.0.0 Safari/537.36 Edg/137.0.0.0"

type Config struct {
	AccountsPath    string
	DatabasePath    string
	UserAgent       string
	AutoCheckIn     bool
	TickMinutes     int
	RetryDelayedSec int
}

type Account struct {
	Name string `json:"account"`
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values")
	}

	ua := strings.TrimSpace(os.Getenv("RS_USER_AGENT"))
	if ua == "" {
		ua = defaultUserAgent
	}

	return Config{
		AccountsPath:    "configs/accounts.json",
		DatabasePath:    "data/risingstones.db",
		UserAgent:       ua,
		AutoCheckIn:     parseBoolWithDefault(os.Getenv("RS_AUTO_CHECKIN"), true),
		TickMinutes:     parseIntWithDefault(os.Getenv("RS_TICK_MINUTES"), 60),
		RetryDelayedSec: parseIntWithDefault(os.Getenv("RS_RETRY_DELAY_SECONDS"), 60),
	}
}

func parseIntWithDefault(value string, defaultVal int) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultVal
	}
	if v, err := strconv.Atoi(value); err == nil && v > 0 {
		return v
	}
	return defaultVal
}

func parseBoolWithDefault(value string, defaultVal bool) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return defaultVal
	}
	if v, err := strconv.ParseBool(value); err == nil {
		return v
	}
	return defaultVal
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.AccountsPath) == "" {
		return errors.New("accounts path is required")
	}
	return nil
}

// LoadAccounts accepts either a bare list of account names or a list of
// {"account": "..."} objects.
func (c Config) LoadAccounts() ([]Account, error) {
	b, err := os.ReadFile(c.AccountsPath)
	if err != nil {
		return nil, err
	}

	var rawAccounts []string
	if err := json.Unmarshal(b, &rawAccounts); err == nil {
		accounts := make([]Account, 0, len(rawAccounts))
		for idx, entry := range rawAccounts {
			name := strings.TrimSpace(entry)
			if name == "" {
				return nil, fmt.Errorf("invalid account input: empty account name at index %d", idx)
			}
			accounts = append(accounts, Account{Name: name})
		}
		return accounts, nil
	}

	var accounts []Account
	if err := json.Unmarshal(b, &accounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}

	for idx, acc := range accounts {
		if strings.TrimSpace(acc.Name) == "" {
			return nil, fmt.Errorf("invalid account input: empty account name at index %d", idx)
		}
	}
	return accounts, nil
}
