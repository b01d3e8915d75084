package utils

import (
	"testing"
	"time"
)

func TestGetJSONFromJSONP(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"simple wrapper", `cb({"a":1})`, `{"a":1}`},
		{"long callback name", `checkAccountType_JSONPMethod({"return_code":0})`, `{"return_code":0}`},
		{"nested parens in payload", `cb({"msg":"(ok)"})`, `{"msg":"(ok)"}`},
		{"no wrapper", `not-wrapped`, ""},
		{"plain json", `{"a":1}`, ""},
		{"empty input", "", ""},
		{"missing closing paren", `cb({"a":1}`, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GetJSONFromJSONP(tc.input); got != tc.want {
				t.Errorf("GetJSONFromJSONP(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestNewTempSUIDIsUnique(t *testing.T) {
	a := NewTempSUID()
	b := NewTempSUID()
	if a == "" || b == "" {
		t.Fatal("expected non-empty tokens")
	}
	if a == b {
		t.Errorf("expected distinct tokens, got %q twice", a)
	}
}

func TestRandomDuration(t *testing.T) {
	min := 1 * time.Second
	max := 3 * time.Second
	for i := 0; i < 100; i++ {
		d := RandomDuration(min, max)
		if d < min || d >= max {
			t.Fatalf("RandomDuration(%v, %v) = %v, out of range", min, max, d)
		}
	}

	if d := RandomDuration(max, min); d != max {
		t.Errorf("empty range should return min, got %v", d)
	}
	if d := RandomDuration(min, min); d != min {
		t.Errorf("zero-width range should return min, got %v", d)
	}
}

func TestTruncateForLog(t *testing.T) {
	if got := TruncateForLog("abcdef", 3); got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
	if got := TruncateForLog("abc", 10); got != "abc" {
		t.Errorf("got %q, want %q", got, "abc")
	}
	if got := TruncateForLog("abc", 0); got != "abc" {
		t.Errorf("length 0 should be a no-op, got %q", got)
	}
}
