package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
)

func TestSecret_Masking(t *testing.T) {
	s := Secret("s3cr3t-value")

	if s.String() != "********" {
		t.Errorf("String() = %q, want masked", s.String())
	}
	if got := fmt.Sprintf("%v %s %#v", s, s, s); strings.Contains(got, "s3cr3t-value") {
		t.Errorf("formatted output leaks plaintext: %q", got)
	}
	if s.Reveal() != "s3cr3t-value" {
		t.Errorf("Reveal() = %q", s.Reveal())
	}
}

func TestSecret_Empty(t *testing.T) {
	var s Secret

	if s.IsSet() {
		t.Error("zero Secret should not be set")
	}
	if s.String() != "" {
		t.Errorf("empty secret should render empty, got %q", s.String())
	}
}

func TestSecret_MarshalJSON(t *testing.T) {
	payload := struct {
		Name   string `json:"name"`
		Secret Secret `json:"secret"`
	}{Name: "flow", Secret: "super-secret"}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(data), "super-secret") {
		t.Errorf("JSON output leaks plaintext: %s", data)
	}
	if !strings.Contains(string(data), "********") {
		t.Errorf("JSON output should carry the mask: %s", data)
	}
}

func TestSecret_UnmarshalJSON(t *testing.T) {
	var s Secret
	if err := json.Unmarshal([]byte(`"incoming"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Reveal() != "incoming" {
		t.Errorf("Reveal() = %q, want incoming", s.Reveal())
	}
}

func TestSecret_LogValue(t *testing.T) {
	s := Secret("do-not-log")
	if got := s.LogValue().String(); got != "********" {
		t.Errorf("LogValue() = %q, want masked", got)
	}
}
