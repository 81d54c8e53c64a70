package domain

import (
	"encoding/json"
	"log/slog"
)

// maskedValue is what a non-empty Secret renders as everywhere except Reveal.
const maskedValue = "********"

// Secret is a string that masks itself when printed, marshalled or logged.
// The plaintext is only reachable through Reveal, which keeps client secrets
// out of log lines and JSON responses by construction.
type Secret string

// Reveal returns the plaintext value.
func (s Secret) Reveal() string {
	return string(s)
}

// IsSet reports whether the secret holds a value.
func (s Secret) IsSet() bool {
	return s != ""
}

// String implements fmt.Stringer and always masks the value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return maskedValue
}

// GoString masks the value in %#v output as well.
func (s Secret) GoString() string {
	return s.String()
}

// MarshalJSON serialises the masked form, never the plaintext.
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts a plain string value.
func (s *Secret) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = Secret(v)
	return nil
}

// LogValue implements slog.LogValuer so structured logs carry the mask.
func (s Secret) LogValue() slog.Value {
	return slog.StringValue(s.String())
}
