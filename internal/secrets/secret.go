// Package secrets provides just-in-time resolution of the opaque values relay
// needs at runtime: registry credentials, the notification webhook URL, and
// the platform access token. Values are fetched only at the step that uses
// them and zeroed afterwards; they are never logged and never persisted past
// a single pipeline run.
package secrets

// Secret holds a resolved secret value. The value should never be logged.
type Secret struct {
	// Value contains the secret data as bytes.
	Value []byte
}

// String returns the secret value as a string copy.
func (s *Secret) String() string {
	if s == nil || s.Value == nil {
		return ""
	}
	return string(s.Value)
}

// Bytes returns a copy of the secret value so callers cannot mutate the
// original backing slice.
func (s *Secret) Bytes() []byte {
	if s == nil || s.Value == nil {
		return nil
	}
	out := make([]byte, len(s.Value))
	copy(out, s.Value)
	return out
}

// Clear zeros the secret value in memory. Safe to call more than once.
func (s *Secret) Clear() {
	if s == nil || s.Value == nil {
		return
	}
	for i := range s.Value {
		s.Value[i] = 0
	}
	s.Value = nil
}
