package domain

import "time"

// Session is the persisted record of one calculator session: the last
// submitted values plus the mode flag that says which of them are live.
type Session struct {
	ID        string    `json:"id"`
	UseSums   bool      `json:"use_sums"`
	Inputs    InputSet  `json:"inputs"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted inputs when the record went through an
	// encrypting store. Inputs is blank in that case.
	Sealed string `json:"sealed,omitempty"`
}

// NewSession creates a record initialized from the configured defaults.
func NewSession(id string, useSums bool, settings Settings) *Session {
	return &Session{
		ID:        id,
		UseSums:   useSums,
		Inputs:    settings.Defaults(),
		UpdatedAt: time.Now().UTC(),
	}
}

// Mode returns the mode selected by UseSums.
func (s *Session) Mode() Mode {
	return ModeOf(s.UseSums)
}

// Snapshot returns a copy so callers cannot mutate a stored record.
func (s *Session) Snapshot() *Session {
	cp := *s
	return &cp
}
