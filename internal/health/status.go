// Package health records the outcome of the latest bot token probe for
// the /healthz endpoint.
package health

import (
	"sync"
	"time"
)

// Report is a point-in-time view of the relay's health.
type Report struct {
	Status         string    `json:"status"`
	CredentialsSet bool      `json:"credentialsSet"`
	ProbeEnabled   bool      `json:"probeEnabled"`
	LastProbe      time.Time `json:"lastProbe,omitzero"`
	BotUsername    string    `json:"botUsername,omitempty"`
	ProbeError     string    `json:"probeError,omitempty"`
}

// Status values reported by Snapshot.
const (
	StatusOK       = "ok"
	StatusDegraded = "degraded"
)

// Status is safe for concurrent use.
type Status struct {
	credentialsSet bool
	probeEnabled   bool
	now            func() time.Time

	mu          sync.Mutex
	lastProbe   time.Time
	botUsername string
	probeErr    error
}

// NewStatus creates a Status. credentialsSet and probeEnabled are fixed
// for the life of the process.
func NewStatus(credentialsSet, probeEnabled bool) *Status {
	return &Status{
		credentialsSet: credentialsSet,
		probeEnabled:   probeEnabled,
		now:            time.Now,
	}
}

// RecordProbe stores the result of a probe.
func (s *Status) RecordProbe(botUsername string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastProbe = s.now()
	s.probeErr = err
	if err == nil {
		s.botUsername = botUsername
	}
}

// Snapshot returns the current report. The relay is degraded when
// credentials are missing or the latest probe failed.
func (s *Status) Snapshot() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := Report{
		Status:         StatusOK,
		CredentialsSet: s.credentialsSet,
		ProbeEnabled:   s.probeEnabled,
		LastProbe:      s.lastProbe,
		BotUsername:    s.botUsername,
	}
	if s.probeErr != nil {
		r.ProbeError = s.probeErr.Error()
	}
	if !s.credentialsSet || s.probeErr != nil {
		r.Status = StatusDegraded
	}
	return r
}
