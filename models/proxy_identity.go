package models

import "time"

// ProxyIdentity is one outbound network identity from the upstream provider.
// The pool lives in memory inside the proxy manager; the provider API is the
// system of record.
type ProxyIdentity struct {
	ID                  string    `json:"id"`
	Endpoint            string    `json:"endpoint"` // host:port
	Username            string    `json:"username"`
	Password            string    `json:"password"`
	Country             string    `json:"country"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	TotalAttempts       int       `json:"total_attempts"`
	SuccessfulAttempts  int       `json:"successful_attempts"`
	LastUsedAt          time.Time `json:"last_used_at"`
}

// Exhausted reports whether the identity has failed too many times in a row.
func (p *ProxyIdentity) Exhausted(threshold int) bool {
	return p.ConsecutiveFailures >= threshold
}
