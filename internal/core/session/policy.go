// Package session holds the idle-timeout session lifecycle shared by the
// API (server-side enforcement) and the terminal client (the client-held
// session belief with warning countdown and auto-logout).
package session

import (
	"fmt"
	"time"
)

const (
	DefaultTimeout       = 5 * time.Minute
	DefaultWarningWindow = time.Minute
)

// DefaultPolicy expires a session after five idle minutes and warns during
// the last minute.
var DefaultPolicy = Policy{Timeout: DefaultTimeout, WarningWindow: DefaultWarningWindow}

// Policy is the idle-timeout rule. Both the warning point and the expiry are
// measured from the same reference point, the last activity.
type Policy struct {
	Timeout       time.Duration
	WarningWindow time.Duration
}

// Validate requires 0 <= WarningWindow < Timeout so the warning always comes
// before expiry.
func (p Policy) Validate() error {
	if p.Timeout <= 0 {
		return fmt.Errorf("session: timeout must be positive, got %s", p.Timeout)
	}
	if p.WarningWindow < 0 || p.WarningWindow >= p.Timeout {
		return fmt.Errorf("session: warning window %s must be in [0, %s)", p.WarningWindow, p.Timeout)
	}
	return nil
}

// WarnAfter is the idle time at which the warning is raised.
func (p Policy) WarnAfter() time.Duration {
	return p.Timeout - p.WarningWindow
}

// WarningAt is the instant the warning is due for a given last activity.
func (p Policy) WarningAt(last time.Time) time.Time {
	return last.Add(p.WarnAfter())
}

// ExpiresAt is the instant the session expires for a given last activity.
func (p Policy) ExpiresAt(last time.Time) time.Time {
	return last.Add(p.Timeout)
}

// Expired reports whether the idle time strictly exceeds the timeout.
func (p Policy) Expired(last, now time.Time) bool {
	return now.Sub(last) > p.Timeout
}

// InWarning reports whether now falls inside the warning window.
func (p Policy) InWarning(last, now time.Time) bool {
	return !now.Before(p.WarningAt(last)) && !p.Expired(last, now)
}

// Remaining is the time left before expiry, never negative.
func (p Policy) Remaining(last, now time.Time) time.Duration {
	if d := p.ExpiresAt(last).Sub(now); d > 0 {
		return d
	}
	return 0
}
