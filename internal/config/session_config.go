package config

import "time"

type SessionConfig interface {
	GetSessionDuration() time.Duration
	GetInactivityLimit() time.Duration
	GetWarningBefore() time.Duration
	GetCheckInterval() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

// GetSessionDuration is the absolute validity window stamped at login.
func (Session) GetSessionDuration() time.Duration {
	return durationEnv("SESSION_DURATION", 8*time.Hour)
}

// GetInactivityLimit is the rolling inactivity window; independent of the
// absolute session duration.
func (Session) GetInactivityLimit() time.Duration {
	return durationEnv("INACTIVITY_LIMIT", 30*time.Minute)
}

// GetWarningBefore is how long before an inactivity timeout the warning
// fires.
func (Session) GetWarningBefore() time.Duration {
	return durationEnv("WARNING_BEFORE", 5*time.Minute)
}

// GetCheckInterval is how often the periodic timeout check runs.
func (Session) GetCheckInterval() time.Duration {
	return durationEnv("CHECK_INTERVAL", time.Minute)
}

func durationEnv(envVar string, defaultValue time.Duration) time.Duration {
	value := GetEnv(envVar, "")
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
