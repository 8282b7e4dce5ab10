package service

import "time"

// utcNow is the default clock. Times are truncated to the microsecond so that
// values read back from the database compare equal to the ones written.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
