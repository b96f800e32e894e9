package domain

import "time"

// IngestStats holds statistics about one category ingestion run.
type IngestStats struct {
	Category    string
	Pages       int
	FailedPages int
	Fetched     int
	Added       int
	Merged      int
	Duplicates  int
	Malformed   int
	Errors      int
	Duration    time.Duration
}

// Written is the number of records whose category membership changed.
func (s *IngestStats) Written() int {
	return s.Added + s.Merged
}
