package store

// Record is a persisted audit entry.
type Record struct {
	RunID     string
	Seq       int
	Label     string
	Content   string
	CreatedAt string
}

// RunSummary describes one recorded run.
type RunSummary struct {
	RunID     string
	Entries   int
	StartedAt string
}
