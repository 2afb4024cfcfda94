package rosterqueue

// ImportJob carries one uploaded roster file through River. The worker
// re-parses the bytes so the job row stays self-contained and retryable.
type ImportJob struct {
	EventID   string            `json:"event_id"`
	Filename  string            `json:"filename"`
	FileData  []byte            `json:"file_data"`
	Overrides map[string]string `json:"overrides,omitempty"`
}

// Kind returns the job type identifier for River
func (ImportJob) Kind() string { return "roster_import" }

// JobInfo represents information about a queued import job (for debugging/monitoring)
type JobInfo struct {
	ID          int64  `json:"id"`
	Kind        string `json:"kind"`
	EventID     string `json:"event_id"`
	State       string `json:"state"`
	CreatedAt   string `json:"created_at"`
	Attempt     int    `json:"attempt"`
	MaxAttempts int    `json:"max_attempts"`
}
