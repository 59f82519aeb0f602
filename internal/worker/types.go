package worker

// JobResult is the per-job outcome of one batch invocation. Skipped marks a
// job claimed by a concurrent invocation between fetch and claim; it is
// neither a success nor a failure of this invocation.
type JobResult struct {
	JobID   string `json:"jobId"`
	Success bool   `json:"success"`
	Skipped bool   `json:"skipped,omitempty"`
	Outputs int    `json:"outputs"`
	Error   string `json:"error,omitempty"`
}

// BatchResult aggregates one batch invocation. Processed always equals
// Succeeded + Failed; skipped jobs are reported separately so claim races
// between overlapping invocations do not inflate the failure count.
type BatchResult struct {
	Processed int         `json:"processed"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Results   []JobResult `json:"results"`
}
