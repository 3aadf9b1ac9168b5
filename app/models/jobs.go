package models

// IngestJob is one queued unit of work: ingest a selection for an identity
// and append the result to the sink.
type IngestJob struct {
	JobID     string    `json:"job_id"`
	Identity  string    `json:"identity"`
	Selection Selection `json:"selection"`
}
