// Package wire defines the messages and subjects exchanged between the
// primegrid services.
package wire

// NATS subjects used by the pipeline.
const (
	SubjectNextJob          = "primegrid.jobs.next"
	SubjectSubmitResult     = "primegrid.results.submit"
	SubjectRegisterWorker   = "primegrid.workers.register"
	SubjectDeregisterWorker = "primegrid.workers.deregister"
)

// Job describes one segment of the data file to be crunched.
type Job struct {
	ID     string `json:"id"`
	Path   string `json:"path"`
	Start  int64  `json:"start"`
	Length int64  `json:"length"`
	// Done marks the drained sentinel: no more jobs will be issued.
	Done bool `json:"done"`
}

// Result carries a worker's prime count for one job.
type Result struct {
	JobID      string `json:"job_id"`
	WorkerID   string `json:"worker_id"`
	Path       string `json:"path"`
	Start      int64  `json:"start"`
	Length     int64  `json:"length"`
	PrimeCount int64  `json:"prime_count"`
}
