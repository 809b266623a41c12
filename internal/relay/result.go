package relay

// StepStatus is the outcome of one outbound call.
type StepStatus string

const (
	StepSkipped StepStatus = "skipped"
	StepSent    StepStatus = "sent"
	StepFailed  StepStatus = "failed"
)

// Result is produced once per request. Text and Audio record each step
// independently, so a delivered text with a failed upload is
// distinguishable from nothing being delivered.
type Result struct {
	Success   bool
	MessageID int
	Text      StepStatus
	Audio     StepStatus
	Err       error
}

// Partial reports that the text was delivered but the audio was not.
func (r Result) Partial() bool {
	return r.Text == StepSent && r.Audio != StepSent
}

func (r Result) fail(err error) Result {
	r.Success = false
	r.Err = err
	return r
}
