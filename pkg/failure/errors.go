package failure

type Severity int

// scheduler control flow
const (
	SeverityFatal Severity = iota
	SeverityRecoverable
)

// ClassifiedError is the error contract shared by every pipeline stage.
// Stages classify what went wrong; only the scheduler decides what happens next.
type ClassifiedError interface {
	error
	Severity() Severity
}
