package domain

// Status identifies one processor execution outcome.
type Status string

const (
	// StatusSuccess means the processor applied the command's effect.
	StatusSuccess Status = "success"
	// StatusNoAction means nothing needed to happen: the target was missing
	// or the operation did not apply. It is a legitimate outcome, not an
	// error, and must stay distinguishable from StatusFailed.
	StatusNoAction Status = "no_action"
	// StatusFailed means the processor ran and could not apply the command.
	StatusFailed Status = "failed"
	// StatusRetry means the processor wants the command attempted again.
	StatusRetry Status = "retry"
)

// Result is the immutable outcome of one processor execution.
type Result struct {
	Status Status
	Data   string
}

// Succeeded constructs a success result carrying optional result data.
func Succeeded(data string) Result {
	return Result{Status: StatusSuccess, Data: data}
}

// NoAction constructs the nothing-needed-to-happen result.
func NoAction() Result {
	return Result{Status: StatusNoAction}
}

// Failed constructs a failed result carrying an operator-facing detail.
func Failed(data string) Result {
	return Result{Status: StatusFailed, Data: data}
}
