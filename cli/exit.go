package cli

import "fmt"

// Exit codes of the commands.
const (
	exitRuntime  = 1
	exitInput    = 2
	exitNotFound = 3
)

// ExitError is an error that carries a specific process exit code.
// RunE returns it to signal the exit code to main.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func exitError(code int, format string, args ...any) *ExitError {
	return &ExitError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
