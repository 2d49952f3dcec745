package models

import (
	"fmt"
	"time"
)

/**
 * InstallError reports a failed layering step
 * @description
 * - Fatal to the whole bootstrap: no partial-success continuation
 * - Surfaced as a non-zero exit code by the CLI
 */
type InstallError struct {
	Step string
	Err  error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("layer '%s' failed: %v", e.Step, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

/**
 * ServiceTimeout reports that the database did not become ready in time
 * @description
 * - Fatal to the dependent operation, surfaced to the caller
 * - Never retried automatically: a failed service requires a restart
 */
type ServiceTimeout struct {
	Service string
	Timeout time.Duration
}

func (e *ServiceTimeout) Error() string {
	return fmt.Sprintf("service '%s' not ready after %v", e.Service, e.Timeout)
}

/**
 * CommandError carries a user command's non-zero exit code
 * @description
 * - Not a bootstrap failure: the code is passed through unchanged
 * - Signal-terminated children are reported as 128+signal
 */
type CommandError struct {
	ExitCode int
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.ExitCode)
}
