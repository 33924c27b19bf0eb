// Package exitcodes contains the constants representing the possible
// camoufox-server exit error codes. The automation server's own exit code is
// propagated unchanged and can be anything.
package exitcodes

// ExitCode is just a type representing a process exit code.
type ExitCode uint8

// list of exit codes used by camoufox-server
const (
	ServerNotStarted ExitCode = 103
	InvalidConfig    ExitCode = 104
	ExternalAbort    ExitCode = 105
	GoPanic          ExitCode = 109
)
