package main

// Exit codes.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, unknown category)
	ExitDataError   = 3 // Data error (malformed export, unresolved template field)
)
