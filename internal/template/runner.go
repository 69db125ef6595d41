package template

import (
	"os"
	"os/exec"
)

// Runner executes a shell command line, optionally in a working
// directory.
type Runner interface {
	Run(command, workdir string) error
}

// ShellRunner executes commands through the system shell with output
// attached to the current process.
type ShellRunner struct{}

// Run executes command via "sh -c" in workdir (or the current
// directory when empty) and waits for it to finish.
func (ShellRunner) Run(command, workdir string) error {
	cmd := exec.Command("sh", "-c", command)
	cmd.Dir = workdir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
