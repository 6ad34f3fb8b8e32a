package bridge

import (
	"os/exec"

	"github.com/widdle/reader"
)

// ProcessLauncher cold-starts the application binary so it can pick
// up a relayed command. It implements reader.Launcher.
type ProcessLauncher struct {
	// Path is the application executable.
	Path string

	// Args are prepended before the command flag.
	Args []string
}

// Launch starts the application process with the serialized command
// on its command line. The process is not waited on; once started it
// reads the mailbox on its own.
func (l *ProcessLauncher) Launch(cmd reader.PlaybackCommand) error {
	data, err := cmd.MarshalBinary()
	if err != nil {
		return err
	}

	args := append(append([]string(nil), l.Args...), "--handle-command", string(data))
	proc := exec.Command(l.Path, args...)

	if err := proc.Start(); err != nil {
		return err
	}

	// Reap the child in the background to avoid zombies.
	go proc.Wait()

	return nil
}
