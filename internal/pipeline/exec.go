package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// ExecStage runs an external command as a pipeline stage, preserving the
// subprocess isolation model: the query is appended as the single positional
// argument, stdout and stderr are captured, and a non-zero exit fails the
// run.
type ExecStage struct {
	name    string
	command string
	args    []string
	timeout time.Duration
}

// NewExecStage creates a stage around a command line. The line is split on
// whitespace; the first field is the executable.
func NewExecStage(name, commandLine string, timeout time.Duration) (*ExecStage, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command for stage %q", name)
	}

	return &ExecStage{
		name:    name,
		command: fields[0],
		args:    fields[1:],
		timeout: timeout,
	}, nil
}

func (s *ExecStage) Name() string           { return s.name }
func (s *ExecStage) Timeout() time.Duration { return s.timeout }

func (s *ExecStage) Command() string {
	if len(s.args) == 0 {
		return s.command
	}
	return s.command + " " + strings.Join(s.args, " ")
}

func (s *ExecStage) Run(ctx context.Context, query string, stdout, stderr io.Writer) error {
	args := s.args
	if strings.TrimSpace(query) != "" {
		args = append(append([]string{}, s.args...), query)
	}

	cmd := exec.CommandContext(ctx, s.command, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	// The kill from a deadline surfaces as a plain exit error; report the
	// timeout instead so the coordinator classifies it correctly.
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("exit code %d", exitErr.ExitCode())
	}
	return fmt.Errorf("launch: %w", err)
}
