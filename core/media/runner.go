package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

// Runner executes an external binary with an explicit argument list.
// Commands are never passed through a shell. The seam exists so the
// ffmpeg/ffprobe boundary can be faked in tests.
type Runner interface {
	Run(ctx context.Context, bin string, args []string) ([]byte, error)
}

// ExecRunner runs commands as blocking child processes.
type ExecRunner struct{}

// Run executes bin with args and returns stdout. On a non-zero exit the
// error carries both stdout and stderr, since ffmpeg writes its
// diagnostics to stderr and ffprobe to either.
func (ExecRunner) Run(ctx context.Context, bin string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w\n%s\n%s", bin, err, out.String(), stderr.String())
	}
	return out.Bytes(), nil
}
