package whisperx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// maxErrorLines bounds how much tool output is carried in an error.
const maxErrorLines = 12

// Runner executes an external command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	// torch >= 2.6 loads checkpoints with weights_only=true, which the
	// pyannote and WhisperX checkpoints do not support.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	return cmd.CombinedOutput()
}

func (s *Service) exec(ctx context.Context, name string, args ...string) error {
	output, err := s.run(ctx, name, args...)
	if err == nil {
		return nil
	}
	if tail := outputTail(output); tail != "" {
		return fmt.Errorf("%s: %w: %s", name, err, tail)
	}
	return fmt.Errorf("%s: %w", name, err)
}

// outputTail keeps the last few non-empty lines; Python tracebacks put the
// useful part at the end.
func outputTail(output []byte) string {
	var lines []string
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) > maxErrorLines {
		lines = lines[len(lines)-maxErrorLines:]
	}
	return strings.Join(lines, " | ")
}
