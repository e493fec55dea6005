package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// runPandoc converts input between pandoc formats. Output goes to stdout, which pandoc
// only allows for binary writers when -o - is given.
func runPandoc(ctx context.Context, from, to string, input []byte, extra ...string) ([]byte, error) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		return nil, fmt.Errorf("%w: pandoc not installed", ErrPandocMissing)
	}

	ctx, cancel := context.WithTimeout(ctx, renderTimeout)
	defer cancel()

	args := append([]string{"-f", from, "-t", to, "--standalone"}, extra...)
	args = append(args, "-o", "-")
	cmd := exec.CommandContext(ctx, "pandoc", args...)
	cmd.Stdin = bytes.NewReader(input)

	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("pandoc failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, fmt.Errorf("pandoc execution failed: %w", err)
	}
	return output, nil
}
