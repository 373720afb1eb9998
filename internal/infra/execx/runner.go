package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/juju/errors"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnavailable reports that the program could not be located or started.
const ErrUnavailable = errors.ConstError("command unavailable")

const DefaultTimeout = 30 * time.Second

// Result is the outcome of one external program invocation. A non-zero
// ExitCode is not an error; Err is set only when the program could not be
// run to completion.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (r Result) OK() bool { return r.Err == nil && r.ExitCode == 0 }

// Unavailable reports whether the program itself could not be executed.
func (r Result) Unavailable() bool { return errors.Is(r.Err, ErrUnavailable) }

type Runner interface {
	Run(ctx context.Context, name string, args ...string) Result
}

type ExecRunner struct {
	Timeout time.Duration
}

var (
	lookPath       = exec.LookPath
	commandContext = exec.CommandContext
)

func NewRunner(timeout time.Duration) ExecRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return ExecRunner{Timeout: timeout}
}

func (r ExecRunner) Run(ctx context.Context, name string, args ...string) Result {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	path, err := lookPath(name)
	if err != nil {
		return Result{ExitCode: -1, Err: fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)}
	}

	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := commandContext(cmdCtx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	configure(cmd)

	runErr := cmd.Run()
	res := Result{
		Stdout: decodeOutput(stdout.Bytes()),
		Stderr: decodeOutput(stderr.Bytes()),
	}

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) {
		res.ExitCode = -1
		res.Err = fmt.Errorf("%s timed out after %s: %w", name, timeout, context.DeadlineExceeded)
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
	case errors.As(runErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
	default:
		res.ExitCode = -1
		res.Err = fmt.Errorf("%w: %s: %v", ErrUnavailable, name, runErr)
	}
	return res
}

// decodeOutput keeps UTF-8 output as is and otherwise assumes the Western
// European OEM console code page that localized sc.exe writes.
func decodeOutput(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out, err := charmap.CodePage850.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
