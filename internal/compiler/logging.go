package compiler

import (
	"log"
	"os"

	"github.com/mattn/go-isatty"
)

// defaultLogger writes informational stage progress to stdout with no
// timestamp prefix, matching the teacher's plain "[Stage: name]"-style
// console lines (cmd/sentra/main.go). Fatal diagnostics are the CLI's
// responsibility, not the pipeline's; stages only ever return errors.
var defaultLogger = log.New(os.Stdout, "", 0)

// stageColor and stageReset bracket a stage's log line in cyan when
// stdout is a real terminal; piped output (CI logs, `tensorc watch`
// redirected to a file) stays plain so it greps cleanly.
var (
	stageColor = ""
	stageReset = ""
)

func init() {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		stageColor = "\x1b[36m"
		stageReset = "\x1b[0m"
	}
}
