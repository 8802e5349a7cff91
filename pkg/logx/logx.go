// Package logx builds the process-wide structured logger.
package logx

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type Options struct {
	Name  string
	Level string // trace, debug, info, warn, error; unknown values mean info
	JSON  bool
	// Output defaults to stderr.
	Output io.Writer
}

// New returns a root logger tagged with a fresh run_id, and that id.
func New(o Options) (hclog.Logger, string) {
	level := hclog.LevelFromString(o.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	out := o.Output
	if out == nil {
		out = os.Stderr
	}
	runID := uuid.NewString()
	l := hclog.New(&hclog.LoggerOptions{
		Name:       o.Name,
		Level:      level,
		JSONFormat: o.JSON,
		Output:     out,
	})
	return l.With("run_id", runID), runID
}
