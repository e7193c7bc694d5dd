package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/panotour/core/internal/config"
	"github.com/panotour/core/internal/pkg/metrics"
	"go.uber.org/zap"
)

const (
	FormatMultires = "multires"
	FormatCube     = "cube"
)

// CubeFaces are the files a cube conversion leaves in its output directory,
// each as <face>.png.
var CubeFaces = []string{"posx", "negx", "posy", "negy", "posz", "negz"}

var ErrTilerNotConfigured = errors.New("media.tiler.command is not configured")

// Processor turns an equirectangular image into viewer assets under outDir.
type Processor interface {
	Process(ctx context.Context, format, input, outDir string) error
}

// CommandProcessor runs the configured external tiler.
type CommandProcessor struct {
	command []string
	timeout time.Duration
	logger  *zap.Logger
}

func NewCommandProcessor(cfg config.TilerConfig, logger *zap.Logger) *CommandProcessor {
	return &CommandProcessor{command: cfg.Command, timeout: cfg.Timeout, logger: logger.Named("tiler")}
}

func (p *CommandProcessor) Process(ctx context.Context, format, input, outDir string) error {
	if len(p.command) == 0 {
		return ErrTilerNotConfigured
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	args := expandArgs(p.command, map[string]string{
		"{input}":  input,
		"{output}": outDir,
		"{format}": format,
	})
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	result := "ok"
	if err != nil {
		result = "error"
		if ctx.Err() == context.DeadlineExceeded {
			result = "timeout"
		}
	}
	metrics.TilerRuns.WithLabelValues(result).Observe(time.Since(start).Seconds())

	if err != nil {
		p.logger.Warn("tiler failed",
			zap.String("format", format),
			zap.String("result", result),
			zap.String("output", tail(out.String(), 2048)),
			zap.Error(err))
		return fmt.Errorf("tiler %s: %w", result, err)
	}
	p.logger.Debug("tiler finished", zap.String("format", format), zap.Duration("took", time.Since(start)))
	return nil
}

func expandArgs(command []string, vars map[string]string) []string {
	out := make([]string, len(command))
	for i, arg := range command {
		for k, v := range vars {
			arg = strings.ReplaceAll(arg, k, v)
		}
		out[i] = arg
	}
	return out
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
