package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agentql-tools/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type LoggerAdapter struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

type Config struct {
	Level string
	// Dir, when set, adds a per-run JSON log file named <timestamp>_<RunName>.log.
	Dir     string
	RunName string
	// Stderr keeps stdout free for tool output and the MCP stdio transport.
	Stderr bool
}

func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Stderr: true,
	}
}

func NewLoggerAdapter(cfg Config) (*LoggerAdapter, error) {
	level, err := zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	zcfg.Sampling = nil
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.MessageKey = "message"
	zcfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	zcfg.OutputPaths = nil
	zcfg.ErrorOutputPaths = []string{"stderr"}

	if cfg.Stderr {
		zcfg.OutputPaths = append(zcfg.OutputPaths, "stderr")
	}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), sanitize(cfg.RunName))
		zcfg.OutputPaths = append(zcfg.OutputPaths, filepath.Join(cfg.Dir, filename))
	}
	if len(zcfg.OutputPaths) == 0 {
		return NewNopLogger(), nil
	}

	base, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return newAdapter(base), nil
}

// NewNopLogger discards everything. Used by tests and as a fallback.
func NewNopLogger() *LoggerAdapter {
	return newAdapter(zap.NewNop())
}

// NewFromZap wraps an existing zap logger.
func NewFromZap(base *zap.Logger) *LoggerAdapter {
	return newAdapter(base)
}

func newAdapter(base *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{
		base:  base,
		sugar: base.Sugar(),
	}
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return newAdapter(l.base.With(zap.Any(key, value)))
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	zfields := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zfields = append(zfields, zap.Any(k, v))
	}
	return newAdapter(l.base.With(zfields...))
}

// Close flushes buffered entries. Sync errors on stderr are expected on
// some platforms and are ignored.
func (l *LoggerAdapter) Close() error {
	_ = l.base.Sync()
	return nil
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '_'
	}, s)
	s = strings.Trim(s, "_")
	if s == "" {
		return "run"
	}
	if len(s) > 60 {
		s = s[:60]
	}
	return s
}
