package logging

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	encoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	output  = &redirectableSyncer{w: zapcore.Lock(os.Stdout)}
	leveler = &levelSetter{
		levelers: make(map[string]zap.AtomicLevel),
	}
)

type Leveler interface {
	SetLevel(name string, level zapcore.Level)
	GetLevel(name string) zapcore.Level
	SetAllLevels(level zapcore.Level)
}

type levelSetter struct {
	levelers map[string]zap.AtomicLevel
	mu       sync.RWMutex
}

var _ Leveler = (*levelSetter)(nil)

func GetLeveler() Leveler {
	return leveler
}

func (lw *levelSetter) SetLevel(name string, level zapcore.Level) {
	_ = lw.setLevel(name, level)
}

func (lw *levelSetter) GetLevel(name string) zapcore.Level {
	lw.mu.RLock()
	defer lw.mu.RUnlock()

	if l, ok := lw.levelers[name]; ok {
		return l.Level()
	}

	return zap.InfoLevel
}

// SetAllLevels changes the level of every logger created so far.
func (lw *levelSetter) SetAllLevels(level zapcore.Level) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	for _, l := range lw.levelers {
		l.SetLevel(level)
	}
}

func (lw *levelSetter) setLevel(name string, level zapcore.Level) zap.AtomicLevel {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if _, ok := lw.levelers[name]; !ok {
		lw.levelers[name] = zap.NewAtomicLevelAt(level)
	}

	lw.levelers[name].SetLevel(level)

	return lw.levelers[name]
}

// redirectableSyncer lets already-built loggers follow an output change.
// The terminal preview takes over stdout after package loggers exist.
type redirectableSyncer struct {
	mu sync.RWMutex
	w  zapcore.WriteSyncer
}

func (s *redirectableSyncer) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *redirectableSyncer) Sync() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Sync()
}

// Redirect sends the output of every logger to w.
func Redirect(w io.Writer) {
	output.mu.Lock()
	output.w = zapcore.Lock(zapcore.AddSync(w))
	output.mu.Unlock()
}

// ParseLevel parses a level name, falling back to info.
func ParseLevel(name string) zapcore.Level {
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zap.InfoLevel
	}
	return level
}

func New(name string) *zap.SugaredLogger {
	level := leveler.setLevel(name, zap.InfoLevel)
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), output, level)
	return zap.New(core,
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.PanicLevel),
		zap.ErrorOutput(output),
	).Named(name).Sugar()
}
