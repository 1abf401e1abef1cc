package logger

import (
	"context"
	"os"

	"github.com/Gunvolt24/steam_cache/pkg/ctxmeta"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options — настройки логгера: уровень debug, префикс (имя логгера) и режим prod (JSON).
type Options struct {
	Debug  bool
	Prefix string
	IsProd bool
}

type ZapLogger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

// NewZapLogger — в prod пишет JSON, иначе цветной консольный вывод.
func NewZapLogger(opts Options) (*ZapLogger, func() error, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	var cfg zap.Config
	if opts.IsProd {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.DisableStacktrace = true
	}
	cfg.Level = level

	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	if opts.Prefix != "" {
		logger = logger.Named(opts.Prefix)
	}

	return wrap(logger), func() error { return logger.Sync() }, nil
}

// NewFromCore — обёртка над произвольным core (для тестов с наблюдателем).
func NewFromCore(core zapcore.Core) *ZapLogger {
	return wrap(zap.New(core))
}

// NewStderr — минимальный логгер до загрузки конфигурации.
func NewStderr() *ZapLogger {
	enc := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.Lock(os.Stderr), zapcore.InfoLevel)
	return wrap(zap.New(core))
}

func wrap(l *zap.Logger) *ZapLogger {
	return &ZapLogger{base: l, sugar: l.Sugar()}
}

func (z *ZapLogger) Debugf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Debugf(format, args...)
}
func (z *ZapLogger) Infof(ctx context.Context, format string, args ...any) {
	z.with(ctx).Infof(format, args...)
}
func (z *ZapLogger) Warnf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Warnf(format, args...)
}
func (z *ZapLogger) Errorf(ctx context.Context, format string, args ...any) {
	z.with(ctx).Errorf(format, args...)
}

// with — добавляет к записи поля из контекста.
func (z *ZapLogger) with(ctx context.Context) *zap.SugaredLogger {
	var fields []any
	if v, ok := ctxmeta.RequestIDFromContext(ctx); ok {
		fields = append(fields, "request_id", v)
	}
	if v, ok := ctxmeta.SteamIDFromContext(ctx); ok {
		fields = append(fields, "steam_id", v)
	}
	if v, ok := ctxmeta.TraceIDFromContext(ctx); ok {
		fields = append(fields, "trace_id", v)
	}
	if len(fields) == 0 {
		return z.sugar
	}
	return z.sugar.With(fields...)
}

func (z *ZapLogger) Base() *zap.Logger           { return z.base }
func (z *ZapLogger) Sugared() *zap.SugaredLogger { return z.sugar }
