package util

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
)

var (
	mu     sync.RWMutex
	sugar  = zap.NewNop().Sugar()
	helper = sugar
)

// InitLogger builds the process logger for the given level and redirects the
// standard library logger into it. Until it is called every Log* helper is a
// no-op, which keeps tests quiet.
func InitLogger(level string) (*zap.SugaredLogger, error) {
	cfg := zap.Config{
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.CallerKey = "caller"
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))

	logger, err := cfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		return nil, err
	}
	_ = zap.RedirectStdLog(logger)

	mu.Lock()
	sugar = logger.Sugar()
	helper = logger.WithOptions(zap.AddCallerSkip(1)).Sugar()
	mu.Unlock()
	return sugar, nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zap.DebugLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// Logger returns the current sugared logger.
func Logger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// LogCtx returns a logger tagged with the request id carried by ctx, if any.
func LogCtx(ctx context.Context) *zap.SugaredLogger {
	l := Logger()
	if ctx == nil {
		return l
	}
	if reqID, ok := ctx.Value(constants.RequestIDKey).(string); ok && reqID != "" {
		return l.With("request_id", reqID)
	}
	return l
}

func helperLogger() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return helper
}

func SyncLogger() {
	_ = Logger().Sync()
}

func LogDebug(format string, v ...any) {
	helperLogger().Debugf(format, v...)
}

func LogInfo(format string, v ...any) {
	helperLogger().Infof(format, v...)
}

func LogWarn(format string, v ...any) {
	helperLogger().Warnf(format, v...)
}

func LogError(format string, v ...any) {
	helperLogger().Errorf(format, v...)
}

func LogFatal(format string, v ...any) {
	helperLogger().Fatalf(format, v...)
}
