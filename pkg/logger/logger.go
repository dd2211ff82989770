// Package logger provides basic logging functionalities.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger defines a simple interface for logging.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
}

// zapLogger wraps a zap.SugaredLogger behind the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// atomicLevel is shared by every logger built in this package so that
// SetGlobalLogLevel takes effect immediately.
var atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func newZapLogger() *zapLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		atomicLevel,
	)
	// CallerSkip(2) reports the caller of the package-level helpers
	// rather than this wrapper.
	z := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	return &zapLogger{sugar: z.Sugar()}
}

// NewLogger creates and configures a new Logger instance, and updates the
// level of the global `std` logger.
// logLevel can be "debug", "info", "warn", "error" or "fatal".
func NewLogger(logLevel string) Logger {
	SetGlobalLogLevel(logLevel)
	return newZapLogger()
}

func (l *zapLogger) Debug(args ...interface{})                 { l.sugar.Debug(args...) }
func (l *zapLogger) Debugf(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *zapLogger) Info(args ...interface{})                  { l.sugar.Info(args...) }
func (l *zapLogger) Infof(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *zapLogger) Warn(args ...interface{})                  { l.sugar.Warn(args...) }
func (l *zapLogger) Warnf(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *zapLogger) Error(args ...interface{})                 { l.sugar.Error(args...) }
func (l *zapLogger) Errorf(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }
func (l *zapLogger) Fatal(args ...interface{})                 { l.sugar.Fatal(args...) }
func (l *zapLogger) Fatalf(format string, args ...interface{}) { l.sugar.Fatalf(format, args...) }

// Global std logger instance, initialized with default "info" settings.
var std Logger = newZapLogger()

// SetGlobalLogLevel reconfigures the level of the global std logger.
func SetGlobalLogLevel(logLevel string) {
	switch logLevel {
	case "debug":
		atomicLevel.SetLevel(zapcore.DebugLevel)
	case "warn":
		atomicLevel.SetLevel(zapcore.WarnLevel)
	case "error":
		atomicLevel.SetLevel(zapcore.ErrorLevel)
	case "fatal":
		atomicLevel.SetLevel(zapcore.FatalLevel)
	default:
		atomicLevel.SetLevel(zapcore.InfoLevel)
	}
}

// Debug logs a debug message using the global std logger.
func Debug(args ...interface{}) {
	std.Debug(args...)
}

// Debugf logs a debug message with formatting.
func Debugf(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

// Info logs an informational message using the global std logger.
func Info(args ...interface{}) {
	std.Info(args...)
}

// Infof logs an informational message with formatting.
func Infof(format string, args ...interface{}) {
	std.Infof(format, args...)
}

// Warn logs a warning message.
func Warn(args ...interface{}) {
	std.Warn(args...)
}

// Warnf logs a warning message with formatting.
func Warnf(format string, args ...interface{}) {
	std.Warnf(format, args...)
}

// Error logs an error message.
func Error(args ...interface{}) {
	std.Error(args...)
}

// Errorf logs an error message with formatting.
func Errorf(format string, args ...interface{}) {
	std.Errorf(format, args...)
}

// Fatal logs a fatal error message and exits.
func Fatal(args ...interface{}) {
	std.Fatal(args...)
}

// Fatalf logs a fatal error message with formatting and exits.
func Fatalf(format string, args ...interface{}) {
	std.Fatalf(format, args...)
}
