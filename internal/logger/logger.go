package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Log is the process-wide logger. It discards everything until Initialize
// runs, so tests need no setup.
var Log = zap.NewNop()

// Initialize replaces Log with a logger writing human-readable lines to
// stderr and, unless logFile is "-", rotated JSON to logFile
// (default "server.log"). Unknown levels fall back to info.
func Initialize(logLevel string, logFile string) error {
	if logFile == "" {
		logFile = "server.log"
	}
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(logLevel)))
	if err != nil || logLevel == "" {
		level = zapcore.InfoLevel
	}

	cores := []zapcore.Core{consoleCore(level)}
	if logFile != "-" {
		cores = append(cores, fileCore(logFile, level))
	}

	Log = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	Log.Debug("Logger initialized", zap.Stringer("level", level), zap.String("file", logFile))
	return nil
}

func consoleCore(level zapcore.Level) zapcore.Core {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
}

func fileCore(path string, level zapcore.Level) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100, // MB
		MaxBackups: 5,
		MaxAge:     7,
		Compress:   true,
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), level)
}

// Close flushes buffered entries
func Close() error {
	return Log.Sync()
}

// WarnWithFields logs msg at warn level; a nil err adds no field.
func WarnWithFields(msg string, err error) { Log.Warn(msg, zap.Error(err)) }

// ErrorWithFields logs msg at error level; a nil err adds no field.
func ErrorWithFields(msg string, err error) { Log.Error(msg, zap.Error(err)) }

// FatalWithFields logs msg and exits the process.
func FatalWithFields(msg string, err error) { Log.Fatal(msg, zap.Error(err)) }

// Field helpers shared by handlers and services

func WithRequestID(requestID string) zap.Field {
	return zap.String("request_id", requestID)
}

func WithUserID(userID string) zap.Field {
	return zap.String("user_id", userID)
}

func WithArticleID(articleID string) zap.Field {
	return zap.String("article_id", articleID)
}

func WithTopic(topic string) zap.Field {
	return zap.String("topic", topic)
}

func WithDate(date string) zap.Field {
	return zap.String("date", date)
}

func WithIP(ip string) zap.Field {
	return zap.String("ip", ip)
}

func WithStatus(status int) zap.Field {
	return zap.Int("status", status)
}
