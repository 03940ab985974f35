package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type loggerImp struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
}

var l *loggerImp

// Debugf logger
func Debugf(format string, args ...interface{}) {
	if l == nil {
		fmt.Printf(format+"\n", args...)
		return
	}
	l.sugar.Debugf(format, args...)
}

// Infof logger
func Infof(format string, args ...interface{}) {
	if l == nil {
		fmt.Printf(format+"\n", args...)
		return
	}
	l.sugar.Infof(format, args...)
}

// Warnf logger
func Warnf(format string, args ...interface{}) {
	if l == nil {
		fmt.Printf(format+"\n", args...)
		return
	}
	l.sugar.Warnf(format, args...)
}

// Errorf logger
func Errorf(format string, args ...interface{}) {
	if l == nil {
		fmt.Printf(format+"\n", args...)
		return
	}
	l.sugar.Errorf(format, args...)
}

// Info logger
func Info(msg string, fields ...zapcore.Field) {
	if l == nil {
		fmt.Println(msg)
		return
	}
	l.logger.Info(msg, fields...)
}

// Warn logger
func Warn(msg string, fields ...zapcore.Field) {
	if l == nil {
		fmt.Println(msg, fields)
		return
	}
	l.logger.Warn(msg, fields...)
}

// Error logger
func Error(msg string, fields ...zapcore.Field) {
	if l == nil {
		fmt.Println(msg, fields)
		return
	}
	l.logger.Error(msg, fields...)
}

// Init builds the package logger from viper config. Safe to skip for
// library use, every call falls back to stdout when Init was not run.
func Init(name string, config *viper.Viper) {
	l = &loggerImp{}
	l.logger = newLogger(name, config)
	l.sugar = l.logger.Sugar()
	l.logger.Info("initialize logger", zap.String("name", name))
}

func newLogger(name string, config *viper.Viper) *zap.Logger {
	level := config.GetString("presence.logger.level")
	fileDir := config.GetString("presence.logger.dir")

	zapLevel := zapcore.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		fmt.Println("logger level invalid, must be one of: debug, info, warn, error")
	}

	consoleLogger := newJSONLogger(os.Stdout, zapLevel)
	if fileDir == "" {
		zap.RedirectStdLog(consoleLogger)
		return consoleLogger
	}

	fileLogger := newRotatingFileLogger(config, consoleLogger, filepath.Join(fileDir, name+".log"), zapLevel)
	multiLogger := newMultiLogger(consoleLogger, fileLogger)
	zap.RedirectStdLog(multiLogger)
	return multiLogger
}

func newRotatingFileLogger(config *viper.Viper, consoleLogger *zap.Logger, fileName string, level zapcore.Level) *zap.Logger {
	logDir := filepath.Dir(fileName)
	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			consoleLogger.Fatal("could not create log directory", zap.Error(err))
			return nil
		}
	}

	writeSyncer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    config.GetInt("presence.logger.maxsize"),
		MaxAge:     config.GetInt("presence.logger.maxage"),
		MaxBackups: config.GetInt("presence.logger.maxbackups"),
		LocalTime:  config.GetBool("presence.logger.localtime"),
		Compress:   config.GetBool("presence.logger.compress"),
	})

	core := zapcore.NewCore(newJSONEncoder(), writeSyncer, level)
	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel))
}

func newMultiLogger(loggers ...*zap.Logger) *zap.Logger {
	cores := make([]zapcore.Core, 0, len(loggers))
	for _, logger := range loggers {
		cores = append(cores, logger.Core())
	}
	teeCore := zapcore.NewTee(cores...)
	options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel), zap.AddCaller(), zap.AddCallerSkip(1)}
	return zap.New(teeCore, options...)
}

func newJSONLogger(output *os.File, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(newJSONEncoder(), zapcore.Lock(output), level)
	options := []zap.Option{zap.AddStacktrace(zap.ErrorLevel), zap.AddCaller(), zap.AddCallerSkip(1)}
	return zap.New(core, options...)
}

func newJSONEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	})
}
