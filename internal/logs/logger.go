package logs

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EncodingType определяет формат вывода логов.
type EncodingType string

// LevelType определяет уровень логирования.
type LevelType string

const (
	EncodingTypeConsole EncodingType = "console"
	EncodingTypeJSON    EncodingType = "json"
)

const (
	LevelTypeDebug   LevelType = "debug"
	LevelTypeInfo    LevelType = "info"
	LevelTypeWarning LevelType = "warn"
	LevelTypeError   LevelType = "error"
)

// LoggerOptions настройки логгера.
type LoggerOptions struct {
	Level            LevelType      // Уровень логирования
	Encoding         EncodingType   // Формат вывода
	OutputPaths      []string       // Пути вывода логов
	ErrorOutputPaths []string       // Пути вывода ошибок
	InitialFields    map[string]any // Начальные поля для каждой записи
}

// IsRelease true, если gin запущен в release режиме.
func IsRelease() bool {
	return os.Getenv("GIN_MODE") == "release"
}

// WithLevel задает уровень логирования строкой. Пустая строка оставляет уровень по умолчанию.
func WithLevel(level string) func(*LoggerOptions) {
	return func(o *LoggerOptions) {
		if level = strings.TrimSpace(strings.ToLower(level)); level != "" {
			o.Level = LevelType(level)
		}
	}
}

// New создает логгер. В release режиме пишет JSON с уровнем info, иначе консольный вывод с уровнем debug.
//
// Параметры:
//   - opts: функции для настройки логгера
//
// Возвращает:
//   - *zap.Logger: настроенный логгер
//   - error: ошибка создания логгера
func New(opts ...func(*LoggerOptions)) (*zap.Logger, error) {
	release := IsRelease()

	options := LoggerOptions{
		Level:            LevelTypeDebug,
		Encoding:         EncodingTypeConsole,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	if release {
		options.Level = LevelTypeInfo
		options.Encoding = EncodingTypeJSON
	}
	for _, opt := range opts {
		opt(&options)
	}

	lvl, err := zap.ParseAtomicLevel(string(options.Level))
	if err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "ts"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	if !release {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	conf := zap.Config{
		Level:             lvl,
		Development:       !release,
		DisableStacktrace: true,
		Encoding:          string(options.Encoding),
		EncoderConfig:     encoderConfig,
		OutputPaths:       options.OutputPaths,
		ErrorOutputPaths:  options.ErrorOutputPaths,
		InitialFields:     options.InitialFields,
	}

	log, err := conf.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}

// MustNew аналогичен New, но паникует при ошибке.
func MustNew(opts ...func(*LoggerOptions)) *zap.Logger {
	log, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return log
}
