package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Logger struct {
	base *logrus.Logger
}

func NewLogger() *Logger {
	return NewLoggerWithOutput(os.Stdout)
}

func NewLoggerWithOutput(w io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(logrus.InfoLevel)
	base.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})

	return &Logger{base: base}
}

// SetLevel ignores unknown level names and keeps the current level.
func (l *Logger) SetLevel(level string) {
	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return
	}
	l.base.SetLevel(parsed)
}

func (l *Logger) Debug(message string, fields map[string]any) {
	l.base.WithFields(logrus.Fields(fields)).Debug(message)
}

func (l *Logger) Info(message string, fields map[string]any) {
	l.base.WithFields(logrus.Fields(fields)).Info(message)
}

func (l *Logger) Warn(message string, fields map[string]any) {
	l.base.WithFields(logrus.Fields(fields)).Warn(message)
}

func (l *Logger) Error(message string, fields map[string]any) {
	l.base.WithFields(logrus.Fields(fields)).Error(message)
}

// MaskCPF keeps the last four characters of a CPF for log correlation.
func MaskCPF(cpf string) string {
	runes := []rune(cpf)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
