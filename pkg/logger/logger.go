// Package logger is a thin façade over zerolog so call sites can stay
// printf-shaped. InitLogger tees output to a log file in addition to the
// console.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

var (
	log     zerolog.Logger
	logFile *os.File
)

func init() {
	log = newConsoleLogger(os.Stderr)
}

func newConsoleLogger(w io.Writer) zerolog.Logger {
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(cw).With().Timestamp().Logger()
}

// InitLogger reopens the logger with a file sink alongside the console.
func InitLogger(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	logFile = f
	cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	log = zerolog.New(zerolog.MultiLevelWriter(cw, f)).With().Timestamp().Logger()
	return nil
}

// SetDebug lowers the global level to debug.
func SetDebug() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

func Close() {
	if logFile != nil {
		logFile.Close()
	}
}

func Info(format string, v ...interface{}) {
	log.Info().Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	Info(format, v...)
}

func Warn(format string, v ...interface{}) {
	log.Warn().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	Warn(format, v...)
}

func Error(format string, v ...interface{}) {
	log.Error().Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	Error(format, v...)
}

func Debugf(format string, v ...interface{}) {
	log.Debug().Msgf(format, v...)
}
