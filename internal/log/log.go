// Package log builds the structured logger of the demo binary.
package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Fields = logrus.Fields

// Options of the logger
type Options struct {
	// logrus level name: trace, debug, info, warn, error
	Level string
	// Optional rotating log file. Empty means stderr only
	File     string
	NoColors bool
}

// NewLogger creates logger writing to stderr and, when configured, to a rotating file.
func NewLogger(options Options) (*logrus.Logger, error) {
	return newLogger(options, os.Stderr)
}

func newLogger(options Options, console io.Writer) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if options.Level != "" {
		parsed, err := logrus.ParseLevel(options.Level)
		if err != nil {
			return nil, errors.Wrapf(err, "Can't parse log level '%s'", options.Level)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        options.NoColors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
		},
	})

	writers := []io.Writer{console}
	if options.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   options.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}
	logger.SetOutput(io.MultiWriter(writers...))
	logger.SetReportCaller(true)
	return logger, nil
}
