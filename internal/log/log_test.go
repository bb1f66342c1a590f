package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLoggerLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := newLogger(Options{Level: "warn", NoColors: true}, buf)
	if err != nil {
		t.Fatal(err)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("Wrong level: %v", logger.GetLevel())
	}
	logger.Info("hidden")
	logger.WithFields(Fields{"frame": 7}).Warn("visible")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Info message must be filtered out: %s", out)
	}
	if !strings.Contains(out, "visible") || !strings.Contains(out, "frame") {
		t.Errorf("Warn message with fields is missing: %s", out)
	}
}

func TestNewLoggerDefaultLevel(t *testing.T) {
	logger, err := newLogger(Options{}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("Wrong default level: %v", logger.GetLevel())
	}
}

func TestNewLoggerBadLevel(t *testing.T) {
	if _, err := NewLogger(Options{Level: "loud"}); err == nil {
		t.Errorf("Expected error for unknown level")
	}
}

func TestNewLoggerFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "facemesh.log")
	logger, err := newLogger(Options{Level: "info", File: file, NoColors: true}, &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("to file")
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("Log file does not contain the message: %s", data)
	}
}
