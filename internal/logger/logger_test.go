package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func capture() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(Config{Level: DebugLevel, Pretty: false, Output: &buf})
	return l, &buf
}

func TestNewDefault(t *testing.T) {
	if NewDefault() == nil {
		t.Fatal("NewDefault() returned nil")
	}
}

func TestWithComponent(t *testing.T) {
	l, buf := capture()

	l.WithComponent("parser").Info("ready")

	output := buf.String()
	if !strings.Contains(output, `"component":"parser"`) {
		t.Errorf("output missing component field: %s", output)
	}
	if !strings.Contains(output, "ready") {
		t.Errorf("output missing message: %s", output)
	}
}

func TestWithError(t *testing.T) {
	l, buf := capture()

	l.WithError(errors.New("boom")).Warn("degraded")

	output := buf.String()
	if !strings.Contains(output, "boom") {
		t.Errorf("output missing error field: %s", output)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: WarnLevel, Pretty: false, Output: &buf})

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("info leaked past warn level: %s", output)
	}
	if !strings.Contains(output, "shown 2") {
		t.Errorf("warn suppressed: %s", output)
	}
}

func TestEventFields(t *testing.T) {
	l, buf := capture()

	l.Event(InfoLevel).Str("endpoint", "GET /users").Msg("hit")

	output := buf.String()
	if !strings.Contains(output, `"endpoint":"GET /users"`) {
		t.Errorf("output missing event field: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	if err != nil || level != DebugLevel {
		t.Errorf("ParseLevel(debug) = (%v, %v)", level, err)
	}
	if _, err := ParseLevel("nope"); err == nil {
		t.Error("ParseLevel(nope) should fail")
	}
}
