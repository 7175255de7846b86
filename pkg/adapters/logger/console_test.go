package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ideamans/go-l10n"

	"github.com/user/h264grab/pkg/ports"
)

func TestConsoleLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelWarn, &buf)

	log.Debug("debug %d", 1)
	log.Info("info %d", 2)
	log.Warn("warn %d", 3)
	log.Error("error %d", 4)

	out := buf.String()
	if strings.Contains(out, "debug 1") || strings.Contains(out, "info 2") {
		t.Errorf("messages below warn were written: %q", out)
	}
	if !strings.Contains(out, "warn 3") || !strings.Contains(out, "error 4") {
		t.Errorf("expected warn and error lines, got %q", out)
	}
}

func TestConsoleWithComponent(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriter(ports.LevelDebug, &buf)
	log := base.WithComponent("session")

	log.Info("hello")
	base.Info("plain")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "[session] hello" {
		t.Errorf("unexpected component line %q", lines[0])
	}
	if lines[1] != "plain" {
		t.Errorf("component leaked into base logger: %q", lines[1])
	}
}

func TestConsoleLevelTags(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelDebug, &buf).WithComponent("session")

	log.Info("ready")
	log.Warn("status 0x%x", 4)
	log.Error("engine gone")

	want := []string{
		"[session] ready",
		"[session] warning: status 0x4",
		"[session] error: engine gone",
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %q", len(want), buf.String())
	}
	for i, w := range want {
		if lines[i] != w {
			t.Errorf("line %d: got %q, want %q", i, lines[i], w)
		}
	}
}

func TestConsoleLevelTagsTranslated(t *testing.T) {
	l10n.ForceLanguage("ja")
	defer l10n.ResetLanguage()

	var buf bytes.Buffer
	NewWriter(ports.LevelDebug, &buf).Warn("slow")

	if got := strings.TrimSpace(buf.String()); got != "警告: slow" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestConsoleNestedComponent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelDebug, &buf).WithComponent("session").WithComponent("engine")

	log.Debug("x")
	if got := strings.TrimSpace(buf.String()); got != "[session/engine] x" {
		t.Errorf("unexpected line %q", got)
	}
}

func TestConsoleQuiet(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(ports.LevelQuiet, &buf)

	log.Error("boom")
	if buf.Len() != 0 {
		t.Errorf("quiet logger wrote %q", buf.String())
	}
}

func TestNoop(t *testing.T) {
	log := NewNoop()
	if log.WithComponent("x") != log {
		t.Error("WithComponent should return the same logger")
	}
}
