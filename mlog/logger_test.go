package mlog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"fatal": FatalLevel, "ERROR": ErrorLevel, "warning": WarnLevel,
		" debug ": DebugLevel, "trace": TraceLevel, "info": InfoLevel,
	}
	for s, want := range cases {
		got, ok := ParseLevel(s)
		if !ok || got != want {
			t.Errorf("ParseLevel(%q) = %v,%v want %v", s, got, ok, want)
		}
	}
	if lv, ok := ParseLevel("verbose"); ok || lv != InfoLevel {
		t.Errorf("unknown level should fall back to info, got %v,%v", lv, ok)
	}
}

func TestWriterLoggerLevel(t *testing.T) {
	defer SetLogger(nil)
	var buf bytes.Buffer
	UseWriterLogger(InfoLevel, &buf)
	Debugf("hidden %d", 1)
	Infof("shown %d", 2)
	Warn("warned")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked: %q", out)
	}
	if !strings.Contains(out, "[info] shown 2") || !strings.Contains(out, "[warn] warned") {
		t.Fatalf("missing lines: %q", out)
	}
	if IsLevelEnabled(DebugLevel) || !IsLevelEnabled(InfoLevel) {
		t.Fatal("level gate mismatch")
	}
}

func TestNilLogger(t *testing.T) {
	SetLogger(nil)
	Infof("nobody listens %d", 1)
	if IsLevelEnabled(FatalLevel) {
		t.Fatal("nil logger should report nothing enabled")
	}
}

func TestDefaultLoggerFlushOnCancel(t *testing.T) {
	defer SetLogger(nil)
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	if err := UseDefaultLogger(ctx, wg, dir, "test", DebugLevel, false); err != nil {
		t.Fatal(err)
	}
	Debugf("loop started waiters=%d", 3)
	cancel()
	wg.Wait()
	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[debug] loop started waiters=3") {
		t.Fatalf("log file content: %q", data)
	}
}
