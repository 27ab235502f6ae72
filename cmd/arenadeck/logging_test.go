package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arenadeck/arenadeck-go/internal/config"
)

func TestNewLogger_ConsoleText(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := newLogger(config.Default().Logging, false, &buf)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	defer closer.Close()

	log.Debug("hidden")
	log.Info("shown", "deck_id", "abc123")
	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("debug record written at info level: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "deck_id=abc123") {
		t.Errorf("output = %q, want text attrs", buf.String())
	}
}

func TestNewLogger_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log, closer, err := newLogger(config.Default().Logging, true, &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer closer.Close()

	log.Debug("details")
	if !strings.Contains(buf.String(), "details") {
		t.Errorf("verbose logger dropped debug record: %q", buf.String())
	}
}

func TestNewLogger_JSONFileAndConsole(t *testing.T) {
	cfg := config.Default().Logging
	cfg.Format = "json"
	cfg.File = filepath.Join(t.TempDir(), "logs", "daemon.log")

	var buf bytes.Buffer
	log, closer, err := newLogger(cfg, false, &buf)
	if err != nil {
		t.Fatalf("newLogger() error = %v", err)
	}
	log.With("run_id", "r1").Warn("both sinks")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		t.Fatal(err)
	}
	for name, out := range map[string][]byte{"console": buf.Bytes(), "file": data} {
		var rec map[string]any
		if err := json.Unmarshal(bytes.TrimSpace(out), &rec); err != nil {
			t.Fatalf("%s output is not JSON: %q", name, out)
		}
		if rec["msg"] != "both sinks" || rec["run_id"] != "r1" {
			t.Errorf("%s record = %v", name, rec)
		}
	}
}

func TestNewLogger_FileOnly(t *testing.T) {
	cfg := config.Default().Logging
	cfg.Console = false
	cfg.File = filepath.Join(t.TempDir(), "daemon.log")

	var buf bytes.Buffer
	log, closer, err := newLogger(cfg, false, &buf)
	if err != nil {
		t.Fatal(err)
	}
	log.Info("to file")
	closer.Close()

	if buf.Len() != 0 {
		t.Errorf("console output = %q, want none", buf.String())
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	cfg := config.Default().Logging
	cfg.Level = "loud"
	if _, _, err := newLogger(cfg, false, &bytes.Buffer{}); err == nil {
		t.Error("newLogger() error = nil, want error")
	}
}
