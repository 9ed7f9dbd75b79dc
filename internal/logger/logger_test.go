package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/meshpack/pkg/formats"
)

func resetLogger(t *testing.T) {
	t.Helper()
	Log = zap.NewNop()
	Sugar = Log.Sugar()
	t.Cleanup(func() {
		Log = zap.NewNop()
		Sugar = Log.Sugar()
	})
}

func TestLogBeforeInitDiscards(t *testing.T) {
	resetLogger(t)

	if Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("expected logger to discard entries before Init")
	}
	Named("formats").Warn("unknown keyword", zap.Int("line", 1))
	Sugar.Debugf("config: %+v", struct{}{})
	Sync()
}

func TestInitConsoleLevels(t *testing.T) {
	messages := []string{"flattened batch", "batch compressed", "unknown keyword", "command failed"}

	tests := []struct {
		level string
		shown int // messages from this index on are written
	}{
		{"debug", 0},
		{"info", 1},
		{"", 1},
		{"warn", 2},
		{"error", 3},
	}

	for _, tt := range tests {
		t.Run("level "+tt.level, func(t *testing.T) {
			resetLogger(t)
			var buf bytes.Buffer
			if err := initLogger(tt.level, "", &buf); err != nil {
				t.Fatalf("initLogger failed: %v", err)
			}

			Debug(messages[0])
			Info(messages[1])
			Warn(messages[2])
			Error(messages[3])

			out := buf.String()
			for i, msg := range messages {
				if got, want := strings.Contains(out, msg), i >= tt.shown; got != want {
					t.Errorf("%q written: expected %v, got %v\n%s", msg, want, got, out)
				}
			}
		})
	}
}

func TestInitUnknownLevel(t *testing.T) {
	resetLogger(t)
	before := Log

	var buf bytes.Buffer
	if err := initLogger("verbose", "", &buf); err == nil {
		t.Fatal("expected error for unknown level")
	}
	if Log != before {
		t.Error("expected logger to be left unchanged")
	}
}

func TestNamedComponentOnConsole(t *testing.T) {
	resetLogger(t)
	var buf bytes.Buffer
	if err := initLogger("info", "", &buf); err != nil {
		t.Fatalf("initLogger failed: %v", err)
	}

	Named("pipeline").Info("batch compressed", zap.String("texture", "wall.png"))

	out := buf.String()
	for _, want := range []string{"pipeline", "batch compressed", "wall.png"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in console output: %s", want, out)
		}
	}
}

func TestLogFileRecordsParseWarnings(t *testing.T) {
	resetLogger(t)
	logFile := filepath.Join(t.TempDir(), "meshtool.log")
	if err := initLogger("warn", logFile, nil); err != nil {
		t.Fatalf("initLogger failed: %v", err)
	}

	src := "v 0 0 0\ng body\nusemtl nowhere\n"
	if _, err := formats.ParseOBJ(strings.NewReader(src), formats.OBJOptions{Logger: Named("formats")}); err != nil {
		t.Fatalf("ParseOBJ failed: %v", err)
	}
	Info("below the file level")
	Sync()

	f, err := os.Open(logFile)
	if err != nil {
		t.Fatalf("failed to open log file: %v", err)
	}
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("log line is not JSON: %q: %v", scanner.Text(), err)
		}
		entries = append(entries, entry)
	}

	want := []struct {
		msg  string
		line float64
	}{
		{"group unsupported", 2},
		{"unknown material", 3},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(entries), entries)
	}
	for i, w := range want {
		e := entries[i]
		if e["msg"] != w.msg || e["line"] != w.line {
			t.Errorf("entry %d: expected %q at line %v, got %v", i, w.msg, w.line, e)
		}
		if e["logger"] != "formats" || e["level"] != "warn" {
			t.Errorf("entry %d: expected a formats warning, got %v", i, e)
		}
	}
}

func TestRotatingFileLimits(t *testing.T) {
	lj := rotatingFile("meshtool.log")
	if lj.MaxSize != fileMaxSizeMB || lj.MaxBackups != fileMaxBackups || lj.MaxAge != fileMaxAgeDays {
		t.Errorf("unexpected rotation limits: %+v", lj)
	}
	if !lj.Compress {
		t.Error("expected rotated files to be compressed")
	}
}
