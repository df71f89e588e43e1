package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func containsLog(substr string) bool {
	for _, entry := range GetLogs() {
		if strings.Contains(entry.Message, substr) {
			return true
		}
	}
	return false
}

func TestLogBuffersEntries(t *testing.T) {
	Log("collectives fetched: %d", 3)
	LogError("REVOKE_TOKEN", "https://cloud.example.com", errors.New("HTTP 500"))
	LogHTTP("PROPFIND", "https://cloud.example.com/remote.php/dav", 207, 12*time.Millisecond, "req-1")

	for _, want := range []string{
		"[INFO] collectives fetched: 3",
		"[ERROR] REVOKE_TOKEN: https://cloud.example.com - HTTP 500",
		"[HTTP] PROPFIND https://cloud.example.com/remote.php/dav -> 207",
	} {
		if !containsLog(want) {
			t.Errorf("GetLogs() missing entry %q", want)
		}
	}
}

func TestBufferIsBounded(t *testing.T) {
	for i := 0; i < maxBufferSize+50; i++ {
		Log("entry %d", i)
	}

	logs := GetLogs()
	if len(logs) != maxBufferSize {
		t.Fatalf("GetLogs() len = %d, want %d", len(logs), maxBufferSize)
	}
	last := logs[len(logs)-1].Message
	if want := fmt.Sprintf("[INFO] entry %d", maxBufferSize+49); last != want {
		t.Errorf("last entry = %q, want %q", last, want)
	}
}

func TestGetLogsReturnsCopy(t *testing.T) {
	Log("original")
	logs := GetLogs()
	logs[len(logs)-1].Message = "mutated"

	if containsLog("mutated") {
		t.Error("GetLogs() should return a copy of the buffer")
	}
}

func TestInitWritesFileUntilClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "mantella.log")
	if err := Init(path, true); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	Log("signed in as %s", "alice")
	LogDebug("cache replaced")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	Log("after close")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	for _, want := range []string{"signed in as alice", "cache replaced", `"level":"debug"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %q:\n%s", want, data)
		}
	}
	if strings.Contains(string(data), "after close") {
		t.Error("entry logged after Close() reached the file")
	}
	if !containsLog("after close") {
		t.Error("entry logged after Close() missing from the buffer")
	}
	if err := Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestCloseWhileLogging(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mantella.log")
	if err := Init(path, false); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				Log("worker %d entry %d", w, i)
				LogHTTP("PROPFIND", "https://cloud.example.com/x", 207, time.Millisecond, "req")
				LogError("LIST_PAGES", "A", errors.New("boom"))
			}
		}(w)
	}

	time.Sleep(time.Millisecond)
	if err := Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	wg.Wait()

	if got := len(GetLogs()); got != maxBufferSize {
		t.Errorf("GetLogs() len = %d, want %d", got, maxBufferSize)
	}
}

func TestInitReopensAfterClose(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.log")
	second := filepath.Join(dir, "second.log")

	if err := Init(first, false); err != nil {
		t.Fatalf("Init(first) error = %v", err)
	}
	if err := Init(second, false); err != nil {
		t.Fatalf("Init(second) while open error = %v", err)
	}
	Log("to first")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := Init(second, false); err != nil {
		t.Fatalf("Init(second) error = %v", err)
	}
	Log("to second")
	if err := Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	for file, want := range map[string]string{first: "to first", second: "to second"} {
		data, err := os.ReadFile(file)
		if err != nil {
			t.Fatalf("ReadFile(%s) error = %v", file, err)
		}
		if !strings.Contains(string(data), want) {
			t.Errorf("%s missing %q:\n%s", filepath.Base(file), want, data)
		}
	}
}
