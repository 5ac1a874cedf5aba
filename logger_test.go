package pargrid

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestNopHandler_Enabled(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
}

func TestNopHandler_Handle(t *testing.T) {
	h := nopHandler{}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("nopHandler.Handle() = %v, want nil", err)
	}
}

func TestNopHandler_WithAttrsAndGroup(t *testing.T) {
	h := nopHandler{}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("key", "val")}).(nopHandler); !ok {
		t.Error("nopHandler.WithAttrs() did not return nopHandler")
	}
	if _, ok := h.WithGroup("group").(nopHandler); !ok {
		t.Error("nopHandler.WithGroup() did not return nopHandler")
	}
}

func TestEngineLoggerDefaultSilent(t *testing.T) {
	e := NewEngine(WithWorkers(1))
	defer e.Close()

	l := e.Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestWithLoggerNilKeepsSilent(t *testing.T) {
	e := NewEngine(WithWorkers(1), WithLogger(nil), WithVerbose(true))
	defer e.Close()

	if e.Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("WithLogger(nil) should keep the silent logger")
	}
	// Must not panic with a silent logger.
	e.debug("message", "key", 1)
}

func TestDebugRequiresVerbose(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	quiet := NewEngine(WithWorkers(1), WithLogger(logger))
	quiet.debug("hidden")
	quiet.Close()
	if buf.Len() != 0 {
		t.Fatalf("non-verbose engine logged: %s", buf.String())
	}

	loud := NewEngine(WithWorkers(1), WithLogger(logger), WithVerbose(true))
	loud.debug("shown", "grain", 64)
	loud.Close()
	for _, want := range []string{"engine started", "shown", "grain=64", "engine closing"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log output missing %q: %s", want, buf.String())
		}
	}
}

func TestGaussianBlurLogsKernel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := NewEngine(WithWorkers(2), WithLogger(logger), WithVerbose(true))
	defer e.Close()

	in, err := NewBuffer[float32](8, 8)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.GaussianBlur(in, 4, 1); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{"kernel size corrected", "from=4", "to=5", "kernel generated", "convolve"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q", want)
		}
	}
}

func TestEngineLoggerConcurrentUse(t *testing.T) {
	var mu sync.Mutex
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&lockedWriter{mu: &mu, w: &buf}, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := NewEngine(WithWorkers(4), WithLogger(logger), WithVerbose(true))
	defer e.Close()

	in, err := NewBuffer[float32](32, 32)
	if err != nil {
		t.Fatal(err)
	}
	k, err := GenerateKernel(3, 1)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Convolve(in, k, Grain(8)); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if got := strings.Count(buf.String(), "msg=convolve "); got != 8 {
		t.Errorf("convolve records = %d, want 8", got)
	}
}

type lockedWriter struct {
	mu *sync.Mutex
	w  *bytes.Buffer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
