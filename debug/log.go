package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	file    *os.File
	logger  = zerolog.Nop()
	level   = zerolog.InfoLevel
	mu      sync.Mutex
	enabled bool
)

// DefaultPath returns ~/.config/go-midiparse/debug.log
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-midiparse", "debug.log"), nil
}

// Enable starts logging to path, truncating it. An empty path uses DefaultPath.
func Enable(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	file = f
	start(f)
	return nil
}

// EnableWriter starts logging to w as human readable console lines.
func EnableWriter(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return
	}
	start(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05.000", NoColor: true})
}

// start must be called with mu held.
func start(w io.Writer) {
	logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	enabled = true
	logger.Info().Str("category", "debug").Msg("=== Debug logging started ===")
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = zerolog.Nop()
	enabled = false
	counters = make(map[string]int)
}

// SetLevel sets the minimum level: trace, debug, info, warn, error or disabled.
func SetLevel(name string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil {
		return fmt.Errorf("debug: invalid log level %q: %w", name, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	mu.Lock()
	defer mu.Unlock()
	level = lvl
	logger = logger.Level(lvl)
	return nil
}

// Logger returns the current logger, a no-op logger when disabled.
func Logger() zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Log writes an info message under category.
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled {
		return
	}
	logger.Info().Str("category", category).Msg(fmt.Sprintf(format, args...))
	if file != nil {
		file.Sync() // flush immediately so we see logs even on crash
	}
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if n <= 1 || count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}

// Since formats an elapsed duration for log lines.
func Since(t time.Time) string {
	return time.Since(t).Round(time.Microsecond).String()
}
