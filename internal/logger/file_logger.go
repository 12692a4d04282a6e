package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RunLogger writes one optimization session to logs/<SYMBOL>_<date>.log
// while still forwarding every event to the global logger.
type RunLogger struct {
	symbol  string
	logDir  string
	path    string
	file    *os.File
	mu      sync.Mutex
	started time.Time
	zerolog.Logger
}

// NewRunLogger creates the log directory if needed and opens the session file in append mode.
func NewRunLogger(logDir, symbol string) (*RunLogger, error) {
	if logDir == "" {
		logDir = "logs"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	now := time.Now()
	path := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", symbol, now.Format("2006-01-02")))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	multi := zerolog.MultiLevelWriter(output, file)
	rl := &RunLogger{
		symbol:  symbol,
		logDir:  logDir,
		path:    path,
		file:    file,
		started: now,
		Logger:  zerolog.New(multi).With().Timestamp().Str("symbol", symbol).Logger(),
	}
	rl.writeBanner("🧬 OPTIMIZATION SESSION STARTED")
	return rl, nil
}

func (l *RunLogger) writeBanner(title string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintf(l.file, "%s\n%s\nSymbol: %s\nTime: %s\n%s\n",
		"================================================================================",
		title, l.symbol, time.Now().Format("2006-01-02 15:04:05"),
		"================================================================================")
}

// Path returns the session file path.
func (l *RunLogger) Path() string {
	return l.path
}

// Close writes the session footer and closes the file.
func (l *RunLogger) Close() error {
	if l.file == nil {
		return nil
	}
	l.writeBanner(fmt.Sprintf("🛑 OPTIMIZATION SESSION ENDED after %s", time.Since(l.started).Round(time.Millisecond)))

	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.file.Close()
	l.file = nil
	return err
}
