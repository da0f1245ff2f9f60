package audit

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

// LogSink writes audit entries as JSON lines through zerolog, either to a
// dedicated file or to any writer.
type LogSink struct {
	mu     sync.Mutex
	logger zerolog.Logger
	file   *os.File
}

// NewLogSink creates a sink writing to w.
func NewLogSink(w io.Writer) *LogSink {
	return &LogSink{
		logger: zerolog.New(w).With().Timestamp().Logger(),
	}
}

// NewFileLogSink creates a sink appending to the file at path.
func NewFileLogSink(path string) (*LogSink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &LogSink{
		logger: zerolog.New(file).With().Timestamp().Logger(),
		file:   file,
	}, nil
}

// Record emits the entry as one JSON line.
func (s *LogSink) Record(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event := s.logger.Log().
		Str("tool_id", entry.ToolID).
		Str("tool", entry.Tool).
		Str("user_id", entry.UserID).
		Dur("duration", entry.Duration).
		Time("executed_at", entry.Timestamp)

	if entry.Params != nil {
		event = event.Interface("params", entry.Params)
	}
	if entry.Error != "" {
		event = event.Str("error", entry.Error)
	} else if entry.Result != nil {
		event = event.Interface("result", entry.Result)
	}

	event.Msg("")
	return nil
}

// Close closes the underlying file, if any.
func (s *LogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		return s.file.Close()
	}
	return nil
}
