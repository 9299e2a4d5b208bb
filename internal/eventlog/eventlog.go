// Package eventlog stores inbound activity events: an append-only JSONL
// file for durability plus a capped in-memory buffer of recent events,
// newest first.
package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/shipkit/mission-control/internal/errors"
	"github.com/shipkit/mission-control/internal/models"
)

// DefaultMaxEvents is the in-memory buffer cap when none is configured.
const DefaultMaxEvents = 1000

// Log is the event store. Safe for concurrent use.
type Log struct {
	mu     sync.RWMutex
	path   string
	recent []models.Event // index 0 = newest
	max    int
	logger zerolog.Logger
}

// New creates the event store backed by the JSONL file at path and loads
// the most recent events from it. A missing or partially corrupt log is
// not fatal; unreadable lines are skipped.
func New(path string, maxEvents int, logger zerolog.Logger) (*Log, error) {
	if maxEvents <= 0 {
		maxEvents = DefaultMaxEvents
	}
	l := &Log{
		path:   path,
		max:    maxEvents,
		logger: logger.With().Str("component", "eventlog").Logger(),
	}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Log) load() error {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.NewStoreError("eventlog", "load", l.path, err)
	}
	defer f.Close()

	// Keep only the newest max lines; the file itself grows unbounded.
	tail := make([]models.Event, 0, l.max)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	skipped := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev models.Event
		if err := json.Unmarshal(line, &ev); err != nil {
			skipped++
			continue
		}
		if len(tail) == l.max {
			copy(tail, tail[1:])
			tail = tail[:l.max-1]
		}
		tail = append(tail, ev)
	}
	if err := scanner.Err(); err != nil {
		l.logger.Warn().Err(err).Msg("event log truncated while loading")
	}

	// File order is oldest first; the buffer wants newest first.
	l.recent = make([]models.Event, len(tail))
	for i, ev := range tail {
		l.recent[len(tail)-1-i] = ev
	}

	l.logger.Info().
		Int("events", len(l.recent)).
		Int("skipped", skipped).
		Msg("loaded events from disk")
	return nil
}

// Append stamps the event with the server receive time, prepends it to the
// in-memory buffer, and appends it to the durable log.
func (l *Log) Append(ev models.Event) error {
	ev.ReceivedAt = time.Now().UnixMilli()

	l.mu.Lock()
	l.recent = append([]models.Event{ev}, l.recent...)
	if len(l.recent) > l.max {
		l.recent = l.recent[:l.max]
	}
	l.mu.Unlock()

	line, err := json.Marshal(ev)
	if err != nil {
		return errors.NewStoreError("eventlog", "encode", l.path, err)
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return errors.NewStoreError("eventlog", "append", l.path, err)
	}
	defer f.Close()
	if _, err := f.Write(append(line, '\n')); err != nil {
		return errors.NewStoreError("eventlog", "append", l.path, err)
	}
	return nil
}

// Recent returns up to limit events, newest first, optionally filtered by
// session ID. limit <= 0 means the whole buffer.
func (l *Log) Recent(limit int, sessionID string) []models.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	src := l.recent
	if sessionID != "" {
		src = make([]models.Event, 0, len(l.recent))
		for _, ev := range l.recent {
			if ev.SessionID == sessionID {
				src = append(src, ev)
			}
		}
	}
	if limit <= 0 || limit > len(src) {
		limit = len(src)
	}
	out := make([]models.Event, limit)
	copy(out, src[:limit])
	return out
}

// Len returns the number of buffered events.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.recent)
}
