// Package inbox hands commands off to external consumers through the file
// system: one directory per session, one JSON file per command. The server
// only ever writes pending files; the consumer (a hook inside the session
// it belongs to) renames them through the inflight and processed states and
// this package sweeps processed entries away after a retention window.
package inbox

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	mcerrors "github.com/shipkit/mission-control/internal/errors"
	"github.com/shipkit/mission-control/internal/models"
)

// File extensions encoding the entry lifecycle. The rename-based handoff is
// a hard requirement: the consumer runs inside a coding-assistant session
// this server does not control.
const (
	ExtPending   = ".json"
	ExtInflight  = ".inflight"
	ExtProcessed = ".processed"
)

// DefaultSource labels commands enqueued without an explicit origin.
const DefaultSource = "Mission Control Dashboard"

// PromptDisplayLimit truncates prompts in status listings.
const PromptDisplayLimit = 200

// DefaultProcessedRetention is how long processed entries are kept.
const DefaultProcessedRetention = time.Hour

// Status reports a session's queue contents grouped by lifecycle state.
type Status struct {
	Pending   []models.QueueEntry `json:"pending"`
	Inflight  []models.QueueEntry `json:"inflight"`
	Processed []models.QueueEntry `json:"processed"`
	Counts    StatusCounts        `json:"counts"`
}

// StatusCounts summarises the queue sizes per state.
type StatusCounts struct {
	Pending   int `json:"pending"`
	Inflight  int `json:"inflight"`
	Processed int `json:"processed"`
}

// Queue is the file-system-backed command queue.
type Queue struct {
	root      string
	retention time.Duration
	seq       atomic.Uint64
	logger    zerolog.Logger
}

// New creates the queue rooted at dir.
func New(dir string, retention time.Duration, logger zerolog.Logger) (*Queue, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, mcerrors.NewStoreError("inbox", "init", dir, err)
	}
	if retention <= 0 {
		retention = DefaultProcessedRetention
	}
	return &Queue{
		root:      dir,
		retention: retention,
		logger:    logger.With().Str("component", "inbox").Logger(),
	}, nil
}

// Enqueue writes a pending command file into the session's directory and
// returns its command ID. IDs are the enqueue timestamp in milliseconds
// plus a process-wide counter, so two commands in the same millisecond
// still sort and never collide.
func (q *Queue) Enqueue(sessionID, prompt, source string) (string, error) {
	if sessionID == "" || prompt == "" {
		return "", mcerrors.ErrInvalidInput
	}
	if source == "" {
		source = DefaultSource
	}

	dir := filepath.Join(q.root, sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", mcerrors.NewStoreError("inbox", "mkdir", dir, err)
	}

	now := time.Now()
	commandID := fmt.Sprintf("%d-%04d", now.UnixMilli(), q.seq.Add(1)%10000)
	cmd := models.Command{
		Prompt:    prompt,
		Source:    source,
		Timestamp: now.UnixMilli(),
	}
	data, err := json.MarshalIndent(cmd, "", "  ")
	if err != nil {
		return "", mcerrors.NewStoreError("inbox", "encode", commandID, err)
	}

	path := filepath.Join(dir, commandID+ExtPending)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", mcerrors.NewStoreError("inbox", "write", path, err)
	}

	q.logger.Info().
		Str("session_id", sessionID).
		Str("command_id", commandID).
		Str("source", source).
		Msg("command queued")
	return commandID, nil
}

// SessionStatus lists the session's queue grouped by state, prompts
// truncated for display. A missing session directory is a normal empty
// queue, not an error.
func (q *Queue) SessionStatus(sessionID string) Status {
	status := Status{
		Pending:   []models.QueueEntry{},
		Inflight:  []models.QueueEntry{},
		Processed: []models.QueueEntry{},
	}

	dir := filepath.Join(q.root, sessionID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return status
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext != ExtPending && ext != ExtInflight && ext != ExtProcessed {
			continue
		}

		qe := models.QueueEntry{CommandID: strings.TrimSuffix(name, ext)}
		if data, err := os.ReadFile(filepath.Join(dir, name)); err == nil {
			var cmd models.Command
			if json.Unmarshal(data, &cmd) == nil {
				qe.Prompt = truncatePrompt(cmd.Prompt)
				qe.Source = cmd.Source
				qe.Timestamp = cmd.Timestamp
			}
		}

		switch ext {
		case ExtPending:
			status.Pending = append(status.Pending, qe)
		case ExtInflight:
			status.Inflight = append(status.Inflight, qe)
		case ExtProcessed:
			status.Processed = append(status.Processed, qe)
		}
	}

	sortEntries(status.Pending)
	sortEntries(status.Inflight)
	sortEntries(status.Processed)
	status.Counts = StatusCounts{
		Pending:   len(status.Pending),
		Inflight:  len(status.Inflight),
		Processed: len(status.Processed),
	}
	return status
}

// Cleanup deletes processed entries older than the retention window and
// prunes session directories that emptied out. All file-system errors are
// swallowed; cleanup is best-effort by contract.
func (q *Queue) Cleanup(now time.Time) {
	sessions, err := os.ReadDir(q.root)
	if err != nil {
		return
	}
	cutoff := now.Add(-q.retention)

	for _, session := range sessions {
		if !session.IsDir() {
			continue
		}
		dir := filepath.Join(q.root, session.Name())
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		remaining := 0
		for _, entry := range entries {
			if entry.IsDir() {
				remaining++
				continue
			}
			if filepath.Ext(entry.Name()) != ExtProcessed {
				remaining++
				continue
			}
			info, err := entry.Info()
			if err != nil || info.ModTime().After(cutoff) {
				remaining++
				continue
			}
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
				remaining++
				continue
			}
		}

		if remaining == 0 {
			_ = os.Remove(dir)
		}
	}
}

// Run sweeps on the given interval until done is closed.
func (q *Queue) Run(done <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			q.Cleanup(now)
		}
	}
}

func truncatePrompt(prompt string) string {
	runes := []rune(prompt)
	if len(runes) <= PromptDisplayLimit {
		return prompt
	}
	return string(runes[:PromptDisplayLimit])
}

func sortEntries(entries []models.QueueEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CommandID < entries[j].CommandID
	})
}
