package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gzhole/skillhook/internal/redact"
)

// AuditEvent records one prompt that activated at least one skill.
type AuditEvent struct {
	Timestamp      string   `json:"timestamp"`
	InvocationID   string   `json:"invocation_id"`
	SessionID      string   `json:"session_id,omitempty"`
	HookEvent      string   `json:"hook_event,omitempty"`
	ProjectDir     string   `json:"project_dir,omitempty"`
	Prompt         string   `json:"prompt"`
	MatchedRules   []string `json:"matched_rules"`
	BlockingRules  []string `json:"blocking_rules,omitempty"`
	Decision       string   `json:"decision"`
	SkippedSources []string `json:"skipped_sources,omitempty"`
}

// AuditLogger appends AuditEvents to a JSONL file.
type AuditLogger struct {
	file *os.File
	mu   sync.Mutex
}

func New(path string) (*AuditLogger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}

	return &AuditLogger{file: file}, nil
}

func (l *AuditLogger) Log(event AuditEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	event.Prompt = redact.Redact(event.Prompt)

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	data = append(data, '\n')
	_, err = l.file.Write(data)
	return err
}

func (l *AuditLogger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// ReadEvents loads every well-formed event from a JSONL audit file. A missing
// file yields no events; malformed lines are skipped.
func ReadEvents(path string) ([]AuditEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var event AuditEvent
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, scanner.Err()
}
