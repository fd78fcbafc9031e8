package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gzhole/skillhook/internal/engine"
	"github.com/gzhole/skillhook/internal/logger"
	"github.com/gzhole/skillhook/internal/rules"
)

var (
	ErrNoInput       = errors.New("no hook payload: stdin is a terminal")
	ErrEmptyInput    = errors.New("empty hook payload")
	ErrInvalidInput  = errors.New("invalid hook payload")
	ErrMissingPrompt = errors.New("hook payload has no prompt field")
)

// hookInput is the JSON payload the host sends on stdin. Only Prompt is
// required.
type hookInput struct {
	SessionID      string  `json:"session_id"`
	TranscriptPath string  `json:"transcript_path"`
	Cwd            string  `json:"cwd"`
	PermissionMode string  `json:"permission_mode"`
	HookEventName  string  `json:"hook_event_name"`
	Prompt         *string `json:"prompt"`
}

func newHookCmd(ra *RootArgs) *cobra.Command {
	return &cobra.Command{
		Use:   "hook",
		Short: "Handle a UserPromptSubmit hook payload",
		Long: `Reads the host's hook JSON payload from stdin, matches the prompt against
the merged skill rules, and writes the hook response to stdout.

Nothing is written when no skill matches. A critical skill with block
enforcement produces "decision": "block". The exit status is non-zero only
when the payload cannot be read or the evaluation itself fails.

Register it in .claude/settings.json:
  "hooks": {"UserPromptSubmit": [{"hooks": [{"type": "command", "command": "skillhook hook"}]}]}`,
		Args: cobra.NoArgs,
		RunE: ra.runHook,
	}
}

func (ra *RootArgs) runHook(cmd *cobra.Command, _ []string) error {
	input, err := readHookInput(cmd.InOrStdin())
	if err != nil {
		return err
	}

	res, err := ra.newEngine().Evaluate(*input.Prompt)
	if err != nil {
		return err
	}

	if res.Verdict.Matched() {
		ra.audit(input, res)
	}

	out := res.Verdict.Output(input.HookEventName)
	if out == nil {
		slog.Debug("no skills matched", slog.Int("rules", len(res.Rules)))
		return nil
	}

	return writeJSON(cmd.OutOrStdout(), out, false)
}

func readHookInput(r io.Reader) (*hookInput, error) {
	if f, ok := r.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return nil, ErrNoInput
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	var input hookInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if input.Prompt == nil {
		return nil, ErrMissingPrompt
	}

	return &input, nil
}

// audit records the activation when an audit log is configured. Failures
// are logged and never change the verdict.
func (ra *RootArgs) audit(input *hookInput, res *engine.Result) {
	if ra.Config.AuditLog == "" {
		return
	}

	auditLogger, err := logger.New(ra.Config.AuditLog)
	if err != nil {
		slog.Warn("audit log open failed", slog.String("path", ra.Config.AuditLog), slog.Any("error", err))
		return
	}
	defer func() {
		_ = auditLogger.Close()
	}()

	decision := "allow"
	if res.Verdict.ShouldBlock {
		decision = "block"
	}

	var skipped []string
	for _, r := range res.Sources {
		if r.Status() == rules.StatusSkipped {
			skipped = append(skipped, r.Source.Path)
		}
	}

	event := logger.AuditEvent{
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		InvocationID:   uuid.NewString(),
		SessionID:      input.SessionID,
		HookEvent:      input.HookEventName,
		ProjectDir:     ra.Config.ProjectDir,
		Prompt:         *input.Prompt,
		MatchedRules:   res.Verdict.Names(),
		BlockingRules:  res.Verdict.BlockingRules,
		Decision:       decision,
		SkippedSources: skipped,
	}

	if err := auditLogger.Log(event); err != nil {
		slog.Warn("audit log failed", slog.Any("error", err))
	}
}
