package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/harrison/testscan/internal/history"
)

// TestHistoryCommandRendersMessages verifies stored failure messages are
// rendered for the console, with diff fences stripped.
func TestHistoryCommandRendersMessages(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")

	store, err := history.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	err = store.RecordRun(context.Background(), history.RunRecord{
		ID:        "run-1",
		StartedAt: time.Now(),
		Outcome:   "completed",
		Failed:    1,
		Tests: []history.TestRecord{
			{
				FullTitle:      "suite > caseB",
				State:          "failed",
				DurationMillis: 7,
				Message:        "AssertionError\n```diff\n+ 1\n- 2\n```",
			},
		},
	})
	store.Close()
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("history_path: "+dbPath+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := NewHistoryCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "--run", "run-1"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "suite > caseB") {
		t.Errorf("output missing the test title: %q", got)
	}
	for _, want := range []string{"AssertionError", "+ 1", "- 2"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing rendered message part %q: %q", want, got)
		}
	}
	if strings.Contains(got, "```") {
		t.Errorf("raw fences leaked into output: %q", got)
	}
}

// TestHistoryCommandListsRuns verifies the default listing of recent runs.
func TestHistoryCommandListsRuns(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")

	store, err := history.NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	err = store.RecordRun(context.Background(), history.RunRecord{
		ID:        "run-1",
		StartedAt: time.Now(),
		Outcome:   "cancelled",
	})
	store.Close()
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("history_path: "+dbPath+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := NewHistoryCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", cfgPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "run-1") || !strings.Contains(out.String(), "cancelled") {
		t.Errorf("run listing = %q", out.String())
	}
}
