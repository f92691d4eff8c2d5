package runtime

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestTraceWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tw, err := NewTraceWriter(path)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}

	outcomes := []*ActionOutcome{
		{Key: "stage-0-action-0", DisplayName: "build: make build", State: StateOK},
		{Key: "stage-0-action-1", DisplayName: "build: make test", State: StateFail},
	}
	for _, o := range outcomes {
		if err := tw.Write("run-1", o); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open trace: %v", err)
	}
	defer f.Close()

	var events []TraceEvent
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev TraceEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		events = append(events, ev)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != "action_outcome" || events[0].RunID != "run-1" {
		t.Errorf("unexpected event: %+v", events[0])
	}
	if events[1].Outcome.State != StateFail {
		t.Errorf("unexpected outcome: %+v", events[1].Outcome)
	}
}

// TestTraceWriterConcurrent exercises the parallel fan-out path: every
// event must land as a complete line.
func TestTraceWriterConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.jsonl")
	tw, err := NewTraceWriter(path)
	if err != nil {
		t.Fatalf("create writer: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			o := &ActionOutcome{Key: actionKey{0, i, "fanout"}.String(), State: StateOK}
			if err := tw.Write("run-2", o); err != nil {
				t.Errorf("write: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if err := tw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open trace: %v", err)
	}
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev TraceEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("corrupt line: %v", err)
		}
		lines++
	}
	if lines != 16 {
		t.Errorf("expected 16 lines, got %d", lines)
	}
}
