package events

import (
	"log"
	"strings"
	"sync"
	"testing"
	"time"
)

// lockedBuffer makes log output safe to read while subscriber
// goroutines are still writing.
type lockedBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (w *lockedBuffer) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.Write(p)
}

func (w *lockedBuffer) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.b.String()
}

func TestSubscribeAudit_LogsPublishedEvents(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	buf := &lockedBuffer{}
	unsub := SubscribeAudit(bus, log.New(buf, "", 0))
	defer unsub()

	bus.Publish(EventRunCompleted, map[string]interface{}{
		"owner":  "org_1",
		"status": "succeeded",
	})
	bus.Publish(EventWorkflowCompleted, nil)

	// Wait for async delivery
	time.Sleep(50 * time.Millisecond)

	out := buf.String()
	if !strings.Contains(out, "[INFO] run_completed owner=org_1 status=succeeded") {
		t.Errorf("missing run audit line, got %q", out)
	}
	if !strings.Contains(out, "[INFO] workflow_completed") {
		t.Errorf("missing workflow audit line, got %q", out)
	}
}

func TestSubscribeAudit_UnsubscribeDetachesAll(t *testing.T) {
	bus := NewBus(10)
	defer bus.Close()

	buf := &lockedBuffer{}
	unsub := SubscribeAudit(bus, log.New(buf, "", 0))
	unsub()

	for _, eventType := range published {
		bus.Publish(eventType, nil)
	}
	time.Sleep(50 * time.Millisecond)

	if out := buf.String(); out != "" {
		t.Errorf("expected no audit lines after unsubscribe, got %q", out)
	}
}
