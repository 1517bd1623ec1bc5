package events

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// published lists every event type the engine emits.
var published = []EventType{
	EventTaskStarted,
	EventTaskCompleted,
	EventRunCompleted,
	EventStepCompleted,
	EventWorkflowCompleted,
}

// SubscribeAudit attaches a logging subscriber to every published event
// type so each run leaves an audit trail in the log, independent of any
// other listeners. Returns a function detaching all subscriptions.
func SubscribeAudit(bus *Bus, logger *log.Logger) func() {
	unsubs := make([]func(), 0, len(published))
	for _, eventType := range published {
		unsubs = append(unsubs, bus.Subscribe(eventType, func(e Event) {
			logger.Printf("[INFO] %s%s", e.Type, formatData(e.Data))
		}))
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// formatData renders event data as sorted key=value pairs with a
// leading space, keeping audit lines deterministic.
func formatData(data map[string]interface{}) string {
	if len(data) == 0 {
		return ""
	}
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, data[key])
	}
	return b.String()
}
