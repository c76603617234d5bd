package logger

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/bus"
)

// BusLogHook republishes log entries onto the EventBus so a connected
// chat surface can show them alongside status updates. Advisory only.
type BusLogHook struct {
	eventBus *bus.EventBus
	source   string
}

func NewBusLogHook(eventBus *bus.EventBus, source string) *BusLogHook {
	return &BusLogHook{eventBus: eventBus, source: source}
}

// Levels limits the hook to entries a user might care about; debug
// noise stays in the process log.
func (h *BusLogHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
		logrus.InfoLevel,
	}
}

// Fire is called when a log event occurs.
func (h *BusLogHook) Fire(entry *logrus.Entry) error {
	if h.eventBus == nil {
		return nil
	}

	message := entry.Message
	var fieldParts []string
	for key, value := range entry.Data {
		fieldParts = append(fieldParts, fmt.Sprintf("%s=%v", key, value))
	}
	if len(fieldParts) > 0 {
		message = fmt.Sprintf("%s [%s]", message, strings.Join(fieldParts, ", "))
	}

	h.eventBus.PublishAsync(bus.EventLog, map[string]interface{}{
		"level":     entry.Level.String(),
		"message":   message,
		"source":    h.source,
		"timestamp": entry.Time.Format(time.RFC3339),
	})

	return nil
}
