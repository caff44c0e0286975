package services

import (
	"context"

	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

// Notifier delivers events to the pages of one session
type Notifier interface {
	Publish(ctx context.Context, sessionID string, t events.MessageType, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Publish(context.Context, string, events.MessageType, interface{}) {}

// orNoop returns n, or a notifier that drops every event when n is nil
func orNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
