package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/sakura24999/data-analysis-dashboard/internal/config"
	"github.com/sakura24999/data-analysis-dashboard/internal/session"
	"github.com/sakura24999/data-analysis-dashboard/pkg/contracts/events"
)

// MockNotifier is a mock for the Notifier interface
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Publish(ctx context.Context, sessionID string, t events.MessageType, data interface{}) {
	m.Called(sessionID, t, data)
}

// expectPublish accepts any number of events
func expectPublish(n *MockNotifier) {
	n.On("Publish", mock.Anything, mock.Anything, mock.Anything).Maybe()
}

func newSession(t *testing.T) *session.Session {
	t.Helper()
	store := session.NewStore(config.Default().Session)
	return store.Create()
}

// loadSample puts a built-in sample into a new session
func loadSample(t *testing.T, name string) *session.Session {
	t.Helper()
	sess := newSession(t)
	svc := NewDatasetService(config.Default(), nil, nil, nil)
	if _, err := svc.LoadSample(context.Background(), sess, name); err != nil {
		t.Fatalf("load sample %s: %v", name, err)
	}
	return sess
}
