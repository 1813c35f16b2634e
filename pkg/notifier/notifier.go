package notifier

import (
	"context"

	"go.uber.org/zap"
)

// Notifier delivers an outbound message to one user. How the message reaches
// the messaging platform is outside this service; implementations adapt to
// whatever transport the deployment uses.
type Notifier interface {
	Send(ctx context.Context, userID string, message string) error
}

// LogNotifier writes every notification to the structured log. It is the
// default implementation and the one used by tests.
type LogNotifier struct {
	Log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{Log: log}
}

func (n *LogNotifier) Send(ctx context.Context, userID string, message string) error {
	n.Log.Info("notification dispatched",
		zap.String("user_id", userID),
		zap.String("message", message),
	)
	return nil
}
