package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"auctionhouse/internal/shared/logger"
)

// LogNotifier writes winner notifications to the application log.
// Swap in a real provider (SES, SendGrid) behind the same interface
// for production delivery.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{log: logger.GetLogger()}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return errors.New("notification recipient missing")
	}
	n.log.Info("Sending notification",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("body", body),
	)
	return nil
}
