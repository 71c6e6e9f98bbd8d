// Package mail delivers reminder mail. The default implementation writes
// the message to the log; wiring a real SMTP relay replaces it behind the
// same interface.
package mail

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer records outgoing mail in the application log instead of
// delivering it. Deployments without a mail relay run on this.
type LogMailer struct {
	from   string
	logger *zap.Logger
}

// NewLogMailer creates a LogMailer with the configured sender address.
func NewLogMailer(from string, logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{from: from, logger: logger}
}

// Send logs the message. It never fails, so a reminder recorded in the same
// transaction always commits.
func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Info("outgoing mail",
		zap.String("from", m.from),
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)),
	)
	return nil
}
