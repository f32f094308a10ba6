package email

import (
	"context"

	"github.com/servipro/marketplace-api/pkg/logger"
)

type logSender struct {
	logger *logger.Logger
}

// NewLogSender returns a sender that only logs. Used when SMTP is not
// configured, so notification content stays observable in development.
func NewLogSender(log *logger.Logger) Sender {
	return &logSender{logger: log}
}

func (s *logSender) Send(_ context.Context, to, subject, body string) error {
	s.logger.Info("email (not dispatched)", "to", to, "subject", subject, "body", body)
	return nil
}
