package email

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender logs instead of delivering. Used when no API key is configured
// and in tests.
type LogSender struct {
	Log *logrus.Logger
}

func (s *LogSender) Send(ctx context.Context, msg *Message) error {
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"to":      msg.To,
			"subject": msg.Subject,
		}).Info("email delivery skipped (no sender configured)")
	}
	return nil
}
