package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes notifications to the log. It is used when no broker is
// configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (LogSender) Send(_ context.Context, address, content string) error {
	logrus.WithField("address", address).Infof("Notification: %s", content)
	return nil
}
