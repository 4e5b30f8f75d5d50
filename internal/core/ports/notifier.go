package ports

import "context"

type NotificationSender interface {
	Send(ctx context.Context, address, content string) error
}
