package twofactor

import (
	"context"

	"github.com/harborlabs/harbor-idm/pkg/notification"
)

// NotificationSmsSender adapts a NotificationManager to the SmsSender
// capability: messages go out as sms_code notices through whatever SMS
// notifier the manager has registered.
type NotificationSmsSender struct {
	manager *notification.NotificationManager
}

// NewNotificationSmsSender creates an SmsSender backed by a notification manager
func NewNotificationSmsSender(manager *notification.NotificationManager) *NotificationSmsSender {
	return &NotificationSmsSender{manager: manager}
}

// Send delivers a text message to the given phone number
func (s *NotificationSmsSender) Send(ctx context.Context, phoneNumber, message string) error {
	return s.manager.Send(notification.SmsCodeNotice, notification.NotificationData{
		To:   phoneNumber,
		Body: message,
	})
}
