package notification

import (
	"testing"
)

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager()
	if nm == nil {
		t.Fatal("NewNotificationManager returned nil")
	}
	if nm.notifiers == nil {
		t.Error("notifiers map not initialized")
	}
	if nm.notificationRegistry == nil {
		t.Error("notificationRegistry map not initialized")
	}
}

func TestRegisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	mockNotifier := &MockNotifier{}

	// Test registering a notifier
	nm.RegisterNotifier(SMSSystem, mockNotifier)
	if n, exists := nm.notifiers[SMSSystem]; !exists {
		t.Error("Notifier not registered")
	} else if n != mockNotifier {
		t.Error("Wrong notifier registered")
	}

	// Test overwriting existing notifier
	newMockNotifier := &MockNotifier{}
	nm.RegisterNotifier(SMSSystem, newMockNotifier)
	if n := nm.notifiers[SMSSystem]; n != newMockNotifier {
		t.Error("Notifier not overwritten")
	}
}

func TestRegisterNotification(t *testing.T) {
	nm := NewNotificationManager()

	tests := []struct {
		name        string
		noticeType  NoticeType
		system      NotificationSystem
		template    NoticeTemplate
		shouldError bool
	}{
		{
			name:        "Valid registration with both Text and Html",
			noticeType:  TwofaChangedNotice,
			system:      EmailSystem,
			template:    NoticeTemplate{Subject: "Settings Changed", Text: "Your settings changed", Html: "<p>Your settings changed</p>"},
			shouldError: false,
		},
		{
			name:        "Valid registration with Text only",
			noticeType:  SmsCodeNotice,
			system:      SMSSystem,
			template:    NoticeTemplate{Subject: "Verification Code", Text: "Your verification code is: {{.Code}}"},
			shouldError: false,
		},
		{
			name:        "Empty notice type",
			noticeType:  "",
			system:      SMSSystem,
			template:    NoticeTemplate{Subject: "Verification Code", Text: "Your verification code is: {{.Code}}"},
			shouldError: true,
		},
		{
			name:        "Empty system",
			noticeType:  SmsCodeNotice,
			system:      "",
			template:    NoticeTemplate{Subject: "Verification Code", Text: "Your verification code is: {{.Code}}"},
			shouldError: true,
		},
		{
			name:        "Empty subject",
			noticeType:  SmsCodeNotice,
			system:      SMSSystem,
			template:    NoticeTemplate{Text: "Your verification code is: {{.Code}}"},
			shouldError: true,
		},
		{
			name:        "No content",
			noticeType:  SmsCodeNotice,
			system:      SMSSystem,
			template:    NoticeTemplate{Subject: "Verification Code"},
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := nm.RegisterNotification(tt.noticeType, tt.system, tt.template)
			if tt.shouldError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.shouldError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestSendRendersTextTemplate(t *testing.T) {
	nm := NewNotificationManager()
	mock := &MockNotifier{}
	nm.RegisterNotifier(SMSSystem, mock)

	err := nm.RegisterNotification(SmsCodeNotice, SMSSystem, NoticeTemplate{
		Subject: "Verification Code",
		Text:    "Your verification code is: {{.Code}}",
	})
	if err != nil {
		t.Fatalf("RegisterNotification failed: %v", err)
	}

	err = nm.Send(SmsCodeNotice, NotificationData{
		To:   "+15551234567",
		Data: map[string]string{"Code": "123456"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if len(mock.SentNotifications) != 1 {
		t.Fatalf("expected 1 sent notification, got %d", len(mock.SentNotifications))
	}
	if got := mock.SentNotifications[0].Body; got != "Your verification code is: 123456" {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestSendPassesThroughBody(t *testing.T) {
	nm := NewNotificationManager()
	mock := &MockNotifier{}
	nm.RegisterNotifier(SMSSystem, mock)

	err := nm.RegisterNotification(SmsCodeNotice, SMSSystem, NoticeTemplate{
		Subject: "Verification Code",
		Text:    "Your verification code is: {{.Code}}",
	})
	if err != nil {
		t.Fatalf("RegisterNotification failed: %v", err)
	}

	err = nm.Send(SmsCodeNotice, NotificationData{
		To:   "+15551234567",
		Body: "Your verification code is: 654321",
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if got := mock.SentNotifications[0].Body; got != "Your verification code is: 654321" {
		t.Errorf("unexpected body: %q", got)
	}
}

func TestSendWithoutTemplate(t *testing.T) {
	nm := NewNotificationManager()
	nm.RegisterNotifier(SMSSystem, &MockNotifier{})

	err := nm.Send(SmsCodeNotice, NotificationData{To: "+15551234567", Body: "hello"})
	if err == nil {
		t.Error("expected error for unregistered notice type")
	}
}

func TestSendWithoutNotifier(t *testing.T) {
	nm := NewNotificationManager()

	err := nm.RegisterNotification(SmsCodeNotice, SMSSystem, NoticeTemplate{
		Subject: "Verification Code",
		Text:    "Your verification code is: {{.Code}}",
	})
	if err != nil {
		t.Fatalf("RegisterNotification failed: %v", err)
	}

	err = nm.Send(SmsCodeNotice, NotificationData{To: "+15551234567", Body: "hello"})
	if err == nil {
		t.Error("expected error when no notifier is registered")
	}
}
