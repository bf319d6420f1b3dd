package notification

// NotificationSystem represents a delivery channel (e.g., email, SMS).
type NotificationSystem string

// NoticeType identifies a kind of notice (e.g., "sms_code", "twofa_changed").
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"
	SMSSystem   NotificationSystem = "sms"

	// SmsCodeNotice carries a one-time verification code to a phone number.
	SmsCodeNotice NoticeType = "sms_code"
	// TwofaChangedNotice informs a user that their 2FA settings changed.
	TwofaChangedNotice NoticeType = "twofa_changed"
)

// NoticeTemplate holds the renderable content registered for a notice type on
// a given system. Text and Html are Go templates over NotificationData.Data.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type NotificationData struct {
	To      string            // Recipient identifier (e.g., email address, phone number)
	Subject string            // Optional: overrides the template subject
	Body    string            // Pre-rendered content; the text template is skipped when set
	Data    map[string]string // Template data
}

type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
