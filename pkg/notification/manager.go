package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// NotificationManager routes notices to the notifiers registered for each
// delivery system, using the templates registered per notice type.
type NotificationManager struct {
	notifiers            map[NotificationSystem]Notifier
	notificationRegistry map[NoticeType]map[NotificationSystem]NoticeTemplate
}

// NewNotificationManager creates and returns a new NotificationManager.
func NewNotificationManager() *NotificationManager {
	return &NotificationManager{
		notifiers:            make(map[NotificationSystem]Notifier),
		notificationRegistry: make(map[NoticeType]map[NotificationSystem]NoticeTemplate),
	}
}

// RegisterNotifier registers a notifier for a specific system.
func (nm *NotificationManager) RegisterNotifier(system NotificationSystem, notifier Notifier) {
	nm.notifiers[system] = notifier
}

// RegisterNotification adds a notice template to the registry.
func (nm *NotificationManager) RegisterNotification(noticeType NoticeType, system NotificationSystem, template NoticeTemplate) error {
	if noticeType == "" || system == "" {
		return fmt.Errorf("invalid input: notice type and system cannot be empty")
	}
	if template.Subject == "" {
		return fmt.Errorf("invalid input: template requires a subject")
	}
	if template.Text == "" && template.Html == "" {
		return fmt.Errorf("invalid input: template requires Text or Html content")
	}

	if _, exists := nm.notificationRegistry[noticeType]; !exists {
		nm.notificationRegistry[noticeType] = make(map[NotificationSystem]NoticeTemplate)
	}

	nm.notificationRegistry[noticeType][system] = template
	return nil
}

// Send delivers a notice through every system that has both a template for the
// notice type and a registered notifier. When notification.Body is empty and
// the template carries Text content, the text template is rendered into Body
// before handing off to the notifier.
func (nm *NotificationManager) Send(noticeType NoticeType, notification NotificationData) error {
	systemTemplates, exists := nm.notificationRegistry[noticeType]
	if !exists {
		return fmt.Errorf("no templates registered for notice type: %s", noticeType)
	}

	sent := false
	for system, tmpl := range systemTemplates {
		notifier, exists := nm.notifiers[system]
		if !exists {
			continue
		}

		data := notification
		if data.Body == "" && tmpl.Text != "" {
			body, err := renderText(tmpl.Text, data.Data)
			if err != nil {
				return fmt.Errorf("failed to render template for notice type %s: %w", noticeType, err)
			}
			data.Body = body
		}

		if err := notifier.Send(noticeType, data, tmpl); err != nil {
			return err
		}
		sent = true
	}

	if !sent {
		return fmt.Errorf("no notifier registered for notice type: %s", noticeType)
	}
	return nil
}

func renderText(text string, data map[string]string) (string, error) {
	tmpl, err := template.New("text").Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
