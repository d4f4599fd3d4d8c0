package mail

import (
	"bytes"
	"fmt"
	"text/template"

	"gopkg.in/gomail.v2"
)

const alertTemplate = `A scheduled message could not be delivered and has been marked as failed.

Message ID: {{.MessageID}}
{{- if .ChannelName}}
Channel:    {{.ChannelName}}
{{- end}}
Reason:     {{.Reason}}

The message will not be retried. Review it in the dashboard and reschedule if needed.
`

func NewAlertSender(host string, port int, user, password, from, to string) *AlertSender {
	return &AlertSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

// SendScheduledMessageAlert notifies the operator that a scheduled message
// exhausted its delivery attempts.
func (s *AlertSender) SendScheduledMessageAlert(messageID, channelName, reason string) error {
	data := ScheduledMessageAlertData{
		MessageID:   messageID,
		ChannelName: channelName,
		Reason:      reason,
	}

	t, err := template.New("alert").Parse(alertTemplate)
	if err != nil {
		return fmt.Errorf("parse alert template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("render alert template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("Scheduled message %s failed", messageID))
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send alert email: %w", err)
	}

	return nil
}
