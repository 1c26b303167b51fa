package services

import (
	"context"
	"fmt"
	"net/smtp"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/sirupsen/logrus"
)

// ReminderNotifier tells a tenant their certificate is about to expire.
type ReminderNotifier interface {
	NotifyReminder(ctx context.Context, coi model.COI) error
}

// LogNotifier only records the reminder. Used when no mail server is configured.
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(log *logrus.Entry) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyReminder(_ context.Context, coi model.COI) error {
	n.log.WithFields(logrus.Fields{
		"coi_id":      coi.ID,
		"tenantEmail": coi.TenantEmail,
		"expiryDate":  coi.ExpiryDate,
	}).Info("[NotifyReminder] reminder recorded")
	return nil
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPNotifier mails the tenant an expiry reminder.
type SMTPNotifier struct {
	cfg SMTPConfig
	log *logrus.Entry

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(cfg SMTPConfig, log *logrus.Entry) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg, log: log, sendMail: smtp.SendMail}
}

func (n *SMTPNotifier) NotifyReminder(ctx context.Context, coi model.COI) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message := reminderMessage(n.cfg.From, coi)

	var auth smtp.Auth
	if n.cfg.Username != "" {
		auth = smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host)
	}

	err := n.sendMail(n.cfg.Host+":"+n.cfg.Port, auth, n.cfg.From, []string{coi.TenantEmail}, message)
	if err != nil {
		n.log.Errorf("[NotifyReminder] Error sending email for coi %s: %v", coi.ID, err)
		return fmt.Errorf("failed to send reminder to %s: %w", coi.TenantEmail, err)
	}
	n.log.Infof("[NotifyReminder] Email sent successfully to %s for coi %s", coi.TenantEmail, coi.ID)
	return nil
}

func reminderMessage(from string, coi model.COI) []byte {
	subject := fmt.Sprintf("Certificate of Insurance expiring: %s", coi.COIName)
	body := fmt.Sprintf(`
	<html>
	<body>
		<h2>Certificate of Insurance Reminder</h2>
		<p>Dear %s,</p>
		<p>Your certificate of insurance on file is due to expire:</p>
		<ul>
			<li><strong>Property:</strong> %s</li>
			<li><strong>Unit:</strong> %s</li>
			<li><strong>Certificate:</strong> %s</li>
			<li><strong>Expiry Date:</strong> %s</li>
		</ul>
		<p>Please send an updated certificate before it expires.</p>
		<p>Best regards,<br>Property Management</p>
	</body>
	</html>
`, coi.TenantName, coi.Property, coi.Unit, coi.COIName, FormatDisplayDate(coi.ExpiryDate))

	return []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + coi.TenantEmail + "\r\n" +
		"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
		body)
}
