package services

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	model "github.com/Itish41/COIDashboard/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPNotifierSendsReminder(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth

	n := NewSMTPNotifier(SMTPConfig{Host: "smtp.example.com", Port: "587", Username: "u", Password: "p", From: "leasing@example.com"}, quietLogger())
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	coi := makeCOIs(1)[0]
	require.NoError(t, n.NotifyReminder(context.Background(), coi))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "leasing@example.com", gotFrom)
	assert.Equal(t, []string{coi.TenantEmail}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Certificate of Insurance expiring: General Liability")
	assert.Contains(t, string(gotMsg), "Dec 31, 2025")
}

func TestSMTPNotifierWithoutCredentialsSkipsAuth(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "localhost", Port: "25", From: "a@b.co"}, quietLogger())
	n.sendMail = func(_ string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		assert.Nil(t, a)
		return nil
	}
	require.NoError(t, n.NotifyReminder(context.Background(), makeCOIs(1)[0]))
}

func TestSMTPNotifierWrapsSendError(t *testing.T) {
	sendErr := errors.New("connection refused")
	n := NewSMTPNotifier(SMTPConfig{Host: "localhost", Port: "25", From: "a@b.co"}, quietLogger())
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return sendErr }

	err := n.NotifyReminder(context.Background(), model.COI{ID: "1", TenantEmail: "t@x.io"})
	assert.ErrorIs(t, err, sendErr)
}

func TestSMTPNotifierHonoursCancelledContext(t *testing.T) {
	n := NewSMTPNotifier(SMTPConfig{Host: "localhost", Port: "25"}, quietLogger())
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("sendMail must not be called")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, n.NotifyReminder(ctx, makeCOIs(1)[0]), context.Canceled)
}

func TestLogNotifier(t *testing.T) {
	assert.NoError(t, NewLogNotifier(quietLogger()).NotifyReminder(context.Background(), makeCOIs(1)[0]))
}

func TestFormatDisplayDate(t *testing.T) {
	assert.Equal(t, "Mar 05, 2025", FormatDisplayDate("2025-03-05"))
	assert.Equal(t, "soon", FormatDisplayDate("soon"))
}
