package email

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cmlabs-hris/kintai-backend-go/internal/config"
	"github.com/emersion/go-sasl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg config.SMTPConfig, send sendFunc) *emailServiceImpl {
	t.Helper()
	svc, err := NewEmailService(cfg)
	require.NoError(t, err)
	impl := svc.(*emailServiceImpl)
	impl.send = send
	impl.backoff = func(int) time.Duration { return 0 }
	return impl
}

func TestSendRequestDecision_SkipsWithoutHost(t *testing.T) {
	called := false
	svc := newTestService(t, config.SMTPConfig{}, func(string, sasl.Client, string, []string, io.Reader) error {
		called = true
		return nil
	})

	err := svc.SendRequestDecision("tanaka@example.com", RequestDecisionData{Title: "Approved"})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestSendRequestDecision_RendersTemplate(t *testing.T) {
	var gotAddr string
	var gotBody string
	cfg := config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com", FromName: "Kintai"}
	svc := newTestService(t, cfg, func(addr string, _ sasl.Client, _ string, to []string, r io.Reader) error {
		gotAddr = addr
		b, _ := io.ReadAll(r)
		gotBody = string(b)
		assert.Equal(t, []string{"tanaka@example.com"}, to)
		return nil
	})

	err := svc.SendRequestDecision("tanaka@example.com", RequestDecisionData{
		Username: "tanaka",
		Kind:     "overtime",
		Outcome:  "approved",
		Title:    "Overtime request approved",
		Message:  "Your overtime request was approved.",
		Period:   "2025-03-10",
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Contains(t, gotBody, "Subject: Overtime request approved")
	assert.Contains(t, gotBody, "Hello tanaka")
	assert.Contains(t, gotBody, "2025-03-10")
}

func TestSendRequestDecision_RetriesThenFails(t *testing.T) {
	attempts := 0
	cfg := config.SMTPConfig{Host: "smtp.example.com", Port: 25}
	svc := newTestService(t, cfg, func(string, sasl.Client, string, []string, io.Reader) error {
		attempts++
		return errors.New("connection refused")
	})

	err := svc.SendRequestDecision("tanaka@example.com", RequestDecisionData{Title: "Rejected"})
	require.Error(t, err)
	assert.Equal(t, maxRetries, attempts)
}
