package channel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/shandysiswandi/gobite-otp/internal/otp/entity"
)

// SMSConfig points at an HTTP SMS gateway that accepts a form POST.
type SMSConfig struct {
	Endpoint string
	APIKey   string
	// SenderID defaults to OTPService.
	SenderID string
}

type SMS struct {
	cfg    SMSConfig
	client *http.Client
}

func NewSMS(cfg SMSConfig, client *http.Client) *SMS {
	if cfg.SenderID == "" {
		cfg.SenderID = defaultSMSID
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &SMS{cfg: cfg, client: client}
}

func (s *SMS) Send(ctx context.Context, to entity.Recipient, code string) error {
	form := url.Values{}
	form.Set("to", to.Phone)
	form.Set("from", s.cfg.SenderID)
	form.Set("message", "Code: "+code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway responded %s", resp.Status)
	}
	return nil
}
