// notifier.go is the SMS gateway collaborator. The gateway is a plain HTTP
// GET API; anything other than a "Success" status in its response is a hard
// failure of the calling flow. The core owns no retry logic for it.
package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSNotifier delivers one-time codes through the SMS gateway.
type SMSNotifier struct {
	GatewayURL string
	APIKey     string
	SenderID   string
	TemplateID string
	Client     *http.Client
}

// NewSMSNotifier builds a notifier with a bounded HTTP client.
func NewSMSNotifier(gatewayURL, apiKey, senderID, templateID string) *SMSNotifier {
	return &SMSNotifier{
		GatewayURL: gatewayURL,
		APIKey:     apiKey,
		SenderID:   senderID,
		TemplateID: templateID,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers a message to a phone number. A transport failure, non-2xx
// response or a body without the gateway's success marker all count as
// failure.
func (n *SMSNotifier) Send(ctx context.Context, phone, message string) error {
	q := url.Values{}
	q.Set("apikey", n.APIKey)
	q.Set("senderid", n.SenderID)
	q.Set("number", phone)
	q.Set("message", message)
	q.Set("templateid", n.TemplateID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.GatewayURL+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := n.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sms gateway request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return fmt.Errorf("sms gateway response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Success") {
		return fmt.Errorf("sms gateway rejected message: %s", strings.TrimSpace(string(body)))
	}
	return nil
}

// OTPMessage formats the verification SMS for a code.
func OTPMessage(code string) string {
	return fmt.Sprintf("Hello, your mobile verification code is %s. Please don't share this code with anyone.", code)
}
