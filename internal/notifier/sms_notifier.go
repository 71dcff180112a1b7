package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/pryme0/vyb-q-admin/internal/logger"
)

type SMSResponse struct {
	SMSMessageData struct {
		Message    string `json:"Message"`
		Recipients []struct {
			StatusCode int    `json:"statusCode"`
			Number     string `json:"number"`
			Cost       string `json:"cost"`
			Status     string `json:"status"`
			MessageID  string `json:"messageId"`
		} `json:"Recipients"`
	} `json:"SMSMessageData"`
}

// SendSMS posts message to the Africa's Talking messaging endpoint.
func (n *Default) SendSMS(ctx context.Context, to, message string) error {
	if to == "" {
		return fmt.Errorf("recipient phone number is empty")
	}
	if n.SMS.SMSURL == "" {
		return fmt.Errorf("sms endpoint is not configured")
	}

	data := url.Values{}
	data.Set("username", n.SMS.Username)
	data.Set("to", to)
	data.Set("message", message)
	if n.SMS.SenderID != "" {
		data.Set("from", n.SMS.SenderID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SMS.SMSURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create SMS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", n.SMS.APIKey)

	resp, err := n.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("SMS send failed: %w", err)
	}
	defer resp.Body.Close()

	var smsResp SMSResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&smsResp)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		logger.L().Warn("SMS API rejected message",
			zap.String("to", to),
			zap.Int("status", resp.StatusCode),
			zap.String("message", smsResp.SMSMessageData.Message))
		return fmt.Errorf("SMS API returned non-success status: %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode SMS response: %w", decodeErr)
	}

	logger.L().Info("SMS sent", zap.String("to", to), zap.String("message", smsResp.SMSMessageData.Message))
	return nil
}
