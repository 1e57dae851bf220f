package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// TelegramNotifierAdapter implements the Notifier port with the Bot API sendMessage method
type TelegramNotifierAdapter struct {
	token   string
	baseURL string
	client  HTTPClient
	logger  ports.Logger
}

// TelegramNotifierParams holds parameters for creating the Telegram notifier
type TelegramNotifierParams struct {
	BotToken   string
	APIBaseURL string
	Timeout    time.Duration
	Client     HTTPClient
	Logger     ports.Logger
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type botAPIResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
}

func NewTelegramNotifierAdapter(params TelegramNotifierParams) ports.Notifier {
	baseURL := params.APIBaseURL
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}

	client := params.Client
	if client == nil {
		timeout := params.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	return &TelegramNotifierAdapter{
		token:   params.BotToken,
		baseURL: baseURL,
		client:  client,
		logger:  params.Logger,
	}
}

// Send delivers an HTML formatted message to the chat identified by recipientID
func (n *TelegramNotifierAdapter) Send(ctx context.Context, recipientID, text string) error {
	if recipientID == "" {
		return errors.NewValidationError("recipient id cannot be empty")
	}

	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                recipientID,
		Text:                  text,
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return errors.NewDeliveryError("failed to encode telegram message", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.NewDeliveryError("failed to build telegram request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.NewDeliveryError("failed to call telegram", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			n.logger.Warn("Failed to close telegram response body", ports.F("error", closeErr))
		}
	}()

	var apiResp botAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return errors.NewDeliveryError(fmt.Sprintf("telegram returned undecodable response with status %d", resp.StatusCode), err)
	}
	if resp.StatusCode != http.StatusOK || !apiResp.OK {
		return errors.NewDeliveryError(
			fmt.Sprintf("telegram rejected message: %d %s", apiResp.ErrorCode, apiResp.Description), nil)
	}

	return nil
}
