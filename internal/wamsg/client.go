package wamsg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/metrics"
)

// Sender delivers a payload to a destination. The dispatcher depends on this
// interface so tests can substitute a fake transport.
type Sender interface {
	Send(ctx context.Context, to string, payload Payload) error
}

// Client is the Meta Graph API transport for outbound messages.
// Delivery retries and transport-level errors are its concern alone;
// the dispatcher never retries sends.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	phoneID     string
	accessToken string
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

// ClientConfig holds configuration for creating a new Client.
type ClientConfig struct {
	BaseURL     string // e.g. https://graph.facebook.com/v19.0
	PhoneID     string // Business phone number id
	AccessToken string
	Timeout     time.Duration
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
}

// NewClient creates a new Graph API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" || cfg.PhoneID == "" || cfg.AccessToken == "" {
		return nil, fmt.Errorf("wamsg: base URL, phone id, and access token are required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     cfg.BaseURL,
		phoneID:     cfg.PhoneID,
		accessToken: cfg.AccessToken,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
	}, nil
}

// graphError is the Graph API error envelope.
type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Send delivers one payload to the destination phone number.
func (c *Client) Send(ctx context.Context, to string, payload Payload) error {
	if payload.IsZero() {
		return fmt.Errorf("wamsg: refusing to send empty payload")
	}

	body, err := buildMessageBody(to, payload)
	if err != nil {
		return fmt.Errorf("wamsg: build message body: %w", err)
	}

	start := time.Now()
	err = c.post(ctx, "/messages", body)
	if c.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		c.metrics.RecordSend(string(payload.Kind()), status, time.Since(start).Seconds())
	}
	if err != nil {
		return err
	}

	if c.logger != nil {
		c.logger.WithModule("wamsg").
			WithSender(to).
			WithField("kind", string(payload.Kind())).
			Debug("Message sent")
	}
	return nil
}

// MarkRead marks an inbound message as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	if messageID == "" {
		return nil
	}
	body := map[string]any{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	return c.post(ctx, "/messages", body)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	endpoint := fmt.Sprintf("%s/%s%s", c.baseURL, c.phoneID, path)

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("wamsg: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("wamsg: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.NewTransportError(path, 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var ge graphError
		if jsonErr := json.Unmarshal(raw, &ge); jsonErr == nil && ge.Error.Message != "" {
			return errors.NewTransportError(path, resp.StatusCode,
				fmt.Errorf("%s (code %d)", ge.Error.Message, ge.Error.Code))
		}
		return errors.NewTransportError(path, resp.StatusCode, fmt.Errorf("unexpected response"))
	}

	return nil
}

// buildMessageBody converts a payload to the Graph API request body.
func buildMessageBody(to string, payload Payload) (map[string]any, error) {
	body := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                to,
	}

	switch payload.Kind() {
	case KindText:
		text, _ := payload.Text()
		body["type"] = "text"
		body["text"] = map[string]any{"body": text.Body, "preview_url": false}

	case KindMenu:
		menu, _ := payload.Menu()
		buttons := make([]map[string]any, len(menu.Options))
		for i, opt := range menu.Options {
			buttons[i] = map[string]any{
				"type":  "reply",
				"reply": map[string]string{"id": opt.ID, "title": opt.Label},
			}
		}
		body["type"] = "interactive"
		body["interactive"] = map[string]any{
			"type":   "button",
			"body":   map[string]string{"text": menu.Prompt},
			"action": map[string]any{"buttons": buttons},
		}

	case KindContacts:
		card, _ := payload.Contacts()
		phones := make([]map[string]string, len(card.Phones))
		for i, ph := range card.Phones {
			entry := map[string]string{"phone": ph.Number}
			if ph.Type != "" {
				entry["type"] = ph.Type
			}
			phones[i] = entry
		}
		body["type"] = "contacts"
		body["contacts"] = []map[string]any{{
			"name": map[string]string{
				"formatted_name": card.FormattedName,
				"first_name":     card.FirstName,
			},
			"phones": phones,
		}}

	case KindTemplate:
		tmpl, _ := payload.Template()
		var headerParams, bodyParams []map[string]any
		for _, p := range tmpl.Parameters {
			switch p.Type {
			case "document":
				doc := map[string]string{"link": p.DocumentLink}
				if p.Filename != "" {
					doc["filename"] = p.Filename
				}
				headerParams = append(headerParams, map[string]any{"type": "document", "document": doc})
			case "text":
				bodyParams = append(bodyParams, map[string]any{"type": "text", "text": p.Text})
			}
		}
		var components []map[string]any
		if len(headerParams) > 0 {
			components = append(components, map[string]any{"type": "header", "parameters": headerParams})
		}
		if len(bodyParams) > 0 {
			components = append(components, map[string]any{"type": "body", "parameters": bodyParams})
		}
		body["type"] = "template"
		body["template"] = map[string]any{
			"name":       tmpl.Name,
			"language":   map[string]string{"code": tmpl.Language},
			"components": components,
		}

	case KindImage:
		img, _ := payload.Image()
		image := map[string]string{"link": img.Link}
		if img.Caption != "" {
			image["caption"] = img.Caption
		}
		body["type"] = "image"
		body["image"] = image

	default:
		return nil, fmt.Errorf("unknown payload kind %q", payload.Kind())
	}

	return body, nil
}
