package webhook

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/event"
)

// notification mirrors the Graph API webhook envelope, limited to the
// fields this service consumes.
type notification struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Field string      `json:"field"`
			Value changeValue `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

type changeValue struct {
	MessagingProduct string `json:"messaging_product"`
	Messages         []struct {
		From      string `json:"from"`
		ID        string `json:"id"`
		Timestamp string `json:"timestamp"`
		Type      string `json:"type"`
		Text      *struct {
			Body string `json:"body"`
		} `json:"text"`
		Button *struct {
			Text    string `json:"text"`
			Payload string `json:"payload"`
		} `json:"button"`
		Interactive *struct {
			Type        string `json:"type"`
			ButtonReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"button_reply"`
			ListReply *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
			} `json:"list_reply"`
		} `json:"interactive"`
	} `json:"messages"`
	Statuses []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		Timestamp   string `json:"timestamp"`
		RecipientID string `json:"recipient_id"`
	} `json:"statuses"`
}

// ParseNotification converts one webhook body into normalized events.
// Unknown message types become TypeUnsupported so the sender still gets
// a reply; a body that is not a WhatsApp notification at all is a
// malformed-event error.
func ParseNotification(body []byte) ([]event.Event, error) {
	var n notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, fmt.Errorf("%w: %v", domerrors.ErrMalformedEvent, err)
	}
	if n.Object != "whatsapp_business_account" {
		return nil, fmt.Errorf("%w: unexpected object %q", domerrors.ErrMalformedEvent, n.Object)
	}

	var events []event.Event
	for _, entry := range n.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			events = append(events, parseValue(change.Value)...)
		}
	}
	return events, nil
}

func parseValue(v changeValue) []event.Event {
	events := make([]event.Event, 0, len(v.Messages)+len(v.Statuses))

	for _, m := range v.Messages {
		ev := event.Event{
			Sender:    m.From,
			MessageID: m.ID,
			Timestamp: parseUnix(m.Timestamp),
		}
		switch m.Type {
		case "text":
			ev.Type = event.TypeText
			if m.Text != nil {
				ev.Text = m.Text.Body
			}
		case "button":
			ev.Type = event.TypeButton
			if m.Button != nil {
				ev.ReplyID = m.Button.Payload
				ev.ButtonText = m.Button.Text
			}
		case "interactive":
			ev.Type = event.TypeInteractive
			if m.Interactive != nil {
				switch {
				case m.Interactive.ButtonReply != nil:
					ev.ReplyID = m.Interactive.ButtonReply.ID
					ev.ButtonText = m.Interactive.ButtonReply.Title
				case m.Interactive.ListReply != nil:
					ev.ReplyID = m.Interactive.ListReply.ID
					ev.ButtonText = m.Interactive.ListReply.Title
				}
			}
		default:
			ev.Type = event.TypeUnsupported
			ev.MediaType = m.Type
		}
		events = append(events, ev)
	}

	for _, s := range v.Statuses {
		events = append(events, event.Event{
			Type:      event.TypeStatus,
			Sender:    s.RecipientID,
			MessageID: s.ID,
			Timestamp: parseUnix(s.Timestamp),
			Status:    s.Status,
		})
	}

	return events
}

// parseUnix converts the Graph API's string unix timestamp; a bad value
// yields the zero time rather than an error.
func parseUnix(s string) time.Time {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil || sec <= 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}
