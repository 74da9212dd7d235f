// Package event defines the normalized inbound webhook event. The
// webhook layer parses Graph API notifications into Events; everything
// downstream consumes only this shape.
package event

import "time"

// Type discriminates inbound events.
type Type string

// Inbound event types.
const (
	TypeText        Type = "text"        // free-text message
	TypeButton      Type = "button"      // template quick-reply button
	TypeInteractive Type = "interactive" // interactive button reply
	TypeStatus      Type = "status"      // delivery/read status notification
	TypeUnsupported Type = "unsupported" // any media or unknown message type
)

// Event is one normalized inbound notification.
type Event struct {
	Type      Type
	Sender    string // sender wa_id; recipient_id for statuses
	MessageID string
	Timestamp time.Time

	// Text is set for TypeText.
	Text string

	// ReplyID and ButtonText are set for TypeButton/TypeInteractive.
	// Template buttons only carry display text; interactive replies
	// carry the stable reply id.
	ReplyID    string
	ButtonText string

	// Status is set for TypeStatus ("sent", "delivered", "read", "failed").
	Status string

	// MediaType names the unsupported payload kind for TypeUnsupported
	// ("image", "audio", "sticker", ...).
	MediaType string
}
