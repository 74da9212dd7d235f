package config

import "time"

// WhatsApp Cloud API constraints.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/
const (
	// WAMaxReplyButtons is the platform cap on interactive reply buttons.
	WAMaxReplyButtons = 3

	// WAMaxTextLength is the message body character limit.
	WAMaxTextLength = 4096

	// WAMaxButtonTitleLength is the reply button label limit.
	WAMaxButtonTitleLength = 20

	// WAMaxMenuBodyLength is the interactive message body limit.
	WAMaxMenuBodyLength = 1024
)

// DefaultConfidenceThreshold is the log-probability gate below which a text
// classification is discarded in favor of the unrecognized intent.
const DefaultConfidenceThreshold = -0.4

// Default timeouts.
const (
	// WebhookProcessing bounds the handling of one inbound event, including
	// classifier and data-provider calls.
	WebhookProcessing = 25 * time.Second

	// OutboundSend bounds a single Graph API send call.
	OutboundSend = 10 * time.Second

	// ClassifierRequest bounds one classification call.
	ClassifierRequest = 8 * time.Second

	// RenderRequest bounds one chart rendering round trip.
	RenderRequest = 15 * time.Second
)
