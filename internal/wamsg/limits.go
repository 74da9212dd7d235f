package wamsg

// WhatsApp Cloud API limits.
// Reference: https://developers.facebook.com/docs/whatsapp/cloud-api/guides/send-messages
const (
	// MaxTextLength is the message body limit for text messages.
	MaxTextLength = 4096

	// MaxMenuOptions is the cap on interactive reply buttons per message.
	MaxMenuOptions = 3

	// MaxButtonTitleLength is the reply button label limit.
	MaxButtonTitleLength = 20

	// MaxMenuBodyLength is the interactive message body limit.
	MaxMenuBodyLength = 1024

	// MaxImageCaptionLength is the media caption limit.
	MaxImageCaptionLength = 1024
)
