// Package wamsg provides outbound WhatsApp message payload construction and
// the Graph API transport client. A Payload is a tagged union over the five
// supported message shapes; exactly one variant is populated per instance and
// construction enforces the platform limits.
package wamsg

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Kind identifies the populated payload variant.
type Kind string

// Payload kinds.
const (
	KindText     Kind = "text"
	KindMenu     Kind = "menu"
	KindContacts Kind = "contacts"
	KindTemplate Kind = "template"
	KindImage    Kind = "image"
)

// Payload is an outbound message, exactly one variant populated.
// Construct via the New* functions; the zero value is invalid.
type Payload struct {
	kind     Kind
	text     *Text
	menu     *Menu
	contacts *ContactCard
	template *DocumentTemplate
	image    *Image
}

// Text is a plain text message body.
type Text struct {
	Body string
}

// MenuOption is one interactive reply button.
type MenuOption struct {
	ID    string // Stable reply identifier echoed back by the platform
	Label string // Button title shown to the user
}

// Menu is an interactive reply-button message.
type Menu struct {
	Prompt  string
	Options []MenuOption
}

// Phone is a single phone entry on a contact card.
type Phone struct {
	Number string
	Type   string // e.g. "WORK", "CELL"
}

// ContactCard is a structured contact message.
type ContactCard struct {
	FormattedName string
	FirstName     string
	Phones        []Phone
}

// TemplateParameter is one typed parameter of a document template.
type TemplateParameter struct {
	// Type is "document" or "text".
	Type string
	// Text carries the value for text parameters.
	Text string
	// DocumentLink and Filename carry the value for document parameters.
	DocumentLink string
	Filename     string
}

// DocumentTemplate is a named message template carrying a document
// attachment plus free-text fields.
type DocumentTemplate struct {
	Name       string
	Language   string // BCP-47 language code, e.g. "en"
	Parameters []TemplateParameter
}

// Image is a media message referencing a rendered image by link.
type Image struct {
	Link    string
	Caption string
}

// Kind returns the populated variant.
func (p Payload) Kind() Kind {
	return p.kind
}

// Text returns the text variant, or false if another variant is populated.
func (p Payload) Text() (*Text, bool) {
	return p.text, p.kind == KindText
}

// Menu returns the menu variant, or false if another variant is populated.
func (p Payload) Menu() (*Menu, bool) {
	return p.menu, p.kind == KindMenu
}

// Contacts returns the contact-card variant, or false if another variant is populated.
func (p Payload) Contacts() (*ContactCard, bool) {
	return p.contacts, p.kind == KindContacts
}

// Template returns the document-template variant, or false if another variant is populated.
func (p Payload) Template() (*DocumentTemplate, bool) {
	return p.template, p.kind == KindTemplate
}

// Image returns the image variant, or false if another variant is populated.
func (p Payload) Image() (*Image, bool) {
	return p.image, p.kind == KindImage
}

// IsZero reports whether the payload has no variant populated.
func (p Payload) IsZero() bool {
	return p.kind == ""
}

// NewText creates a text payload. The body is truncated at the platform limit.
func NewText(body string) (Payload, error) {
	if body == "" {
		return Payload{}, errors.New("wamsg: text body must not be empty")
	}
	if utf8.RuneCountInString(body) > MaxTextLength {
		body = truncateRunes(body, MaxTextLength-3) + "..."
	}
	return Payload{kind: KindText, text: &Text{Body: body}}, nil
}

// NewMenu creates an interactive reply-button payload.
// Options beyond the platform cap of 3 are truncated; zero options is an error.
// Labels are truncated at the button title limit.
func NewMenu(prompt string, options []MenuOption) (Payload, error) {
	if prompt == "" {
		return Payload{}, errors.New("wamsg: menu prompt must not be empty")
	}
	if len(options) == 0 {
		return Payload{}, errors.New("wamsg: menu requires at least one option")
	}
	if len(options) > MaxMenuOptions {
		options = options[:MaxMenuOptions]
	}
	if utf8.RuneCountInString(prompt) > MaxMenuBodyLength {
		prompt = truncateRunes(prompt, MaxMenuBodyLength-3) + "..."
	}

	normalized := make([]MenuOption, len(options))
	for i, opt := range options {
		if opt.ID == "" {
			return Payload{}, fmt.Errorf("wamsg: menu option %d has empty reply id", i)
		}
		label := opt.Label
		if utf8.RuneCountInString(label) > MaxButtonTitleLength {
			label = truncateRunes(label, MaxButtonTitleLength)
		}
		normalized[i] = MenuOption{ID: opt.ID, Label: label}
	}

	return Payload{kind: KindMenu, menu: &Menu{Prompt: prompt, Options: normalized}}, nil
}

// NewContactCard creates a contact-card payload.
// At least one phone number is required.
func NewContactCard(formattedName, firstName string, phones []Phone) (Payload, error) {
	if formattedName == "" {
		return Payload{}, errors.New("wamsg: contact card requires a name")
	}
	if len(phones) == 0 {
		return Payload{}, errors.New("wamsg: contact card requires at least one phone")
	}
	for i, ph := range phones {
		if ph.Number == "" {
			return Payload{}, fmt.Errorf("wamsg: contact phone %d is empty", i)
		}
	}
	return Payload{kind: KindContacts, contacts: &ContactCard{
		FormattedName: formattedName,
		FirstName:     firstName,
		Phones:        phones,
	}}, nil
}

// NewDocumentTemplate creates a document-template payload.
func NewDocumentTemplate(name, language string, params []TemplateParameter) (Payload, error) {
	if name == "" {
		return Payload{}, errors.New("wamsg: template name must not be empty")
	}
	if language == "" {
		language = "en"
	}
	for i, p := range params {
		switch p.Type {
		case "text":
			if p.Text == "" {
				return Payload{}, fmt.Errorf("wamsg: template text parameter %d is empty", i)
			}
		case "document":
			if p.DocumentLink == "" {
				return Payload{}, fmt.Errorf("wamsg: template document parameter %d has no link", i)
			}
		default:
			return Payload{}, fmt.Errorf("wamsg: template parameter %d has unknown type %q", i, p.Type)
		}
	}
	return Payload{kind: KindTemplate, template: &DocumentTemplate{
		Name:       name,
		Language:   language,
		Parameters: params,
	}}, nil
}

// NewImage creates an image payload referencing a rendered image by link.
func NewImage(link, caption string) (Payload, error) {
	if link == "" {
		return Payload{}, errors.New("wamsg: image link must not be empty")
	}
	if utf8.RuneCountInString(caption) > MaxImageCaptionLength {
		caption = truncateRunes(caption, MaxImageCaptionLength-3) + "..."
	}
	return Payload{kind: KindImage, image: &Image{Link: link, Caption: caption}}, nil
}

// truncateRunes truncates s to at most n runes without splitting a rune.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
