// Package menus builds the pure template payloads: greeting, help, the
// more-options tree, the usage example, and the not-understood reply.
// No I/O, no failure paths beyond payload validation.
package menus

import (
	"context"
	"fmt"

	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

// Handler builds menu and static-text payloads.
type Handler struct{}

// New creates the menus handler.
func New() *Handler {
	return &Handler{}
}

// Greeting returns the welcome menu.
func (h *Handler) Greeting(_ context.Context, student *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	name := "there"
	if student != nil && student.FirstName != "" {
		name = student.FirstName
	}
	return wamsg.NewMenu(
		fmt.Sprintf("Hey %s! I'm your campus assistant. What would you like to see?", name),
		[]wamsg.MenuOption{
			{ID: intent.ReplyResult, Label: "Result"},
			{ID: intent.ReplyAttendance, Label: "Attendance"},
			{ID: intent.ReplyMoreOptions, Label: "More options"},
		},
	)
}

// Help returns the canonical help menu. The same payload is used for the
// help intent however it was resolved.
func (h *Handler) Help(_ context.Context, _ *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	return wamsg.NewMenu(
		"I can fetch your results, attendance, class schedule, and campus contacts. Pick one to get started, or just type what you need.",
		[]wamsg.MenuOption{
			{ID: intent.ReplyResult, Label: "Result"},
			{ID: intent.ReplyAttendance, Label: "Attendance"},
			{ID: intent.ReplyMoreOptions, Label: "More options"},
		},
	)
}

// MoreOptions returns the chained options tree. The sub-selection picks
// the branch: none is the first page, contacts and contacts-more are the
// directory pages.
func (h *Handler) MoreOptions(_ context.Context, _ *session.Student, sub intent.Sub) (wamsg.Payload, error) {
	switch sub {
	case intent.SubContacts:
		return wamsg.NewMenu(
			"Who would you like to reach?",
			[]wamsg.MenuOption{
				{ID: intent.ReplyContactMentor, Label: "Mentor"},
				{ID: intent.ReplyContactDepartment, Label: "Department"},
				{ID: intent.ReplyContactsMore, Label: "More contacts"},
			},
		)
	case intent.SubContactsMore:
		return wamsg.NewMenu(
			"More campus contacts:",
			[]wamsg.MenuOption{
				{ID: intent.ReplyContactAuthority, Label: "Authorities"},
				{ID: intent.ReplyContactFaculty, Label: "Faculty"},
				{ID: intent.ReplyHelp, Label: "Help"},
			},
		)
	default:
		return wamsg.NewMenu(
			"Here's what else I can do:",
			[]wamsg.MenuOption{
				{ID: intent.ReplySchedule, Label: "Class schedule"},
				{ID: intent.ReplyContacts, Label: "Contacts"},
				{ID: intent.ReplyUsageExample, Label: "How to use"},
			},
		)
	}
}

// UsageExample returns a short how-to text.
func (h *Handler) UsageExample(_ context.Context, _ *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	return wamsg.NewText(
		"Just type what you need, for example:\n" +
			"- \"show my result\"\n" +
			"- \"attendance today\"\n" +
			"- \"class schedule\"\n" +
			"- \"contact my mentor\"\n\n" +
			"Or type \"help\" anytime to see the menu.",
	)
}

// NotUnderstood returns the canonical not-understood reply.
func (h *Handler) NotUnderstood(_ context.Context, _ *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	return wamsg.NewText("Sorry, I didn't understand that. Type \"help\" to see what I can do.")
}
