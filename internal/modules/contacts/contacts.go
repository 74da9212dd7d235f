// Package contacts serves the campus directory: mentor, department
// office, authorities (HOD and hostel wardens), and faculty. Lookups are
// keyed by the student's affiliations; an empty result renders a
// friendly text, never an error.
package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

// Handler serves contact lookups.
type Handler struct {
	repo storage.ContactRepository
}

// New creates the contacts handler.
func New(repo storage.ContactRepository) *Handler {
	return &Handler{repo: repo}
}

const notAvailable = "Sorry, that contact isn't available right now. Please check with the campus office."

// Mentor returns the student's mentor as a contact card.
func (h *Handler) Mentor(ctx context.Context, student *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	if student.MentorID == "" {
		return wamsg.NewText(notAvailable)
	}
	mentor, err := h.repo.GetStaffContact(ctx, student.MentorID)
	if errors.Is(err, domerrors.ErrNotFound) {
		return wamsg.NewText(notAvailable)
	}
	if err != nil {
		return wamsg.Payload{}, fmt.Errorf("contacts: fetch mentor: %w", err)
	}
	return contactCard(*mentor)
}

// Department returns the department office contacts as text.
func (h *Handler) Department(ctx context.Context, student *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	offices, err := h.repo.GetContactsByRole(ctx, "office", student.Department)
	if err != nil {
		return wamsg.Payload{}, fmt.Errorf("contacts: fetch department office: %w", err)
	}
	if len(offices) == 0 {
		return wamsg.NewText(notAvailable)
	}
	return wamsg.NewText(formatStaffList(fmt.Sprintf("*%s Department*", student.Department), offices))
}

// Authority returns the HOD and the student's hostel wardens as text.
func (h *Handler) Authority(ctx context.Context, student *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	hods, err := h.repo.GetContactsByRole(ctx, "hod", student.Department)
	if err != nil {
		return wamsg.Payload{}, fmt.Errorf("contacts: fetch hod: %w", err)
	}

	var wardens []storage.HostelWarden
	if student.HostelID != 0 {
		wardens, err = h.repo.GetHostelWardens(ctx, student.HostelID, student.HostelBlock)
		if err != nil {
			return wamsg.Payload{}, fmt.Errorf("contacts: fetch wardens: %w", err)
		}
	}

	if len(hods) == 0 && len(wardens) == 0 {
		return wamsg.NewText(notAvailable)
	}

	var b strings.Builder
	if len(hods) > 0 {
		b.WriteString(formatStaffList("*Head of Department*", hods))
	}
	if len(wardens) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("*Hostel Wardens*")
		for _, w := range wardens {
			role := fmt.Sprintf("Block %s Warden", w.Block)
			if w.IsMainWarden {
				role = "Main Warden"
			}
			fmt.Fprintf(&b, "\n\n%s (%s, %s)\nPhone: %s", w.Name, role, w.HostelName, w.Contact)
		}
	}
	return wamsg.NewText(b.String())
}

// Faculty returns the department faculty list as text.
func (h *Handler) Faculty(ctx context.Context, student *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	faculty, err := h.repo.GetContactsByRole(ctx, "faculty", student.Department)
	if err != nil {
		return wamsg.Payload{}, fmt.Errorf("contacts: fetch faculty: %w", err)
	}
	if len(faculty) == 0 {
		return wamsg.NewText(notAvailable)
	}
	return wamsg.NewText(formatStaffList(fmt.Sprintf("*%s Faculty*", student.Department), faculty))
}

// contactCard builds a contact-card payload from one staff record,
// falling back to text when no phone number is on file.
func contactCard(c storage.StaffContact) (wamsg.Payload, error) {
	if c.Phone == "" {
		return wamsg.NewText(formatStaffList("*Your Mentor*", []storage.StaffContact{c}))
	}
	first := c.Name
	if i := strings.IndexByte(first, ' '); i > 0 {
		first = first[:i]
	}
	return wamsg.NewContactCard(c.Name, first, []wamsg.Phone{{Number: c.Phone, Type: "WORK"}})
}

func formatStaffList(header string, staff []storage.StaffContact) string {
	var b strings.Builder
	b.WriteString(header)
	for _, c := range staff {
		fmt.Fprintf(&b, "\n\n%s", c.Name)
		if c.Phone != "" {
			fmt.Fprintf(&b, "\nPhone: %s", c.Phone)
		}
		if c.Email != "" {
			fmt.Fprintf(&b, "\nEmail: %s", c.Email)
		}
	}
	return b.String()
}
