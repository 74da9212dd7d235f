// Package session resolves inbound senders to their student context.
// Every dispatched event carries an immutable Student snapshot; handlers
// read from it and never write back.
package session

import (
	"context"
	"strings"
)

// Student is the resolved context for one sender. Fields mirror the
// enrollment record and never change during a turn.
type Student struct {
	RegistrationNo string `json:"registration_no"`
	WAID           string `json:"wa_id"`
	FirstName      string `json:"first_name"`
	MiddleName     string `json:"middle_name,omitempty"`
	LastName       string `json:"last_name"`
	GuardianName   string `json:"guardian_name,omitempty"`
	CourseCode     string `json:"course_code"`
	Department     string `json:"department,omitempty"`
	Semester       int    `json:"semester"`
	Section        string `json:"section,omitempty"`
	MentorID       string `json:"mentor_id,omitempty"`
	HostelID       int    `json:"hostel_id,omitempty"`
	HostelBlock    string `json:"hostel_block,omitempty"`
}

// FullName joins the name parts, skipping an empty middle name.
func (s *Student) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{s.FirstName, s.MiddleName, s.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Provider resolves a WhatsApp sender id to a Student. Implementations
// return errors.ErrUnknownSender when the id is not enrolled.
type Provider interface {
	ResolveStudent(ctx context.Context, waID string) (*Student, error)
}
