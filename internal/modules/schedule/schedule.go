// Package schedule formats a student's class timetable. Slots are
// grouped by weekday and rendered as a single text payload.
package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

// Handler serves class-schedule lookups.
type Handler struct {
	repo storage.ScheduleRepository
}

// New creates the schedule handler.
func New(repo storage.ScheduleRepository) *Handler {
	return &Handler{repo: repo}
}

// Handle returns the timetable for the student's course, semester and
// section as a text payload.
func (h *Handler) Handle(ctx context.Context, student *session.Student, _ intent.Sub) (wamsg.Payload, error) {
	slots, err := h.repo.GetClassSchedule(ctx, student.CourseCode, student.Semester, student.Section)
	if err != nil {
		return wamsg.Payload{}, fmt.Errorf("schedule: fetch timetable: %w", err)
	}
	if len(slots) == 0 {
		return wamsg.NewText("Your class schedule isn't available yet. Please check back once the timetable is published.")
	}
	return wamsg.NewText(Format(student, slots))
}

// Format renders schedule rows grouped by weekday. Rows are assumed to
// be ordered by weekday then slot, as the repository returns them.
func Format(student *session.Student, slots []storage.ScheduleSlot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Class Schedule (Semester %d, Section %s)*", student.Semester, student.Section)

	lastDay := -1
	for _, s := range slots {
		if s.Weekday != lastDay {
			fmt.Fprintf(&b, "\n\n*%s*", weekdayName(s.Weekday))
			lastDay = s.Weekday
		}
		fmt.Fprintf(&b, "\n%s: %s", s.Slot, s.SubjectCode)
		if s.Room != "" {
			fmt.Fprintf(&b, " (Room %s)", s.Room)
		}
	}
	return b.String()
}

func weekdayName(day int) string {
	if day < 0 || day > 6 {
		return fmt.Sprintf("Day %d", day)
	}
	return time.Weekday(day).String()
}
