// Package attendance serves attendance views: the scope sub-menu and the
// today/overall views, as a rendered chart image when a renderer is
// configured and a text table otherwise. Weekend dates remap to the
// preceding Friday before any query runs.
package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/render"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

// Handler serves attendance requests.
type Handler struct {
	repo     storage.AttendanceRepository
	renderer render.Renderer
	now      func() time.Time
}

// Config holds Handler dependencies.
type Config struct {
	Repository storage.AttendanceRepository
	Renderer   render.Renderer

	// Now overrides the clock; nil means time.Now.
	Now func() time.Time
}

// New creates the attendance handler.
func New(cfg Config) *Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		repo:     cfg.Repository,
		renderer: cfg.Renderer,
		now:      now,
	}
}

// QueryDate resolves the calendar date attendance is queried for.
// Saturday and Sunday remap to the preceding Friday; lectures don't run
// on weekends, so "today" means the last teaching day.
func QueryDate(ref time.Time) time.Time {
	switch ref.Weekday() {
	case time.Saturday:
		return ref.AddDate(0, 0, -1)
	case time.Sunday:
		return ref.AddDate(0, 0, -2)
	default:
		return ref
	}
}

// Handle serves one attendance turn. Without a sub-selection it offers
// the scope menu; with one it renders the requested view.
func (h *Handler) Handle(ctx context.Context, student *session.Student, sub intent.Sub) (wamsg.Payload, error) {
	switch sub {
	case intent.SubToday:
		return h.today(ctx, student)
	case intent.SubOverall:
		return h.overall(ctx, student)
	default:
		return wamsg.NewMenu(
			"Which attendance view would you like?",
			[]wamsg.MenuOption{
				{ID: intent.ReplyAttendanceToday, Label: "Today"},
				{ID: intent.ReplyAttendanceOverall, Label: "Overall"},
			},
		)
	}
}

func (h *Handler) today(ctx context.Context, student *session.Student) (wamsg.Payload, error) {
	date := QueryDate(h.now()).Format("2006-01-02")
	rows, err := h.repo.GetDayAttendance(ctx, student.RegistrationNo, date)
	if err != nil {
		return wamsg.Payload{}, fmt.Errorf("attendance: fetch day rows: %w", err)
	}
	if len(rows) == 0 {
		return wamsg.NewText(fmt.Sprintf("No attendance has been marked for %s yet.", date))
	}

	// The chart image is best effort: without a renderer, or when the
	// render call fails, the same rows go out as a text table.
	if h.renderer != nil {
		url, err := h.renderer.RenderAttendance(ctx, render.AttendanceRender{
			RegistrationNo: student.RegistrationNo,
			StudentName:    student.FullName(),
			CourseCode:     student.CourseCode,
			Mode:           "today",
			Date:           date,
			DayRows:        rows,
		})
		if err == nil {
			return wamsg.NewImage(url, fmt.Sprintf("Attendance for %s", date))
		}
	}
	return wamsg.NewText(FormatDay(date, rows))
}

func (h *Handler) overall(ctx context.Context, student *session.Student) (wamsg.Payload, error) {
	rows, err := h.repo.GetOverallAttendance(ctx, student.RegistrationNo, student.Semester)
	if err != nil {
		return wamsg.Payload{}, fmt.Errorf("attendance: fetch overall rows: %w", err)
	}
	if len(rows) == 0 {
		return wamsg.NewText("No attendance records are available for this semester yet.")
	}

	if h.renderer != nil {
		url, err := h.renderer.RenderAttendance(ctx, render.AttendanceRender{
			RegistrationNo: student.RegistrationNo,
			StudentName:    student.FullName(),
			CourseCode:     student.CourseCode,
			Mode:           "overall",
			OverallRows:    rows,
		})
		if err == nil {
			return wamsg.NewImage(url, fmt.Sprintf("Overall attendance, semester %d", student.Semester))
		}
	}
	return wamsg.NewText(FormatOverall(student.Semester, rows))
}

// FormatDay renders one day's marked hours as a text table.
func FormatDay(date string, rows []storage.AttendanceRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Attendance for %s*\n", date)
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%s (%s): %s", r.SubjectCode, r.Slot, titleStatus(r.Status))
	}
	return b.String()
}

func titleStatus(status string) string {
	if status == "" {
		return status
	}
	return strings.ToUpper(status[:1]) + status[1:]
}

// FormatOverall renders cumulative percentages as a text table.
func FormatOverall(semester int, rows []storage.OverallAttendanceRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Overall attendance (Semester %d)*\n", semester)
	for _, r := range rows {
		fmt.Fprintf(&b, "\n%s: %.1f%%", r.SubjectCode, r.Percentage)
	}
	return b.String()
}
