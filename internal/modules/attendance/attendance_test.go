package attendance

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/render"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

type stubRepo struct {
	dayRows     []storage.AttendanceRow
	overallRows []storage.OverallAttendanceRow
	err         error

	lastDate string
}

func (s *stubRepo) GetDayAttendance(_ context.Context, _ string, date string) ([]storage.AttendanceRow, error) {
	s.lastDate = date
	return s.dayRows, s.err
}

func (s *stubRepo) GetOverallAttendance(context.Context, string, int) ([]storage.OverallAttendanceRow, error) {
	return s.overallRows, s.err
}

type stubRenderer struct {
	url  string
	err  error
	last render.AttendanceRender
}

func (s *stubRenderer) RenderAttendance(_ context.Context, req render.AttendanceRender) (string, error) {
	s.last = req
	return s.url, s.err
}

var testStudent = &session.Student{
	RegistrationNo: "12018765",
	FirstName:      "Asha",
	LastName:       "Verma",
	CourseCode:     "B.Tech CSE",
	Semester:       5,
}

func TestQueryDateWeekendFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  time.Time
		want string
	}{
		{"monday unchanged", time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC), "2026-02-02"},
		{"friday unchanged", time.Date(2026, 2, 6, 10, 0, 0, 0, time.UTC), "2026-02-06"},
		{"saturday to friday", time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC), "2026-02-06"},
		{"sunday to friday", time.Date(2026, 2, 8, 10, 0, 0, 0, time.UTC), "2026-02-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := QueryDate(tt.ref)
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("QueryDate(%v) = %v, want %s", tt.ref, got, tt.want)
			}
			if got.Weekday() == time.Saturday || got.Weekday() == time.Sunday {
				t.Errorf("QueryDate(%v) returned a weekend day", tt.ref)
			}
		})
	}
}

func TestHandleScopeMenu(t *testing.T) {
	t.Parallel()

	h := New(Config{Repository: &stubRepo{}, Renderer: &stubRenderer{}})
	p, err := h.Handle(context.Background(), testStudent, intent.SubNone)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	menu, ok := p.Menu()
	if !ok {
		t.Fatalf("Expected menu, got %v", p.Kind())
	}
	if len(menu.Options) != 2 {
		t.Fatalf("Expected exactly 2 options, got %d", len(menu.Options))
	}
	if menu.Options[0].ID != intent.ReplyAttendanceToday || menu.Options[1].ID != intent.ReplyAttendanceOverall {
		t.Errorf("Unexpected options: %+v", menu.Options)
	}
}

func TestHandleTodayQueriesRemappedDate(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{dayRows: []storage.AttendanceRow{
		{SubjectCode: "CSE301", Slot: "09:00-09:50", Status: "present", Date: "2026-02-06"},
	}}
	renderer := &stubRenderer{url: "https://store.example/img.png"}
	// Saturday.
	h := New(Config{
		Repository: repo,
		Renderer:   renderer,
		Now:        func() time.Time { return time.Date(2026, 2, 7, 11, 0, 0, 0, time.UTC) },
	})

	p, err := h.Handle(context.Background(), testStudent, intent.SubToday)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if repo.lastDate != "2026-02-06" {
		t.Errorf("Queried %q, want the preceding Friday", repo.lastDate)
	}
	img, ok := p.Image()
	if !ok {
		t.Fatalf("Expected image payload, got %v", p.Kind())
	}
	if img.Link != "https://store.example/img.png" {
		t.Errorf("Unexpected image link %q", img.Link)
	}
	if renderer.last.Mode != "today" || len(renderer.last.DayRows) != 1 {
		t.Errorf("Renderer received unexpected request: %+v", renderer.last)
	}
}

func TestHandleTodayEmpty(t *testing.T) {
	t.Parallel()

	h := New(Config{
		Repository: &stubRepo{},
		Renderer:   &stubRenderer{},
		Now:        func() time.Time { return time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC) },
	})

	p, err := h.Handle(context.Background(), testStudent, intent.SubToday)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text, ok := p.Text()
	if !ok || text.Body == "" {
		t.Fatalf("Expected friendly text for empty day, got %v", p.Kind())
	}
}

func TestHandleOverall(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{url: "https://store.example/overall.png"}
	h := New(Config{
		Repository: &stubRepo{overallRows: []storage.OverallAttendanceRow{
			{SubjectCode: "CSE301", Percentage: 82.5},
		}},
		Renderer: renderer,
	})

	p, err := h.Handle(context.Background(), testStudent, intent.SubOverall)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if p.Kind() != wamsg.KindImage {
		t.Fatalf("Expected image payload, got %v", p.Kind())
	}
	if renderer.last.Mode != "overall" || len(renderer.last.OverallRows) != 1 {
		t.Errorf("Renderer received unexpected request: %+v", renderer.last)
	}
}

func TestHandleRepositoryErrorSurfaces(t *testing.T) {
	t.Parallel()

	h := New(Config{Repository: &stubRepo{err: errors.New("db down")}, Renderer: &stubRenderer{}})
	if _, err := h.Handle(context.Background(), testStudent, intent.SubToday); err == nil {
		t.Fatal("Expected repository error to surface")
	}
	if _, err := h.Handle(context.Background(), testStudent, intent.SubOverall); err == nil {
		t.Fatal("Expected repository error to surface")
	}
}

func TestHandleWithoutRendererFallsBackToText(t *testing.T) {
	t.Parallel()

	h := New(Config{
		Repository: &stubRepo{
			dayRows: []storage.AttendanceRow{
				{SubjectCode: "CSE301", Slot: "09:00-09:50", Status: "present", Date: "2026-02-04"},
				{SubjectCode: "CSE325", Slot: "10:00-10:50", Status: "absent", Date: "2026-02-04"},
			},
			overallRows: []storage.OverallAttendanceRow{
				{SubjectCode: "CSE301", Percentage: 82.5},
			},
		},
		Now: func() time.Time { return time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC) },
	})

	p, err := h.Handle(context.Background(), testStudent, intent.SubToday)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text, ok := p.Text()
	if !ok {
		t.Fatalf("Expected text payload, got %v", p.Kind())
	}
	if !strings.Contains(text.Body, "2026-02-04") ||
		!strings.Contains(text.Body, "CSE301 (09:00-09:50): Present") ||
		!strings.Contains(text.Body, "CSE325 (10:00-10:50): Absent") {
		t.Errorf("Unexpected day table:\n%s", text.Body)
	}

	p, err = h.Handle(context.Background(), testStudent, intent.SubOverall)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text, ok = p.Text()
	if !ok {
		t.Fatalf("Expected text payload, got %v", p.Kind())
	}
	if !strings.Contains(text.Body, "Semester 5") || !strings.Contains(text.Body, "CSE301: 82.5%") {
		t.Errorf("Unexpected overall table:\n%s", text.Body)
	}
}

func TestHandleRendererFailureFallsBackToText(t *testing.T) {
	t.Parallel()

	h := New(Config{
		Repository: &stubRepo{
			dayRows: []storage.AttendanceRow{
				{SubjectCode: "CSE301", Slot: "09:00-09:50", Status: "present", Date: "2026-02-04"},
			},
			overallRows: []storage.OverallAttendanceRow{
				{SubjectCode: "CSE301", Percentage: 82.5},
			},
		},
		Renderer: &stubRenderer{err: errors.New("chart service down")},
		Now:      func() time.Time { return time.Date(2026, 2, 4, 9, 0, 0, 0, time.UTC) },
	})

	for _, sub := range []intent.Sub{intent.SubToday, intent.SubOverall} {
		p, err := h.Handle(context.Background(), testStudent, sub)
		if err != nil {
			t.Fatalf("Handle(%v) failed: %v", sub, err)
		}
		if _, ok := p.Text(); !ok {
			t.Errorf("Handle(%v): expected text fallback, got %v", sub, p.Kind())
		}
	}
}
