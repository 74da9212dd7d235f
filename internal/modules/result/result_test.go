package result

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/storage"
)

type stubRepo struct {
	semGrades []storage.SubjectGrade
	allGrades []storage.SubjectGrade
	err       error
}

func (s *stubRepo) GetSemesterGrades(context.Context, string, int) ([]storage.SubjectGrade, error) {
	return s.semGrades, s.err
}

func (s *stubRepo) GetAllGrades(context.Context, string) ([]storage.SubjectGrade, error) {
	return s.allGrades, s.err
}

type stubStore struct {
	exists    bool
	existsErr error
	presigned string
}

func (s *stubStore) Upload(context.Context, string, io.Reader, string) error { return nil }

func (s *stubStore) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return s.presigned + key, nil
}

func (s *stubStore) Exists(context.Context, string) (bool, error) {
	return s.exists, s.existsErr
}

var testStudent = &session.Student{
	RegistrationNo: "12018765",
	FirstName:      "Asha",
	LastName:       "Verma",
	GuardianName:   "Suresh Verma",
	Semester:       5,
}

func TestHandleScopeMenu(t *testing.T) {
	t.Parallel()

	h := New(Config{Repository: &stubRepo{}})
	p, err := h.Handle(context.Background(), testStudent, intent.SubNone)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	menu, ok := p.Menu()
	if !ok {
		t.Fatalf("Expected menu, got %v", p.Kind())
	}
	if len(menu.Options) != 2 {
		t.Fatalf("Expected exactly 2 scope options, got %d", len(menu.Options))
	}
	if menu.Options[0].ID != intent.ReplyResultLast || menu.Options[1].ID != intent.ReplyResultAll {
		t.Errorf("Unexpected scope options: %+v", menu.Options)
	}
}

func TestHandleLastSemesterDocument(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{semGrades: []storage.SubjectGrade{
		{Semester: 5, SubjectCode: "CSE301", Grade: "A", TGPA: 8.4},
	}}
	store := &stubStore{exists: true, presigned: "https://store.example/"}
	h := New(Config{Repository: repo, Store: store, KeyPrefix: "results"})

	p, err := h.Handle(context.Background(), testStudent, intent.SubLastSemester)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	tmpl, ok := p.Template()
	if !ok {
		t.Fatalf("Expected document template, got %v", p.Kind())
	}
	if tmpl.Name != TemplateName {
		t.Errorf("Template name = %q", tmpl.Name)
	}
	if len(tmpl.Parameters) != 3 {
		t.Fatalf("Expected 3 parameters, got %d", len(tmpl.Parameters))
	}

	doc := tmpl.Parameters[0]
	if doc.Type != "document" || !strings.Contains(doc.DocumentLink, "results/12018765/result-last.pdf") {
		t.Errorf("Unexpected document parameter: %+v", doc)
	}
	if doc.Filename != "12018765-result-last.pdf" {
		t.Errorf("Unexpected filename %q", doc.Filename)
	}
	if tmpl.Parameters[1].Text != "Suresh Verma" {
		t.Errorf("Expected guardian name parameter, got %+v", tmpl.Parameters[1])
	}
	if tmpl.Parameters[2].Text != "Semester 5" {
		t.Errorf("Expected term parameter, got %+v", tmpl.Parameters[2])
	}
}

// The stored key must be identical for identical (registration, scope)
// inputs on repeated turns.
func TestHandleDocumentKeyDeterministic(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{semGrades: []storage.SubjectGrade{{Semester: 5, SubjectCode: "CSE301", Grade: "A", TGPA: 8.4}}}
	store := &stubStore{exists: true}
	h := New(Config{Repository: repo, Store: store, KeyPrefix: "results"})

	first, err := h.Handle(context.Background(), testStudent, intent.SubLastSemester)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	second, err := h.Handle(context.Background(), testStudent, intent.SubLastSemester)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}

	a, _ := first.Template()
	b, _ := second.Template()
	if a.Parameters[0].DocumentLink != b.Parameters[0].DocumentLink {
		t.Error("Document link changed between identical requests")
	}
}

func TestHandleFallsBackToTextWithoutDocument(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{semGrades: []storage.SubjectGrade{
		{Semester: 5, SubjectCode: "CSE301", Grade: "A", TGPA: 8.4},
		{Semester: 5, SubjectCode: "CSE302", Grade: "B+", TGPA: 8.4},
	}}
	h := New(Config{Repository: repo, Store: &stubStore{exists: false}, KeyPrefix: "results"})

	p, err := h.Handle(context.Background(), testStudent, intent.SubLastSemester)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text, ok := p.Text()
	if !ok {
		t.Fatalf("Expected text fallback, got %v", p.Kind())
	}
	if !strings.Contains(text.Body, "CSE301") || !strings.Contains(text.Body, "TGPA: 8.40") {
		t.Errorf("Unexpected fallback body:\n%s", text.Body)
	}
}

func TestHandleEmptyGrades(t *testing.T) {
	t.Parallel()

	h := New(Config{Repository: &stubRepo{}})
	p, err := h.Handle(context.Background(), testStudent, intent.SubAllSemesters)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text, ok := p.Text()
	if !ok || text.Body == "" {
		t.Fatalf("Expected friendly text for empty grades, got %v", p.Kind())
	}
}

func TestHandleRepositoryError(t *testing.T) {
	t.Parallel()

	h := New(Config{Repository: &stubRepo{err: errors.New("db down")}})
	_, err := h.Handle(context.Background(), testStudent, intent.SubLastSemester)
	if err == nil {
		t.Fatal("Expected error to surface for the dispatcher's apology path")
	}
	if got := domerrors.GetUserMessage(err); got != fetchApology {
		t.Errorf("User message = %q, want the fetch apology", got)
	}
}

func TestFormatLastSemester(t *testing.T) {
	t.Parallel()

	got := FormatLastSemester(5, []storage.SubjectGrade{
		{Semester: 5, SubjectCode: "CSE301", Grade: "A", TGPA: 8.4},
		{Semester: 5, SubjectCode: "MTH201", Grade: "B", TGPA: 8.4},
	})
	if !strings.HasPrefix(got, "*Result of last semester (Semester: 5)*") {
		t.Errorf("Unexpected header:\n%s", got)
	}
	if !strings.HasSuffix(got, "*Semester 5 TGPA: 8.40*") {
		t.Errorf("Unexpected footer:\n%s", got)
	}
	if !strings.Contains(got, "Subject Code: MTH201\nGrade: B") {
		t.Errorf("Missing subject line:\n%s", got)
	}
}

func TestFormatAllSemesters(t *testing.T) {
	t.Parallel()

	got := FormatAllSemesters([]storage.SubjectGrade{
		{Semester: 4, SubjectCode: "MTH201", Grade: "B", TGPA: 7.8},
		{Semester: 5, SubjectCode: "CSE301", Grade: "A", TGPA: 8.4},
		{Semester: 5, SubjectCode: "CSE302", Grade: "B+", TGPA: 8.4},
	})

	// One TGPA footer per semester.
	if strings.Count(got, "TGPA") != 2 {
		t.Errorf("Expected 2 TGPA footers:\n%s", got)
	}
	if !strings.Contains(got, "*Semester 4 TGPA: 7.80*") {
		t.Errorf("Missing semester 4 footer:\n%s", got)
	}
	if !strings.HasSuffix(got, "*Semester 5 TGPA: 8.40*") {
		t.Errorf("Final footer must close the last semester:\n%s", got)
	}
	if strings.Index(got, "Semester 4 Result") > strings.Index(got, "Semester 5 Result") {
		t.Error("Semesters out of order")
	}
}

func TestHandleAllSemestersUsesAllGrades(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{
		allGrades: []storage.SubjectGrade{
			{Semester: 4, SubjectCode: "MTH201", Grade: "B", TGPA: 7.8},
			{Semester: 5, SubjectCode: "CSE301", Grade: "A", TGPA: 8.4},
		},
	}
	h := New(Config{Repository: repo})

	p, err := h.Handle(context.Background(), testStudent, intent.SubAllSemesters)
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text, ok := p.Text()
	if !ok {
		t.Fatalf("Expected text payload without a store wired, got %v", p.Kind())
	}
	if !strings.Contains(text.Body, "ALL SEMESTERS") {
		t.Errorf("Unexpected body:\n%s", text.Body)
	}
}
