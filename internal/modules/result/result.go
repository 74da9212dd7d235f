// Package result serves semester results: the scope sub-menu, the stored
// result-sheet document, and the formatted grade fallback.
package result

import (
	"context"
	"fmt"
	"strings"
	"time"

	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/logger"
	"github.com/campuskit/campus-wabot-go/internal/objstore"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

// TemplateName is the approved document template for result sheets.
const TemplateName = "result_sheet"

const fetchApology = "Sorry, your result can't be fetched right now. Please try again in a little while."

var errWrap = domerrors.NewWrapper("result", "load_grades")

// Handler serves result requests.
type Handler struct {
	repo       storage.ResultRepository
	store      objstore.Store
	keyPrefix  string
	presignTTL time.Duration
	log        *logger.Logger
}

// Config holds Handler dependencies.
type Config struct {
	Repository storage.ResultRepository
	Store      objstore.Store // nil disables document delivery
	KeyPrefix  string
	PresignTTL time.Duration
	Logger     *logger.Logger
}

// New creates the result handler.
func New(cfg Config) *Handler {
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Handler{
		repo:       cfg.Repository,
		store:      cfg.Store,
		keyPrefix:  cfg.KeyPrefix,
		presignTTL: ttl,
		log:        cfg.Logger,
	}
}

// Handle serves one result turn. Without a sub-selection it offers the
// scope menu; with one it delivers the result for that scope.
func (h *Handler) Handle(ctx context.Context, student *session.Student, sub intent.Sub) (wamsg.Payload, error) {
	switch sub {
	case intent.SubLastSemester:
		return h.deliver(ctx, student, "last")
	case intent.SubAllSemesters:
		return h.deliver(ctx, student, "all")
	default:
		return wamsg.NewMenu(
			"Which result would you like?",
			[]wamsg.MenuOption{
				{ID: intent.ReplyResultLast, Label: "Last semester"},
				{ID: intent.ReplyResultAll, Label: "All semesters"},
			},
		)
	}
}

func (h *Handler) deliver(ctx context.Context, student *session.Student, scope string) (wamsg.Payload, error) {
	var (
		grades []storage.SubjectGrade
		err    error
	)
	if scope == "last" {
		grades, err = h.repo.GetSemesterGrades(ctx, student.RegistrationNo, student.Semester)
	} else {
		grades, err = h.repo.GetAllGrades(ctx, student.RegistrationNo)
	}
	if err != nil {
		return wamsg.Payload{}, errWrap.Wrap(err, fetchApology)
	}
	if len(grades) == 0 {
		return wamsg.NewText("Your result isn't available yet. Please check again once it has been published.")
	}

	// Prefer the stored result sheet; fall back to formatted text when
	// no document has been published for this scope.
	if h.store != nil {
		key := objstore.ResultDocumentKey(h.keyPrefix, student.RegistrationNo, scope)
		exists, err := h.store.Exists(ctx, key)
		if err != nil && h.log != nil {
			h.log.WithModule("result").WithError(err).Warn("Result sheet lookup failed")
		}
		if err == nil && exists {
			link, err := h.store.PresignGet(ctx, key, h.presignTTL)
			if err != nil {
				return wamsg.Payload{}, fmt.Errorf("result: presign document: %w", err)
			}
			return h.documentPayload(student, scope, link)
		}
	}

	if scope == "last" {
		return wamsg.NewText(FormatLastSemester(student.Semester, grades))
	}
	return wamsg.NewText(FormatAllSemesters(grades))
}

func (h *Handler) documentPayload(student *session.Student, scope, link string) (wamsg.Payload, error) {
	filename := fmt.Sprintf("%s-result-%s.pdf", student.RegistrationNo, scope)
	guardian := student.GuardianName
	if guardian == "" {
		guardian = "Guardian"
	}
	return wamsg.NewDocumentTemplate(TemplateName, "en", []wamsg.TemplateParameter{
		{Type: "document", DocumentLink: link, Filename: filename},
		{Type: "text", Text: guardian},
		{Type: "text", Text: fmt.Sprintf("Semester %d", student.Semester)},
	})
}

// FormatLastSemester renders one semester's grades with the TGPA footer.
func FormatLastSemester(semester int, grades []storage.SubjectGrade) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Result of last semester (Semester: %d)*\n", semester)
	for _, g := range grades {
		fmt.Fprintf(&b, "\nSubject Code: %s\nGrade: %s\n", g.SubjectCode, g.Grade)
	}
	fmt.Fprintf(&b, "\n*Semester %d TGPA: %.2f*", semester, grades[0].TGPA)
	return b.String()
}

// FormatAllSemesters renders every semester's grades with a TGPA footer
// per semester. Grades must be ordered by semester.
func FormatAllSemesters(grades []storage.SubjectGrade) string {
	var b strings.Builder
	b.WriteString("*RESULT OF ALL SEMESTERS*\n")

	current := 0
	var tgpa float64
	for _, g := range grades {
		if g.Semester != current {
			if current != 0 {
				fmt.Fprintf(&b, "\n*Semester %d TGPA: %.2f*\n", current, tgpa)
			}
			current = g.Semester
			fmt.Fprintf(&b, "\n*Semester %d Result:*\n", current)
		}
		tgpa = g.TGPA
		fmt.Fprintf(&b, "\nSubject Code: %s\nGrade: %s\n", g.SubjectCode, g.Grade)
	}
	if current != 0 {
		fmt.Fprintf(&b, "\n*Semester %d TGPA: %.2f*", current, tgpa)
	}
	return b.String()
}
