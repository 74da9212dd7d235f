package bot

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/campuskit/campus-wabot-go/internal/dispatch"
	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/event"
	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/modules/attendance"
	"github.com/campuskit/campus-wabot-go/internal/modules/menus"
	"github.com/campuskit/campus-wabot-go/internal/nlu"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/storage"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

type fakeSessions struct {
	students map[string]*session.Student
}

func (f *fakeSessions) ResolveStudent(_ context.Context, waID string) (*session.Student, error) {
	s, ok := f.students[waID]
	if !ok {
		return nil, domerrors.ErrUnknownSender
	}
	return s, nil
}

type fakeSender struct {
	to       []string
	payloads []wamsg.Payload
	err      error
}

func (f *fakeSender) Send(_ context.Context, to string, payload wamsg.Payload) error {
	f.to = append(f.to, to)
	f.payloads = append(f.payloads, payload)
	return f.err
}

type stubText struct {
	verdict *nlu.Classification
	err     error
	calls   int
}

func (s *stubText) Classify(context.Context, string) (*nlu.Classification, error) {
	s.calls++
	return s.verdict, s.err
}

func (s *stubText) Provider() string { return "stub" }

type fakeAttendanceRepo struct{}

func (fakeAttendanceRepo) GetDayAttendance(context.Context, string, string) ([]storage.AttendanceRow, error) {
	return nil, nil
}

func (fakeAttendanceRepo) GetOverallAttendance(context.Context, string, int) ([]storage.OverallAttendanceRow, error) {
	return nil, nil
}

// newTestProcessor wires a processor with real menu and attendance
// handlers, text actions for everything else, and the given classifier.
func newTestProcessor(t *testing.T, text nlu.TextClassifier, sender *fakeSender) *Processor {
	t.Helper()

	menu := menus.New()
	att := attendance.New(attendance.Config{Repository: fakeAttendanceRepo{}})

	textAction := func(body string) dispatch.Action {
		return func(context.Context, *session.Student, intent.Sub) (wamsg.Payload, error) {
			return wamsg.NewText(body)
		}
	}
	router, err := dispatch.New(map[intent.Intent]dispatch.Action{
		intent.Greeting:          menu.Greeting,
		intent.Help:              menu.Help,
		intent.ShowResult:        textAction("result"),
		intent.ShowAttendance:    att.Handle,
		intent.ShowSchedule:      textAction("schedule"),
		intent.ContactMentor:     textAction("mentor"),
		intent.ContactDepartment: textAction("department"),
		intent.ContactAuthority:  textAction("authority"),
		intent.ContactFaculty:    textAction("faculty"),
		intent.MoreOptions:       menu.MoreOptions,
		intent.UsageExample:      menu.UsageExample,
		intent.Unrecognized:      menu.NotUnderstood,
	})
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}

	classifier := intent.New(intent.Config{
		Text:                text,
		ConfidenceThreshold: -0.4,
	})

	sessions := &fakeSessions{students: map[string]*session.Student{
		"919876543210": {RegistrationNo: "21BCS1234", FirstName: "Asha", Semester: 4},
	}}

	p, err := New(Config{
		Sessions:   sessions,
		Classifier: classifier,
		Router:     router,
		Sender:     sender,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func lastPayload(t *testing.T, sender *fakeSender) wamsg.Payload {
	t.Helper()
	if len(sender.payloads) != 1 {
		t.Fatalf("sent %d payloads, want 1", len(sender.payloads))
	}
	return sender.payloads[0]
}

func TestAttendanceButtonYieldsScopeMenu(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	text := &stubText{}
	p := newTestProcessor(t, text, sender)

	err := p.ProcessEvent(context.Background(), event.Event{
		Type:    event.TypeButton,
		Sender:  "919876543210",
		ReplyID: "Attendance",
	})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if text.calls != 0 {
		t.Errorf("button reply reached the text classifier %d times", text.calls)
	}

	menu, ok := lastPayload(t, sender).Menu()
	if !ok {
		t.Fatal("expected a menu payload")
	}
	if len(menu.Options) != 2 {
		t.Fatalf("scope menu has %d options, want 2", len(menu.Options))
	}
	ids := []string{menu.Options[0].ID, menu.Options[1].ID}
	if ids[0] != intent.ReplyAttendanceToday || ids[1] != intent.ReplyAttendanceOverall {
		t.Errorf("scope menu ids = %v", ids)
	}
}

func TestLiteralHelpBypassesLowConfidenceClassifier(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	text := &stubText{verdict: &nlu.Classification{Label: "greeting", Confidence: -0.9, Provider: "stub"}}
	p := newTestProcessor(t, text, sender)

	err := p.ProcessEvent(context.Background(), event.Event{
		Type:   event.TypeText,
		Sender: "919876543210",
		Text:   "help",
	})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if text.calls != 0 {
		t.Errorf("literal help reached the classifier %d times", text.calls)
	}

	menu, ok := lastPayload(t, sender).Menu()
	if !ok {
		t.Fatal("expected the help menu")
	}
	want, _ := menus.New().Help(context.Background(), nil, intent.SubNone)
	wantMenu, _ := want.Menu()
	if menu.Prompt != wantMenu.Prompt {
		t.Errorf("help prompt = %q, want canonical %q", menu.Prompt, wantMenu.Prompt)
	}
}

func TestLowConfidenceTextFallsBackToNotUnderstood(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	text := &stubText{verdict: &nlu.Classification{Label: "show-result", Confidence: -1.7, Provider: "stub"}}
	p := newTestProcessor(t, text, sender)

	err := p.ProcessEvent(context.Background(), event.Event{
		Type:   event.TypeText,
		Sender: "919876543210",
		Text:   "xyzzy 123",
	})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if text.calls != 1 {
		t.Errorf("classifier called %d times, want 1", text.calls)
	}

	txt, ok := lastPayload(t, sender).Text()
	if !ok {
		t.Fatal("expected a text payload")
	}
	want, _ := menus.New().NotUnderstood(context.Background(), nil, intent.SubNone)
	wantText, _ := want.Text()
	if txt.Body != wantText.Body {
		t.Errorf("body = %q, want canonical %q", txt.Body, wantText.Body)
	}
}

func TestStatusEventDiscardedSilently(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	p := newTestProcessor(t, &stubText{}, sender)

	err := p.ProcessEvent(context.Background(), event.Event{
		Type:   event.TypeStatus,
		Sender: "919876543210",
		Status: "delivered",
	})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if len(sender.payloads) != 0 {
		t.Errorf("status event produced %d sends, want 0", len(sender.payloads))
	}
}

func TestUnsupportedMediaGetsPoliteReply(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	p := newTestProcessor(t, &stubText{}, sender)

	err := p.ProcessEvent(context.Background(), event.Event{
		Type:      event.TypeUnsupported,
		Sender:    "919876543210",
		MediaType: "audio",
	})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}

	txt, ok := lastPayload(t, sender).Text()
	if !ok {
		t.Fatal("expected a text payload")
	}
	if !strings.Contains(txt.Body, "audio") {
		t.Errorf("body = %q, want media type named", txt.Body)
	}
}

func TestUnknownSenderGetsNeutralReply(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	text := &stubText{}
	p := newTestProcessor(t, text, sender)

	err := p.ProcessEvent(context.Background(), event.Event{
		Type:   event.TypeText,
		Sender: "910000000000",
		Text:   "show my result",
	})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}
	if text.calls != 0 {
		t.Errorf("unknown sender reached the classifier %d times", text.calls)
	}

	txt, ok := lastPayload(t, sender).Text()
	if !ok {
		t.Fatal("expected a text payload")
	}
	if !strings.Contains(txt.Body, "enrolled students") {
		t.Errorf("body = %q", txt.Body)
	}
}

func TestHandlerFailureSendsApology(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	menu := menus.New()
	boom := func(context.Context, *session.Student, intent.Sub) (wamsg.Payload, error) {
		return wamsg.Payload{}, errors.New("provider down")
	}
	table := map[intent.Intent]dispatch.Action{intent.Unrecognized: menu.NotUnderstood}
	for _, in := range intent.All() {
		if in != intent.Unrecognized {
			table[in] = boom
		}
	}
	router, err := dispatch.New(table)
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}

	p, err := New(Config{
		Sessions: &fakeSessions{students: map[string]*session.Student{
			"919876543210": {RegistrationNo: "21BCS1234"},
		}},
		Classifier: intent.New(intent.Config{}),
		Router:     router,
		Sender:     sender,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = p.ProcessEvent(context.Background(), event.Event{
		Type:    event.TypeButton,
		Sender:  "919876543210",
		ReplyID: intent.ReplyResult,
	})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}

	txt, ok := lastPayload(t, sender).Text()
	if !ok {
		t.Fatal("expected a text payload")
	}
	if txt.Body != apologyText {
		t.Errorf("body = %q, want the generic apology", txt.Body)
	}
}

func TestHandlerFailureUsesWrappedUserMessage(t *testing.T) {
	t.Parallel()

	const friendly = "Results are being recalculated, please check back soon."

	sender := &fakeSender{}
	menu := menus.New()
	wrapped := func(context.Context, *session.Student, intent.Sub) (wamsg.Payload, error) {
		return wamsg.Payload{}, domerrors.NewWrapper("result", "load_grades").
			Wrap(errors.New("db down"), friendly)
	}
	table := map[intent.Intent]dispatch.Action{intent.Unrecognized: menu.NotUnderstood}
	for _, in := range intent.All() {
		if in != intent.Unrecognized {
			table[in] = wrapped
		}
	}
	router, err := dispatch.New(table)
	if err != nil {
		t.Fatalf("dispatch.New: %v", err)
	}

	p, err := New(Config{
		Sessions: &fakeSessions{students: map[string]*session.Student{
			"919876543210": {RegistrationNo: "21BCS1234"},
		}},
		Classifier: intent.New(intent.Config{}),
		Router:     router,
		Sender:     sender,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = p.ProcessEvent(context.Background(), event.Event{
		Type:    event.TypeButton,
		Sender:  "919876543210",
		ReplyID: intent.ReplyResult,
	})
	if err != nil {
		t.Fatalf("ProcessEvent: %v", err)
	}

	txt, ok := lastPayload(t, sender).Text()
	if !ok {
		t.Fatal("expected a text payload")
	}
	if txt.Body != friendly {
		t.Errorf("body = %q, want the handler's user message", txt.Body)
	}
}

func TestSendFailureSurfaces(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{err: errors.New("network down")}
	p := newTestProcessor(t, &stubText{}, sender)

	err := p.ProcessEvent(context.Background(), event.Event{
		Type:    event.TypeButton,
		Sender:  "919876543210",
		ReplyID: intent.ReplyGreeting,
	})
	if err == nil {
		t.Fatal("expected a delivery error")
	}
}
