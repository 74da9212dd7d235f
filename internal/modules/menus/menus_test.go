package menus

import (
	"context"
	"strings"
	"testing"

	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

func TestGreetingUsesFirstName(t *testing.T) {
	t.Parallel()

	h := New()
	p, err := h.Greeting(context.Background(), &session.Student{FirstName: "Asha"}, intent.SubNone)
	if err != nil {
		t.Fatalf("Greeting failed: %v", err)
	}
	menu, ok := p.Menu()
	if !ok {
		t.Fatalf("Expected menu payload, got %v", p.Kind())
	}
	if !strings.Contains(menu.Prompt, "Asha") {
		t.Errorf("Prompt %q does not greet by name", menu.Prompt)
	}
	if len(menu.Options) > wamsg.MaxMenuOptions {
		t.Errorf("Menu has %d options, max is %d", len(menu.Options), wamsg.MaxMenuOptions)
	}
}

func TestGreetingWithoutSession(t *testing.T) {
	t.Parallel()

	h := New()
	p, err := h.Greeting(context.Background(), nil, intent.SubNone)
	if err != nil {
		t.Fatalf("Greeting without session failed: %v", err)
	}
	if p.Kind() != wamsg.KindMenu {
		t.Errorf("Expected menu, got %v", p.Kind())
	}
}

func TestHelpIsCanonical(t *testing.T) {
	t.Parallel()

	h := New()
	a, err := h.Help(context.Background(), nil, intent.SubNone)
	if err != nil {
		t.Fatalf("Help failed: %v", err)
	}
	b, err := h.Help(context.Background(), &session.Student{FirstName: "Rohan"}, intent.SubNone)
	if err != nil {
		t.Fatalf("Help failed: %v", err)
	}

	menuA, _ := a.Menu()
	menuB, _ := b.Menu()
	if menuA.Prompt != menuB.Prompt || len(menuA.Options) != len(menuB.Options) {
		t.Error("Help menu must be identical regardless of session")
	}
}

func TestMoreOptionsTreeStaysWithinLimit(t *testing.T) {
	t.Parallel()

	h := New()
	for _, sub := range []intent.Sub{intent.SubNone, intent.SubContacts, intent.SubContactsMore} {
		p, err := h.MoreOptions(context.Background(), nil, sub)
		if err != nil {
			t.Fatalf("MoreOptions(%q) failed: %v", sub, err)
		}
		menu, ok := p.Menu()
		if !ok {
			t.Fatalf("MoreOptions(%q): expected menu payload", sub)
		}
		if len(menu.Options) == 0 || len(menu.Options) > wamsg.MaxMenuOptions {
			t.Errorf("MoreOptions(%q): %d options", sub, len(menu.Options))
		}
	}
}

// Every reply id emitted by any menu must resolve through the static
// button table, otherwise a chained turn would dead-end.
func TestMenuOptionIDsResolve(t *testing.T) {
	t.Parallel()

	h := New()
	builders := []func(context.Context, *session.Student, intent.Sub) (wamsg.Payload, error){
		func(ctx context.Context, s *session.Student, sub intent.Sub) (wamsg.Payload, error) {
			return h.Greeting(ctx, s, sub)
		},
		func(ctx context.Context, s *session.Student, sub intent.Sub) (wamsg.Payload, error) {
			return h.Help(ctx, s, sub)
		},
	}
	for _, sub := range []intent.Sub{intent.SubNone, intent.SubContacts, intent.SubContactsMore} {
		sub := sub
		builders = append(builders, func(ctx context.Context, s *session.Student, _ intent.Sub) (wamsg.Payload, error) {
			return h.MoreOptions(ctx, s, sub)
		})
	}

	for _, build := range builders {
		p, err := build(context.Background(), nil, intent.SubNone)
		if err != nil {
			t.Fatalf("Builder failed: %v", err)
		}
		menu, ok := p.Menu()
		if !ok {
			continue
		}
		for _, opt := range menu.Options {
			res := intent.ResolveReply(opt.ID, opt.Label)
			if res.Intent == intent.Unrecognized {
				t.Errorf("Menu option %q (%q) does not resolve", opt.ID, opt.Label)
			}
		}
	}
}

func TestNotUnderstoodAndUsageExampleAreText(t *testing.T) {
	t.Parallel()

	h := New()
	for name, build := range map[string]func(context.Context, *session.Student, intent.Sub) (wamsg.Payload, error){
		"NotUnderstood": h.NotUnderstood,
		"UsageExample":  h.UsageExample,
	} {
		p, err := build(context.Background(), nil, intent.SubNone)
		if err != nil {
			t.Fatalf("%s failed: %v", name, err)
		}
		text, ok := p.Text()
		if !ok {
			t.Fatalf("%s: expected text payload", name)
		}
		if text.Body == "" {
			t.Errorf("%s: empty body", name)
		}
	}
}
