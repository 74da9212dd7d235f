package intent

import (
	"testing"
)

func TestAllCoversEveryIntentOnce(t *testing.T) {
	t.Parallel()

	seen := make(map[Intent]bool)
	for _, it := range All() {
		if seen[it] {
			t.Errorf("Intent %q listed twice", it)
		}
		seen[it] = true
	}
	if len(seen) != 12 {
		t.Errorf("Expected 12 intents, got %d", len(seen))
	}
	if !seen[Unrecognized] {
		t.Error("Unrecognized must be part of the intent set")
	}
}

func TestLabelsExcludeUnrecognized(t *testing.T) {
	t.Parallel()

	for _, label := range Labels() {
		if label == string(Unrecognized) {
			t.Error("Labels() must not include unrecognized")
		}
	}
	if len(Labels()) != len(All())-1 {
		t.Errorf("Expected %d labels, got %d", len(All())-1, len(Labels()))
	}
}

func TestFromLabel(t *testing.T) {
	t.Parallel()

	if it, ok := FromLabel("show-attendance"); !ok || it != ShowAttendance {
		t.Errorf("FromLabel(show-attendance) = %v, %v", it, ok)
	}
	if it, ok := FromLabel("order-pizza"); ok || it != Unrecognized {
		t.Errorf("FromLabel(order-pizza) = %v, %v", it, ok)
	}
}

func TestResolveReplyDeterministic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		replyID    string
		buttonText string
		wantIntent Intent
		wantSub    Sub
	}{
		{"greeting by id", ReplyGreeting, "", Greeting, SubNone},
		{"help by id", ReplyHelp, "", Help, SubNone},
		{"result menu", ReplyResult, "", ShowResult, SubNone},
		{"result last semester", ReplyResultLast, "", ShowResult, SubLastSemester},
		{"result all semesters", ReplyResultAll, "", ShowResult, SubAllSemesters},
		{"attendance menu", ReplyAttendance, "", ShowAttendance, SubNone},
		{"attendance today", ReplyAttendanceToday, "", ShowAttendance, SubToday},
		{"attendance overall", ReplyAttendanceOverall, "", ShowAttendance, SubOverall},
		{"schedule", ReplySchedule, "", ShowSchedule, SubNone},
		{"mentor", ReplyContactMentor, "", ContactMentor, SubNone},
		{"department", ReplyContactDepartment, "", ContactDepartment, SubNone},
		{"authority", ReplyContactAuthority, "", ContactAuthority, SubNone},
		{"faculty", ReplyContactFaculty, "", ContactFaculty, SubNone},
		{"more options", ReplyMoreOptions, "", MoreOptions, SubNone},
		{"usage example", ReplyUsageExample, "", UsageExample, SubNone},
		{"template button by text", "", "Attendance", ShowAttendance, SubNone},
		{"template button text case-insensitive", "", "  HELP ", Help, SubNone},
		{"unmapped id", "emoji-reaction", "", Unrecognized, SubNone},
		{"unmapped text", "", "do my homework", Unrecognized, SubNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ResolveReply(tt.replyID, tt.buttonText)
			if got.Intent != tt.wantIntent || got.Sub != tt.wantSub {
				t.Errorf("ResolveReply(%q, %q) = %+v, want intent=%v sub=%v",
					tt.replyID, tt.buttonText, got, tt.wantIntent, tt.wantSub)
			}
		})
	}
}

// Same reply must resolve identically on repeated calls.
func TestResolveReplyStable(t *testing.T) {
	t.Parallel()

	first := ResolveReply(ReplyAttendanceToday, "")
	for i := 0; i < 10; i++ {
		if got := ResolveReply(ReplyAttendanceToday, ""); got != first {
			t.Fatalf("Resolution changed between calls: %+v vs %+v", got, first)
		}
	}
}
