// Package intent resolves inbound events to exactly one member of the
// closed intent set. Button replies resolve through a static table; free
// text goes to the external classifier behind a confidence gate.
package intent

// Intent is one member of the closed intent set. Every inbound event
// resolves to exactly one Intent.
type Intent string

// The closed intent set.
const (
	Greeting          Intent = "greeting"
	Help              Intent = "help"
	ShowResult        Intent = "show-result"
	ShowAttendance    Intent = "show-attendance"
	ShowSchedule      Intent = "show-schedule"
	ContactMentor     Intent = "contact-mentor"
	ContactDepartment Intent = "contact-department"
	ContactAuthority  Intent = "contact-authority"
	ContactFaculty    Intent = "contact-faculty"
	MoreOptions       Intent = "more-options"
	UsageExample      Intent = "usage-example"
	Unrecognized      Intent = "unrecognized"
)

// All returns every member of the intent set. The action router must
// cover each of these.
func All() []Intent {
	return []Intent{
		Greeting,
		Help,
		ShowResult,
		ShowAttendance,
		ShowSchedule,
		ContactMentor,
		ContactDepartment,
		ContactAuthority,
		ContactFaculty,
		MoreOptions,
		UsageExample,
		Unrecognized,
	}
}

// Labels returns the classifier label vocabulary: every intent except
// Unrecognized, which is the fallback rather than a label the model may
// choose explicitly (the prompt still allows it as the none-fits answer).
func Labels() []string {
	all := All()
	labels := make([]string, 0, len(all)-1)
	for _, it := range all {
		if it == Unrecognized {
			continue
		}
		labels = append(labels, string(it))
	}
	return labels
}

// FromLabel maps a classifier label to an Intent.
func FromLabel(label string) (Intent, bool) {
	for _, it := range All() {
		if string(it) == label {
			return it, true
		}
	}
	return Unrecognized, false
}

// Sub is the scope selection rider for intents with sub-menus. It
// travels with the resolved intent so the handler knows which branch the
// user picked without any per-sender state.
type Sub string

// Sub-selection values.
const (
	SubNone         Sub = ""
	SubToday        Sub = "today"
	SubOverall      Sub = "overall"
	SubLastSemester Sub = "last"
	SubAllSemesters Sub = "all"

	// Pages of the more-options tree.
	SubContacts     Sub = "contacts"
	SubContactsMore Sub = "contacts-more"
)

// Source names how an event was resolved.
type Source string

// Resolution sources.
const (
	SourceButton   Source = "button"   // static reply-id table
	SourceText     Source = "text"     // accepted classifier verdict
	SourceOverride Source = "override" // literal help override
	SourceGate     Source = "gate"     // verdict rejected by confidence gate
	SourceDegraded Source = "degraded" // classifier unavailable
)

// Resolution is the outcome of classifying one event.
type Resolution struct {
	Intent Intent
	Sub    Sub
	Source Source
}
