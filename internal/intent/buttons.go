package intent

import "strings"

// Stable reply ids carried by interactive menu options. Menus are built
// with these ids and the resolver maps them straight back, so a chained
// sub-menu needs no per-sender state.
const (
	ReplyGreeting          = "greeting"
	ReplyHelp              = "help"
	ReplyResult            = "result"
	ReplyResultLast        = "result-last"
	ReplyResultAll         = "result-all"
	ReplyAttendance        = "attendance"
	ReplyAttendanceToday   = "attendance-today"
	ReplyAttendanceOverall = "attendance-overall"
	ReplySchedule          = "schedule"
	ReplyContactMentor     = "contact-mentor"
	ReplyContactDepartment = "contact-department"
	ReplyContactAuthority  = "contact-authority"
	ReplyContactFaculty    = "contact-faculty"
	ReplyMoreOptions       = "more-options"
	ReplyContacts          = "contacts"
	ReplyContactsMore      = "contacts-more"
	ReplyUsageExample      = "usage-example"
)

// replyTable is the static, total mapping from reply id to resolution.
var replyTable = map[string]Resolution{
	ReplyGreeting:          {Intent: Greeting, Source: SourceButton},
	ReplyHelp:              {Intent: Help, Source: SourceButton},
	ReplyResult:            {Intent: ShowResult, Source: SourceButton},
	ReplyResultLast:        {Intent: ShowResult, Sub: SubLastSemester, Source: SourceButton},
	ReplyResultAll:         {Intent: ShowResult, Sub: SubAllSemesters, Source: SourceButton},
	ReplyAttendance:        {Intent: ShowAttendance, Source: SourceButton},
	ReplyAttendanceToday:   {Intent: ShowAttendance, Sub: SubToday, Source: SourceButton},
	ReplyAttendanceOverall: {Intent: ShowAttendance, Sub: SubOverall, Source: SourceButton},
	ReplySchedule:          {Intent: ShowSchedule, Source: SourceButton},
	ReplyContactMentor:     {Intent: ContactMentor, Source: SourceButton},
	ReplyContactDepartment: {Intent: ContactDepartment, Source: SourceButton},
	ReplyContactAuthority:  {Intent: ContactAuthority, Source: SourceButton},
	ReplyContactFaculty:    {Intent: ContactFaculty, Source: SourceButton},
	ReplyMoreOptions:       {Intent: MoreOptions, Source: SourceButton},
	ReplyContacts:          {Intent: MoreOptions, Sub: SubContacts, Source: SourceButton},
	ReplyContactsMore:      {Intent: MoreOptions, Sub: SubContactsMore, Source: SourceButton},
	ReplyUsageExample:      {Intent: UsageExample, Source: SourceButton},
}

// buttonTextTable maps template-button display text to reply ids.
// Template buttons don't carry a reply id on the wire, only their text.
var buttonTextTable = map[string]string{
	"hey!":               ReplyGreeting,
	"help":               ReplyHelp,
	"result":             ReplyResult,
	"last semester":      ReplyResultLast,
	"all semesters":      ReplyResultAll,
	"attendance":         ReplyAttendance,
	"today's attendance": ReplyAttendanceToday,
	"overall attendance": ReplyAttendanceOverall,
	"class schedule":     ReplySchedule,
	"mentor":             ReplyContactMentor,
	"department":         ReplyContactDepartment,
	"authorities":        ReplyContactAuthority,
	"faculty":            ReplyContactFaculty,
	"more options":       ReplyMoreOptions,
	"contacts":           ReplyContacts,
	"more contacts":      ReplyContactsMore,
	"how to use":         ReplyUsageExample,
}

// ResolveReply maps a button reply to a Resolution. The reply id wins;
// display text is the fallback for template buttons. Unmapped replies
// resolve to Unrecognized, never an error.
func ResolveReply(replyID, buttonText string) Resolution {
	if res, ok := replyTable[replyID]; ok {
		return res
	}
	// Some clients echo the display text as the id; try both through
	// the text table before giving up.
	for _, candidate := range []string{replyID, buttonText} {
		if id, ok := buttonTextTable[strings.ToLower(strings.TrimSpace(candidate))]; ok {
			return replyTable[id]
		}
	}
	return Resolution{Intent: Unrecognized, Source: SourceButton}
}
