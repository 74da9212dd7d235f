package storage

// SubjectGrade is one graded subject row within a semester result.
type SubjectGrade struct {
	Semester    int     `json:"semester"`
	SubjectCode string  `json:"subject_code"`
	Grade       string  `json:"grade"`
	TGPA        float64 `json:"tgpa"`
}

// AttendanceRow is one marked hour for a student on a given date.
type AttendanceRow struct {
	SubjectCode string `json:"subject_code"`
	Slot        string `json:"slot"`
	Status      string `json:"status"` // "present", "absent", or "leave"
	Date        string `json:"date"`   // YYYY-MM-DD
}

// OverallAttendanceRow is the cumulative percentage per subject.
type OverallAttendanceRow struct {
	SubjectCode string  `json:"subject_code"`
	Percentage  float64 `json:"percentage"`
}

// ScheduleSlot is one timetable entry for a class section.
type ScheduleSlot struct {
	Weekday     int    `json:"weekday"` // 0 = Sunday, matching time.Weekday
	Slot        string `json:"slot"`
	SubjectCode string `json:"subject_code"`
	Room        string `json:"room,omitempty"`
}

// StaffContact is a mentor, HOD, faculty, or office contact record.
type StaffContact struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"` // "mentor", "hod", "faculty", or "office"
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// HostelWarden is a warden assigned to a hostel block.
type HostelWarden struct {
	Name         string `json:"name"`
	HostelName   string `json:"hostel_name"`
	Block        string `json:"block"`
	IsMainWarden bool   `json:"is_main_warden"`
	Contact      string `json:"contact"`
}
