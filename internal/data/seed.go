// Package data loads campus data snapshots into the database. Snapshots
// are JSON exports from the institution's ERP; the sync job applies one
// on a schedule and the request path only ever reads the result.
package data

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/storage"
)

// Snapshot is one full campus data export.
type Snapshot struct {
	Students []session.Student `json:"students"`
	Subjects []Subject         `json:"subjects"`
	Results  []Result          `json:"results"`

	Attendance        []Attendance        `json:"attendance"`
	OverallAttendance []OverallAttendance `json:"overall_attendance"`

	Schedule []ScheduleSlot          `json:"schedule"`
	Staff    []storage.StaffContact  `json:"staff"`
	Hostels  []Hostel                `json:"hostels"`
	Wardens  []Warden                `json:"wardens"`
}

// Subject is one taught subject.
type Subject struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Result is one graded subject in a semester.
type Result struct {
	RegistrationNo string  `json:"registration_no"`
	Semester       int     `json:"semester"`
	SubjectID      int     `json:"subject_id"`
	Grade          string  `json:"grade"`
	TGPA           float64 `json:"tgpa"`
}

// Attendance is one marked hour.
type Attendance struct {
	RegistrationNo string `json:"registration_no"`
	SubjectID      int    `json:"subject_id"`
	Slot           string `json:"slot"`
	Status         string `json:"status"`
	Date           string `json:"date"` // YYYY-MM-DD
}

// OverallAttendance is one cumulative percentage.
type OverallAttendance struct {
	RegistrationNo string  `json:"registration_no"`
	SubjectID      int     `json:"subject_id"`
	Semester       int     `json:"semester"`
	Percentage     float64 `json:"percentage"`
}

// ScheduleSlot is one timetable entry.
type ScheduleSlot struct {
	CourseCode string `json:"course_code"`
	Semester   int    `json:"semester"`
	Section    string `json:"section"`
	Weekday    int    `json:"weekday"` // 0 = Sunday, matching time.Weekday
	Slot       string `json:"slot"`
	SubjectID  int    `json:"subject_id"`
	Room       string `json:"room,omitempty"`
}

// Hostel is one hostel building.
type Hostel struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Warden is one warden assignment.
type Warden struct {
	Name         string `json:"name"`
	HostelID     int    `json:"hostel_id"`
	Block        string `json:"block"`
	IsMainWarden bool   `json:"is_main_warden"`
	Contact      string `json:"contact"`
}

// LoadSnapshot reads and decodes one snapshot file.
func LoadSnapshot(path string) (*Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("data: read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("data: decode snapshot: %w", err)
	}
	return &snap, nil
}

// Apply upserts the snapshot into the database. Records are applied in
// dependency order so foreign keys always resolve; the first failure
// aborts the load.
func (s *Snapshot) Apply(ctx context.Context, db *storage.DB) error {
	for i := range s.Subjects {
		sub := s.Subjects[i]
		if err := db.SaveSubject(ctx, sub.ID, sub.Code, sub.Name); err != nil {
			return err
		}
	}
	for i := range s.Hostels {
		if err := db.SaveHostel(ctx, s.Hostels[i].ID, s.Hostels[i].Name); err != nil {
			return err
		}
	}
	for i := range s.Staff {
		if err := db.SaveStaffContact(ctx, &s.Staff[i]); err != nil {
			return err
		}
	}
	for i := range s.Students {
		if err := db.SaveStudent(ctx, &s.Students[i]); err != nil {
			return err
		}
	}
	for _, r := range s.Results {
		if err := db.SaveResult(ctx, r.RegistrationNo, r.Semester, r.SubjectID, r.Grade, r.TGPA); err != nil {
			return err
		}
	}
	for _, a := range s.Attendance {
		if err := db.SaveAttendance(ctx, a.RegistrationNo, a.SubjectID, a.Slot, a.Status, a.Date); err != nil {
			return err
		}
	}
	for _, o := range s.OverallAttendance {
		if err := db.SaveOverallAttendance(ctx, o.RegistrationNo, o.SubjectID, o.Semester, o.Percentage); err != nil {
			return err
		}
	}
	for _, sl := range s.Schedule {
		if err := db.SaveScheduleSlot(ctx, sl.CourseCode, sl.Semester, sl.Section, sl.Weekday, sl.Slot, sl.SubjectID, sl.Room); err != nil {
			return err
		}
	}
	for _, w := range s.Wardens {
		if err := db.SaveHostelWarden(ctx, w.Name, w.HostelID, w.Block, w.IsMainWarden, w.Contact); err != nil {
			return err
		}
	}
	return nil
}

// Counts summarizes the snapshot for logging.
func (s *Snapshot) Counts() map[string]int {
	return map[string]int{
		"students":           len(s.Students),
		"subjects":           len(s.Subjects),
		"results":            len(s.Results),
		"attendance":         len(s.Attendance),
		"overall_attendance": len(s.OverallAttendance),
		"schedule":           len(s.Schedule),
		"staff":              len(s.Staff),
		"hostels":            len(s.Hostels),
		"wardens":            len(s.Wardens),
	}
}
