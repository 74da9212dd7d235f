package storage

import (
	"context"
)

// ResultRepository defines the read surface for grade lookups.
type ResultRepository interface {
	GetSemesterGrades(ctx context.Context, registrationNo string, semester int) ([]SubjectGrade, error)
	GetAllGrades(ctx context.Context, registrationNo string) ([]SubjectGrade, error)
}

// AttendanceRepository defines the read surface for attendance lookups.
type AttendanceRepository interface {
	GetDayAttendance(ctx context.Context, registrationNo, date string) ([]AttendanceRow, error)
	GetOverallAttendance(ctx context.Context, registrationNo string, semester int) ([]OverallAttendanceRow, error)
}

// ScheduleRepository defines the read surface for timetable lookups.
type ScheduleRepository interface {
	GetClassSchedule(ctx context.Context, courseCode string, semester int, section string) ([]ScheduleSlot, error)
}

// ContactRepository defines the read surface for staff and warden lookups.
type ContactRepository interface {
	GetStaffContact(ctx context.Context, id string) (*StaffContact, error)
	GetContactsByRole(ctx context.Context, role, department string) ([]StaffContact, error)
	GetHostelWardens(ctx context.Context, hostelID int, block string) ([]HostelWarden, error)
}
