package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/session"
)

// slowQueryThreshold triggers a warning log for unusually slow reads.
const slowQueryThreshold = 100 * time.Millisecond

func (db *DB) observe(ctx context.Context, name string, start time.Time, err error, empty bool) {
	db.recordQuery(name, err, empty)
	if duration := time.Since(start); duration > slowQueryThreshold {
		slog.WarnContext(ctx, "slow database operation",
			"operation", name,
			"duration_ms", duration.Milliseconds())
	}
}

// ResolveStudent looks up the student enrolled under the given WhatsApp id.
// Returns domerrors.ErrUnknownSender when no enrollment matches.
func (db *DB) ResolveStudent(ctx context.Context, waID string) (*session.Student, error) {
	query := `
		SELECT registration_no, wa_id, first_name, COALESCE(middle_name, ''),
			last_name, COALESCE(guardian_name, ''), course_code,
			COALESCE(department, ''), semester, COALESCE(section, ''),
			COALESCE(mentor_id, ''), COALESCE(hostel_id, 0), COALESCE(hostel_block, '')
		FROM students
		WHERE wa_id = ?
	`
	start := time.Now()
	var s session.Student
	err := db.conn.QueryRowContext(ctx, query, waID).Scan(
		&s.RegistrationNo, &s.WAID, &s.FirstName, &s.MiddleName,
		&s.LastName, &s.GuardianName, &s.CourseCode,
		&s.Department, &s.Semester, &s.Section,
		&s.MentorID, &s.HostelID, &s.HostelBlock,
	)
	if errors.Is(err, sql.ErrNoRows) {
		db.observe(ctx, "ResolveStudent", start, nil, true)
		return nil, domerrors.ErrUnknownSender
	}
	db.observe(ctx, "ResolveStudent", start, err, false)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve student: %w", err)
	}
	return &s, nil
}

// GetSemesterGrades returns the graded subjects for one semester,
// ordered by subject code.
func (db *DB) GetSemesterGrades(ctx context.Context, registrationNo string, semester int) ([]SubjectGrade, error) {
	query := `
		SELECT r.semester, s.subject_code, r.grade, r.tgpa
		FROM results r
		LEFT JOIN subjects s ON s.id = r.subject_id
		WHERE r.registration_no = ? AND r.semester = ?
		ORDER BY s.subject_code
	`
	start := time.Now()
	grades, err := db.queryGrades(ctx, query, registrationNo, semester)
	db.observe(ctx, "GetSemesterGrades", start, err, len(grades) == 0)
	return grades, err
}

// GetAllGrades returns every graded subject across semesters,
// ordered by semester then subject code.
func (db *DB) GetAllGrades(ctx context.Context, registrationNo string) ([]SubjectGrade, error) {
	query := `
		SELECT r.semester, s.subject_code, r.grade, r.tgpa
		FROM results r
		LEFT JOIN subjects s ON s.id = r.subject_id
		WHERE r.registration_no = ?
		ORDER BY r.semester, s.subject_code
	`
	start := time.Now()
	grades, err := db.queryGrades(ctx, query, registrationNo)
	db.observe(ctx, "GetAllGrades", start, err, len(grades) == 0)
	return grades, err
}

func (db *DB) queryGrades(ctx context.Context, query string, args ...any) ([]SubjectGrade, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query grades: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var grades []SubjectGrade
	for rows.Next() {
		var g SubjectGrade
		if err := rows.Scan(&g.Semester, &g.SubjectCode, &g.Grade, &g.TGPA); err != nil {
			return nil, fmt.Errorf("failed to scan grade row: %w", err)
		}
		grades = append(grades, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate grade rows: %w", err)
	}
	return grades, nil
}

// GetDayAttendance returns the marked hours for one date (YYYY-MM-DD),
// ordered by slot.
func (db *DB) GetDayAttendance(ctx context.Context, registrationNo, date string) ([]AttendanceRow, error) {
	query := `
		SELECT s.subject_code, a.slot, a.status, a.date
		FROM attendance a
		LEFT JOIN subjects s ON s.id = a.subject_id
		WHERE a.registration_no = ? AND a.date = ?
		ORDER BY a.slot
	`
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, registrationNo, date)
	if err != nil {
		db.observe(ctx, "GetDayAttendance", start, err, false)
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var marked []AttendanceRow
	for rows.Next() {
		var a AttendanceRow
		if err := rows.Scan(&a.SubjectCode, &a.Slot, &a.Status, &a.Date); err != nil {
			db.observe(ctx, "GetDayAttendance", start, err, false)
			return nil, fmt.Errorf("failed to scan attendance row: %w", err)
		}
		marked = append(marked, a)
	}
	err = rows.Err()
	db.observe(ctx, "GetDayAttendance", start, err, len(marked) == 0)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate attendance rows: %w", err)
	}
	return marked, nil
}

// GetOverallAttendance returns cumulative per-subject percentages for the
// given semester.
func (db *DB) GetOverallAttendance(ctx context.Context, registrationNo string, semester int) ([]OverallAttendanceRow, error) {
	query := `
		SELECT s.subject_code, oa.percentage
		FROM overall_attendance oa
		LEFT JOIN subjects s ON s.id = oa.subject_id
		WHERE oa.registration_no = ? AND oa.semester = ?
		ORDER BY s.subject_code
	`
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, registrationNo, semester)
	if err != nil {
		db.observe(ctx, "GetOverallAttendance", start, err, false)
		return nil, fmt.Errorf("failed to query overall attendance: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var overall []OverallAttendanceRow
	for rows.Next() {
		var o OverallAttendanceRow
		if err := rows.Scan(&o.SubjectCode, &o.Percentage); err != nil {
			db.observe(ctx, "GetOverallAttendance", start, err, false)
			return nil, fmt.Errorf("failed to scan overall attendance row: %w", err)
		}
		overall = append(overall, o)
	}
	err = rows.Err()
	db.observe(ctx, "GetOverallAttendance", start, err, len(overall) == 0)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate overall attendance rows: %w", err)
	}
	return overall, nil
}

// GetClassSchedule returns the timetable for a class section, ordered by
// weekday then slot.
func (db *DB) GetClassSchedule(ctx context.Context, courseCode string, semester int, section string) ([]ScheduleSlot, error) {
	query := `
		SELECT ss.weekday, ss.slot, s.subject_code, COALESCE(ss.room, '')
		FROM schedule_slots ss
		LEFT JOIN subjects s ON s.id = ss.subject_id
		WHERE ss.course_code = ? AND ss.semester = ? AND ss.section = ?
		ORDER BY ss.weekday, ss.slot
	`
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, courseCode, semester, section)
	if err != nil {
		db.observe(ctx, "GetClassSchedule", start, err, false)
		return nil, fmt.Errorf("failed to query schedule: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var slots []ScheduleSlot
	for rows.Next() {
		var slot ScheduleSlot
		if err := rows.Scan(&slot.Weekday, &slot.Slot, &slot.SubjectCode, &slot.Room); err != nil {
			db.observe(ctx, "GetClassSchedule", start, err, false)
			return nil, fmt.Errorf("failed to scan schedule row: %w", err)
		}
		slots = append(slots, slot)
	}
	err = rows.Err()
	db.observe(ctx, "GetClassSchedule", start, err, len(slots) == 0)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate schedule rows: %w", err)
	}
	return slots, nil
}

// GetStaffContact looks up a single staff member by id.
// Returns domerrors.ErrNotFound when the id is unknown.
func (db *DB) GetStaffContact(ctx context.Context, id string) (*StaffContact, error) {
	query := `
		SELECT id, name, role, COALESCE(department, ''),
			COALESCE(phone, ''), COALESCE(email, '')
		FROM staff_contacts
		WHERE id = ?
	`
	start := time.Now()
	var c StaffContact
	err := db.conn.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Role, &c.Department, &c.Phone, &c.Email,
	)
	if errors.Is(err, sql.ErrNoRows) {
		db.observe(ctx, "GetStaffContact", start, nil, true)
		return nil, domerrors.ErrNotFound
	}
	db.observe(ctx, "GetStaffContact", start, err, false)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff contact: %w", err)
	}
	return &c, nil
}

// GetContactsByRole returns staff contacts matching a role within a
// department, ordered by name.
func (db *DB) GetContactsByRole(ctx context.Context, role, department string) ([]StaffContact, error) {
	query := `
		SELECT id, name, role, COALESCE(department, ''),
			COALESCE(phone, ''), COALESCE(email, '')
		FROM staff_contacts
		WHERE role = ? AND department = ?
		ORDER BY name
	`
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, role, department)
	if err != nil {
		db.observe(ctx, "GetContactsByRole", start, err, false)
		return nil, fmt.Errorf("failed to query staff contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var contacts []StaffContact
	for rows.Next() {
		var c StaffContact
		if err := rows.Scan(&c.ID, &c.Name, &c.Role, &c.Department, &c.Phone, &c.Email); err != nil {
			db.observe(ctx, "GetContactsByRole", start, err, false)
			return nil, fmt.Errorf("failed to scan staff contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	err = rows.Err()
	db.observe(ctx, "GetContactsByRole", start, err, len(contacts) == 0)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate staff contact rows: %w", err)
	}
	return contacts, nil
}

// GetHostelWardens returns the wardens responsible for a student's block:
// the block wardens plus the hostel's main warden.
func (db *DB) GetHostelWardens(ctx context.Context, hostelID int, block string) ([]HostelWarden, error) {
	query := `
		SELECT w.name, h.name, w.block, w.is_main_warden, w.contact
		FROM hostel_wardens w
		LEFT JOIN hostels h ON h.id = w.hostel_id
		WHERE w.hostel_id = ? AND (w.block = ? OR w.is_main_warden = 1)
		ORDER BY w.is_main_warden DESC, w.name
	`
	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, hostelID, block)
	if err != nil {
		db.observe(ctx, "GetHostelWardens", start, err, false)
		return nil, fmt.Errorf("failed to query hostel wardens: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var wardens []HostelWarden
	for rows.Next() {
		var w HostelWarden
		var hostelName sql.NullString
		if err := rows.Scan(&w.Name, &hostelName, &w.Block, &w.IsMainWarden, &w.Contact); err != nil {
			db.observe(ctx, "GetHostelWardens", start, err, false)
			return nil, fmt.Errorf("failed to scan hostel warden row: %w", err)
		}
		w.HostelName = hostelName.String
		wardens = append(wardens, w)
	}
	err = rows.Err()
	db.observe(ctx, "GetHostelWardens", start, err, len(wardens) == 0)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate hostel warden rows: %w", err)
	}
	return wardens, nil
}
