package storage

import (
	"context"
	"fmt"

	"github.com/campuskit/campus-wabot-go/internal/session"
)

// Seed helpers for the enrollment sync job and tests. The request path
// never writes.

// SaveStudent inserts or updates one enrollment record.
func (db *DB) SaveStudent(ctx context.Context, s *session.Student) error {
	query := `
		INSERT INTO students (registration_no, wa_id, first_name, middle_name,
			last_name, guardian_name, course_code, department, semester,
			section, mentor_id, hostel_id, hostel_block)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(registration_no) DO UPDATE SET
			wa_id = excluded.wa_id,
			first_name = excluded.first_name,
			middle_name = excluded.middle_name,
			last_name = excluded.last_name,
			guardian_name = excluded.guardian_name,
			course_code = excluded.course_code,
			department = excluded.department,
			semester = excluded.semester,
			section = excluded.section,
			mentor_id = excluded.mentor_id,
			hostel_id = excluded.hostel_id,
			hostel_block = excluded.hostel_block
	`
	_, err := db.conn.ExecContext(ctx, query,
		s.RegistrationNo, s.WAID, s.FirstName, s.MiddleName,
		s.LastName, s.GuardianName, s.CourseCode, s.Department, s.Semester,
		s.Section, s.MentorID, s.HostelID, s.HostelBlock,
	)
	if err != nil {
		return fmt.Errorf("failed to save student: %w", err)
	}
	return nil
}

// SaveSubject inserts or updates one subject.
func (db *DB) SaveSubject(ctx context.Context, id int, code, name string) error {
	query := `
		INSERT INTO subjects (id, subject_code, name)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_code = excluded.subject_code,
			name = excluded.name
	`
	if _, err := db.conn.ExecContext(ctx, query, id, code, name); err != nil {
		return fmt.Errorf("failed to save subject: %w", err)
	}
	return nil
}

// SaveResult inserts or updates one graded subject for a semester.
func (db *DB) SaveResult(ctx context.Context, registrationNo string, semester, subjectID int, grade string, tgpa float64) error {
	query := `
		INSERT INTO results (registration_no, semester, subject_id, grade, tgpa)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(registration_no, semester, subject_id) DO UPDATE SET
			grade = excluded.grade,
			tgpa = excluded.tgpa
	`
	if _, err := db.conn.ExecContext(ctx, query, registrationNo, semester, subjectID, grade, tgpa); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}
	return nil
}

// SaveAttendance inserts or updates one marked hour.
func (db *DB) SaveAttendance(ctx context.Context, registrationNo string, subjectID int, slot, status, date string) error {
	query := `
		INSERT INTO attendance (registration_no, subject_id, slot, status, date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(registration_no, subject_id, slot, date) DO UPDATE SET
			status = excluded.status
	`
	if _, err := db.conn.ExecContext(ctx, query, registrationNo, subjectID, slot, status, date); err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

// SaveOverallAttendance inserts or updates one cumulative percentage.
func (db *DB) SaveOverallAttendance(ctx context.Context, registrationNo string, subjectID, semester int, percentage float64) error {
	query := `
		INSERT INTO overall_attendance (registration_no, subject_id, semester, percentage)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(registration_no, subject_id, semester) DO UPDATE SET
			percentage = excluded.percentage
	`
	if _, err := db.conn.ExecContext(ctx, query, registrationNo, subjectID, semester, percentage); err != nil {
		return fmt.Errorf("failed to save overall attendance: %w", err)
	}
	return nil
}

// SaveScheduleSlot inserts or updates one timetable entry.
func (db *DB) SaveScheduleSlot(ctx context.Context, courseCode string, semester int, section string, weekday int, slot string, subjectID int, room string) error {
	query := `
		INSERT INTO schedule_slots (course_code, semester, section, weekday, slot, subject_id, room)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(course_code, semester, section, weekday, slot) DO UPDATE SET
			subject_id = excluded.subject_id,
			room = excluded.room
	`
	if _, err := db.conn.ExecContext(ctx, query, courseCode, semester, section, weekday, slot, subjectID, room); err != nil {
		return fmt.Errorf("failed to save schedule slot: %w", err)
	}
	return nil
}

// SaveStaffContact inserts or updates one staff contact.
func (db *DB) SaveStaffContact(ctx context.Context, c *StaffContact) error {
	query := `
		INSERT INTO staff_contacts (id, name, role, department, phone, email)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			role = excluded.role,
			department = excluded.department,
			phone = excluded.phone,
			email = excluded.email
	`
	if _, err := db.conn.ExecContext(ctx, query, c.ID, c.Name, c.Role, c.Department, c.Phone, c.Email); err != nil {
		return fmt.Errorf("failed to save staff contact: %w", err)
	}
	return nil
}

// SaveHostel inserts or updates one hostel.
func (db *DB) SaveHostel(ctx context.Context, id int, name string) error {
	query := `
		INSERT INTO hostels (id, name)
		VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`
	if _, err := db.conn.ExecContext(ctx, query, id, name); err != nil {
		return fmt.Errorf("failed to save hostel: %w", err)
	}
	return nil
}

// SaveHostelWarden inserts or updates one warden assignment.
func (db *DB) SaveHostelWarden(ctx context.Context, name string, hostelID int, block string, isMainWarden bool, contact string) error {
	query := `
		INSERT INTO hostel_wardens (name, hostel_id, block, is_main_warden, contact)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name, hostel_id, block) DO UPDATE SET
			is_main_warden = excluded.is_main_warden,
			contact = excluded.contact
	`
	if _, err := db.conn.ExecContext(ctx, query, name, hostelID, block, isMainWarden, contact); err != nil {
		return fmt.Errorf("failed to save hostel warden: %w", err)
	}
	return nil
}
