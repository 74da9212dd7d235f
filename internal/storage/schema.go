package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode and pragmas are configured in db.go.
func InitSchema(db *sql.DB) error {
	creators := []func(*sql.DB) error{
		createStudentsTable,
		createSubjectsTable,
		createResultsTable,
		createAttendanceTable,
		createOverallAttendanceTable,
		createScheduleSlotsTable,
		createStaffContactsTable,
		createHostelsTable,
	}
	for _, create := range creators {
		if err := create(db); err != nil {
			return err
		}
	}
	return nil
}

func createStudentsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS students (
		registration_no TEXT PRIMARY KEY,
		wa_id TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		middle_name TEXT,
		last_name TEXT NOT NULL,
		guardian_name TEXT,
		course_code TEXT NOT NULL,
		department TEXT,
		semester INTEGER NOT NULL,
		section TEXT,
		mentor_id TEXT,
		hostel_id INTEGER,
		hostel_block TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_students_wa_id ON students(wa_id);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create students table: %w", err)
	}
	return nil
}

func createSubjectsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS subjects (
		id INTEGER PRIMARY KEY,
		subject_code TEXT NOT NULL UNIQUE,
		name TEXT
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create subjects table: %w", err)
	}
	return nil
}

func createResultsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS results (
		registration_no TEXT NOT NULL,
		semester INTEGER NOT NULL,
		subject_id INTEGER NOT NULL REFERENCES subjects(id),
		grade TEXT NOT NULL,
		tgpa REAL NOT NULL,
		PRIMARY KEY (registration_no, semester, subject_id)
	);
	CREATE INDEX IF NOT EXISTS idx_results_reg_sem ON results(registration_no, semester);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create results table: %w", err)
	}
	return nil
}

func createAttendanceTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS attendance (
		registration_no TEXT NOT NULL,
		subject_id INTEGER NOT NULL REFERENCES subjects(id),
		slot TEXT NOT NULL,
		status TEXT CHECK(status IN ('present', 'absent', 'leave')) NOT NULL,
		date TEXT NOT NULL,
		PRIMARY KEY (registration_no, subject_id, slot, date)
	);
	CREATE INDEX IF NOT EXISTS idx_attendance_reg_date ON attendance(registration_no, date);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create attendance table: %w", err)
	}
	return nil
}

func createOverallAttendanceTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS overall_attendance (
		registration_no TEXT NOT NULL,
		subject_id INTEGER NOT NULL REFERENCES subjects(id),
		semester INTEGER NOT NULL,
		percentage REAL NOT NULL,
		PRIMARY KEY (registration_no, subject_id, semester)
	);
	CREATE INDEX IF NOT EXISTS idx_overall_reg_sem ON overall_attendance(registration_no, semester);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create overall_attendance table: %w", err)
	}
	return nil
}

func createScheduleSlotsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS schedule_slots (
		course_code TEXT NOT NULL,
		semester INTEGER NOT NULL,
		section TEXT NOT NULL,
		weekday INTEGER NOT NULL,
		slot TEXT NOT NULL,
		subject_id INTEGER NOT NULL REFERENCES subjects(id),
		room TEXT,
		PRIMARY KEY (course_code, semester, section, weekday, slot)
	);
	CREATE INDEX IF NOT EXISTS idx_schedule_class ON schedule_slots(course_code, semester, section);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create schedule_slots table: %w", err)
	}
	return nil
}

func createStaffContactsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS staff_contacts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		role TEXT CHECK(role IN ('mentor', 'hod', 'faculty', 'office')) NOT NULL,
		department TEXT,
		phone TEXT,
		email TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_staff_role_dept ON staff_contacts(role, department);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create staff_contacts table: %w", err)
	}
	return nil
}

func createHostelsTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS hostels (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS hostel_wardens (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		hostel_id INTEGER NOT NULL REFERENCES hostels(id),
		block TEXT CHECK(block IN ('A', 'B', 'C', 'D', 'E')) NOT NULL,
		is_main_warden INTEGER NOT NULL DEFAULT 0,
		contact TEXT NOT NULL,
		UNIQUE(name, hostel_id, block)
	);
	CREATE INDEX IF NOT EXISTS idx_wardens_hostel ON hostel_wardens(hostel_id, block);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create hostel tables: %w", err)
	}
	return nil
}
