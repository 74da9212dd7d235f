package storage

import (
	"context"
	"errors"
	"testing"

	domerrors "github.com/campuskit/campus-wabot-go/internal/errors"
	"github.com/campuskit/campus-wabot-go/internal/session"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedStudent(t *testing.T, db *DB) *session.Student {
	t.Helper()
	student := &session.Student{
		RegistrationNo: "12018765",
		WAID:           "919800000001",
		FirstName:      "Asha",
		MiddleName:     "K",
		LastName:       "Verma",
		GuardianName:   "Suresh Verma",
		CourseCode:     "B.Tech CSE",
		Department:     "CSE",
		Semester:       5,
		Section:        "B",
		MentorID:       "STF-101",
		HostelID:       2,
		HostelBlock:    "C",
	}
	if err := db.SaveStudent(context.Background(), student); err != nil {
		t.Fatalf("SaveStudent failed: %v", err)
	}
	return student
}

func TestResolveStudent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seeded := seedStudent(t, db)

	resolved, err := db.ResolveStudent(ctx, seeded.WAID)
	if err != nil {
		t.Fatalf("ResolveStudent failed: %v", err)
	}
	if resolved.RegistrationNo != seeded.RegistrationNo {
		t.Errorf("Expected registration no %s, got %s", seeded.RegistrationNo, resolved.RegistrationNo)
	}
	if resolved.FullName() != "Asha K Verma" {
		t.Errorf("Expected full name Asha K Verma, got %s", resolved.FullName())
	}
	if resolved.GuardianName != seeded.GuardianName {
		t.Errorf("Expected guardian %s, got %s", seeded.GuardianName, resolved.GuardianName)
	}
}

func TestResolveStudentUnknownSender(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.ResolveStudent(context.Background(), "447700900000")
	if !errors.Is(err, domerrors.ErrUnknownSender) {
		t.Fatalf("Expected ErrUnknownSender, got %v", err)
	}
}

func TestGetSemesterGrades(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	student := seedStudent(t, db)

	subjects := map[int]string{1: "CSE301", 2: "CSE302", 3: "MTH201"}
	for id, code := range subjects {
		if err := db.SaveSubject(ctx, id, code, ""); err != nil {
			t.Fatalf("SaveSubject failed: %v", err)
		}
	}
	// Two semesters so the filter is actually exercised.
	seed := []struct {
		semester  int
		subjectID int
		grade     string
		tgpa      float64
	}{
		{4, 3, "B", 7.8},
		{5, 1, "A", 8.4},
		{5, 2, "B+", 8.4},
	}
	for _, r := range seed {
		if err := db.SaveResult(ctx, student.RegistrationNo, r.semester, r.subjectID, r.grade, r.tgpa); err != nil {
			t.Fatalf("SaveResult failed: %v", err)
		}
	}

	grades, err := db.GetSemesterGrades(ctx, student.RegistrationNo, 5)
	if err != nil {
		t.Fatalf("GetSemesterGrades failed: %v", err)
	}
	if len(grades) != 2 {
		t.Fatalf("Expected 2 grades, got %d", len(grades))
	}
	if grades[0].SubjectCode != "CSE301" || grades[0].Grade != "A" {
		t.Errorf("Unexpected first grade row: %+v", grades[0])
	}
	if grades[1].TGPA != 8.4 {
		t.Errorf("Expected TGPA 8.4, got %v", grades[1].TGPA)
	}

	all, err := db.GetAllGrades(ctx, student.RegistrationNo)
	if err != nil {
		t.Fatalf("GetAllGrades failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 grades across semesters, got %d", len(all))
	}
	if all[0].Semester != 4 {
		t.Errorf("Expected semester 4 first, got %d", all[0].Semester)
	}
}

func TestGetDayAttendance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	student := seedStudent(t, db)

	if err := db.SaveSubject(ctx, 1, "CSE301", "Operating Systems"); err != nil {
		t.Fatalf("SaveSubject failed: %v", err)
	}
	marks := []struct {
		slot   string
		status string
		date   string
	}{
		{"09:00-09:50", "present", "2026-02-06"},
		{"10:00-10:50", "absent", "2026-02-06"},
		{"09:00-09:50", "present", "2026-02-05"},
	}
	for _, m := range marks {
		if err := db.SaveAttendance(ctx, student.RegistrationNo, 1, m.slot, m.status, m.date); err != nil {
			t.Fatalf("SaveAttendance failed: %v", err)
		}
	}

	rows, err := db.GetDayAttendance(ctx, student.RegistrationNo, "2026-02-06")
	if err != nil {
		t.Fatalf("GetDayAttendance failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows for the day, got %d", len(rows))
	}
	if rows[0].Slot != "09:00-09:50" || rows[0].Status != "present" {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}

	empty, err := db.GetDayAttendance(ctx, student.RegistrationNo, "2026-02-08")
	if err != nil {
		t.Fatalf("GetDayAttendance on empty day failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("Expected no rows, got %d", len(empty))
	}
}

func TestGetOverallAttendance(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	student := seedStudent(t, db)

	if err := db.SaveSubject(ctx, 1, "CSE301", ""); err != nil {
		t.Fatalf("SaveSubject failed: %v", err)
	}
	if err := db.SaveOverallAttendance(ctx, student.RegistrationNo, 1, 5, 82.5); err != nil {
		t.Fatalf("SaveOverallAttendance failed: %v", err)
	}
	// Different semester must be filtered out.
	if err := db.SaveOverallAttendance(ctx, student.RegistrationNo, 1, 4, 91.0); err != nil {
		t.Fatalf("SaveOverallAttendance failed: %v", err)
	}

	rows, err := db.GetOverallAttendance(ctx, student.RegistrationNo, 5)
	if err != nil {
		t.Fatalf("GetOverallAttendance failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Percentage != 82.5 {
		t.Errorf("Expected 82.5, got %v", rows[0].Percentage)
	}
}

func TestGetClassSchedule(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	student := seedStudent(t, db)

	if err := db.SaveSubject(ctx, 1, "CSE301", ""); err != nil {
		t.Fatalf("SaveSubject failed: %v", err)
	}
	if err := db.SaveScheduleSlot(ctx, student.CourseCode, student.Semester, student.Section, 1, "09:00-09:50", 1, "LH-204"); err != nil {
		t.Fatalf("SaveScheduleSlot failed: %v", err)
	}
	// A different section must not leak in.
	if err := db.SaveScheduleSlot(ctx, student.CourseCode, student.Semester, "A", 1, "09:00-09:50", 1, "LH-101"); err != nil {
		t.Fatalf("SaveScheduleSlot failed: %v", err)
	}

	slots, err := db.GetClassSchedule(ctx, student.CourseCode, student.Semester, student.Section)
	if err != nil {
		t.Fatalf("GetClassSchedule failed: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("Expected 1 slot, got %d", len(slots))
	}
	if slots[0].Room != "LH-204" {
		t.Errorf("Expected room LH-204, got %s", slots[0].Room)
	}
}

func TestStaffContacts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	contacts := []*StaffContact{
		{ID: "STF-101", Name: "Dr. Meena Iyer", Role: "mentor", Department: "CSE", Phone: "+911140001001"},
		{ID: "STF-200", Name: "Dr. Ravi Shankar", Role: "hod", Department: "CSE", Phone: "+911140001002", Email: "hod.cse@example.edu"},
		{ID: "STF-301", Name: "Prof. Nidhi Rao", Role: "faculty", Department: "CSE", Phone: "+911140001003"},
	}
	for _, c := range contacts {
		if err := db.SaveStaffContact(ctx, c); err != nil {
			t.Fatalf("SaveStaffContact failed: %v", err)
		}
	}

	mentor, err := db.GetStaffContact(ctx, "STF-101")
	if err != nil {
		t.Fatalf("GetStaffContact failed: %v", err)
	}
	if mentor.Name != "Dr. Meena Iyer" {
		t.Errorf("Unexpected mentor: %+v", mentor)
	}

	if _, err := db.GetStaffContact(ctx, "STF-999"); !errors.Is(err, domerrors.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	hods, err := db.GetContactsByRole(ctx, "hod", "CSE")
	if err != nil {
		t.Fatalf("GetContactsByRole failed: %v", err)
	}
	if len(hods) != 1 || hods[0].ID != "STF-200" {
		t.Errorf("Unexpected HOD lookup result: %+v", hods)
	}

	none, err := db.GetContactsByRole(ctx, "hod", "ECE")
	if err != nil {
		t.Fatalf("GetContactsByRole for empty department failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no contacts, got %d", len(none))
	}
}

func TestGetHostelWardens(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SaveHostel(ctx, 2, "Aryabhatta Hostel"); err != nil {
		t.Fatalf("SaveHostel failed: %v", err)
	}
	wardens := []struct {
		name  string
		block string
		main  bool
	}{
		{"Mr. Dinesh Pal", "C", false},
		{"Mr. Harish Mehta", "A", false},
		{"Dr. Sunil Joshi", "B", true},
	}
	for _, w := range wardens {
		if err := db.SaveHostelWarden(ctx, w.name, 2, w.block, w.main, "+911140002000"); err != nil {
			t.Fatalf("SaveHostelWarden failed: %v", err)
		}
	}

	got, err := db.GetHostelWardens(ctx, 2, "C")
	if err != nil {
		t.Fatalf("GetHostelWardens failed: %v", err)
	}
	// Block warden plus the main warden, main warden first.
	if len(got) != 2 {
		t.Fatalf("Expected 2 wardens, got %d", len(got))
	}
	if !got[0].IsMainWarden || got[0].Name != "Dr. Sunil Joshi" {
		t.Errorf("Expected main warden first, got %+v", got[0])
	}
	if got[1].Name != "Mr. Dinesh Pal" || got[1].HostelName != "Aryabhatta Hostel" {
		t.Errorf("Unexpected block warden: %+v", got[1])
	}
}
