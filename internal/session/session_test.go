package session

import "testing"

func TestFullName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		student Student
		want    string
	}{
		{
			name:    "all parts",
			student: Student{FirstName: "Asha", MiddleName: "K", LastName: "Verma"},
			want:    "Asha K Verma",
		},
		{
			name:    "no middle name",
			student: Student{FirstName: "Rohan", LastName: "Gupta"},
			want:    "Rohan Gupta",
		},
		{
			name:    "first name only",
			student: Student{FirstName: "Priya"},
			want:    "Priya",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.student.FullName(); got != tt.want {
				t.Errorf("FullName() = %q, want %q", got, tt.want)
			}
		})
	}
}
