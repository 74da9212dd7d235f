package objstore

import (
	"fmt"
	"strings"
	"time"
)

// Object key layout. Result documents are deterministic so repeated
// requests for the same sheet resolve to the same object; audit and image
// keys are unique per entry.

// ResultDocumentKey names the stored result sheet for one registration
// number and scope ("last" or "all"). Deterministic.
func ResultDocumentKey(prefix, registrationNo, scope string) string {
	return fmt.Sprintf("%s/%s/result-%s.pdf", strings.TrimSuffix(prefix, "/"), registrationNo, scope)
}

// AttendanceImageKey names one rendered attendance image.
func AttendanceImageKey(prefix, registrationNo, mode string, at time.Time) string {
	return fmt.Sprintf("%s/%s/attendance-%s-%s.png",
		strings.TrimSuffix(prefix, "/"), registrationNo, mode, at.UTC().Format("20060102T150405"))
}

// AuditEntryKey names one classification audit entry, partitioned by day.
func AuditEntryKey(prefix string, at time.Time, id string) string {
	return fmt.Sprintf("%s/%s/%s.json.zst",
		strings.TrimSuffix(prefix, "/"), at.UTC().Format("2006/01/02"), id)
}
