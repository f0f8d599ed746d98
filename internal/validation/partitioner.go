// Package validation splits candidate employee records into valid and
// invalid sets using field-level rules.
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/onboard-hub/backend/internal/models"
)

// emailRe is intentionally permissive: one @, non-empty local part, a
// dot somewhere in the domain.
var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const startDateLayout = "01/02/2006" // MM/DD/YYYY

// Partition streams through records once, in order, and routes each to
// the valid or invalid side. A record is valid iff its email is
// well-formed and not seen earlier in the same input, its department is
// in knownDepartments, and its start date parses as MM/DD/YYYY.
//
// The partition is stable and complete: relative order within each side
// matches the input, and no record is dropped or duplicated. Records
// that fail a check are routed to the invalid side with reason codes,
// never reported as errors.
func Partition(records []models.Employee, knownDepartments map[string]struct{}) models.ValidationResult {
	result := models.ValidationResult{
		Valid:   make([]models.Employee, 0, len(records)),
		Invalid: make([]models.InvalidEmployee, 0),
	}

	seenEmails := make(map[string]struct{}, len(records))

	for _, rec := range records {
		reasons := checkRecord(rec, seenEmails, knownDepartments)

		// First occurrence claims the email even if the record is
		// otherwise invalid; later duplicates lose regardless.
		email := normalizeEmail(rec.Email)
		if _, dup := seenEmails[email]; !dup && email != "" {
			seenEmails[email] = struct{}{}
		}

		if len(reasons) == 0 {
			result.Valid = append(result.Valid, rec)
		} else {
			result.Invalid = append(result.Invalid, models.InvalidEmployee{
				Employee: rec,
				Reasons:  reasons,
			})
		}
	}

	return result
}

func checkRecord(rec models.Employee, seenEmails map[string]struct{}, knownDepartments map[string]struct{}) []models.InvalidReason {
	var reasons []models.InvalidReason

	email := normalizeEmail(rec.Email)
	if !emailRe.MatchString(email) {
		reasons = append(reasons, models.ReasonEmailFormat)
	} else if _, dup := seenEmails[email]; dup {
		reasons = append(reasons, models.ReasonDuplicateEmail)
	}

	if _, ok := knownDepartments[strings.TrimSpace(rec.Department)]; !ok {
		reasons = append(reasons, models.ReasonUnknownDepartment)
	}

	if !validStartDate(rec.StartDate) {
		reasons = append(reasons, models.ReasonBadStartDate)
	}

	return reasons
}

func validStartDate(s string) bool {
	t, err := time.Parse(startDateLayout, strings.TrimSpace(s))
	if err != nil {
		return false
	}
	// time.Parse accepts single-digit fields; require the canonical
	// zero-padded rendering so 1/2/2025 is rejected.
	return t.Format(startDateLayout) == strings.TrimSpace(s)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
