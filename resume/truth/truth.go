// Package truth checks that identity and history fields in a record were
// copied from the source resume rather than invented.
package truth

import (
	"fmt"
	"strings"

	"resume-optimizer/resume/model"
)

// Violation is an immutable field whose value does not occur in the source.
type Violation struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %q not found in source", v.Field, v.Value)
}

// Check reports every non-empty immutable field of record that does not
// occur verbatim in sourceText. Whitespace runs are collapsed on both sides;
// the comparison is case-sensitive.
func Check(sourceText string, record model.ResumeRecord) []Violation {
	source := collapse(sourceText)
	var out []Violation
	check := func(field, value string) {
		value = collapse(value)
		if value == "" || strings.Contains(source, value) {
			return
		}
		out = append(out, Violation{Field: field, Value: value})
	}

	p := record.PersonalInfo
	check("personal_info.full_name", p.FullName)
	check("personal_info.email", p.Email)
	check("personal_info.phone", p.Phone)
	check("personal_info.linkedin", p.LinkedIn)
	check("personal_info.github", p.GitHub)

	for i, job := range record.WorkExperience {
		prefix := fmt.Sprintf("work_experience[%d].", i)
		check(prefix+"company", job.Company)
		check(prefix+"role", job.Role)
		check(prefix+"dates", job.Dates)
		check(prefix+"location", job.Location)
	}
	for i, edu := range record.Education {
		prefix := fmt.Sprintf("education[%d].", i)
		check(prefix+"institution", edu.Institution)
		check(prefix+"degree", edu.Degree)
		check(prefix+"date", edu.Date)
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
