package contract

import (
	"fmt"
	"regexp"
	"strings"

	"resume-optimizer/resume/model"
)

// Warning codes. Warnings flag a low-confidence record but never fail a call.
const (
	CodeScoreClamped      = "score_clamped"
	CodeMissingName       = "missing_name"
	CodeMissingContact    = "missing_contact"
	CodeMissingJobField   = "missing_job_field"
	CodeMissingExperience = "missing_experience"
)

// Warning describes a structurally valid but suspicious record field.
type Warning struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

var (
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern      = regexp.MustCompile(`\+?\d[\d \t().-]{6,}\d`)
	experiencePattern = regexp.MustCompile(`(?i)\b(experience|employment|work history)\b`)
)

// Warnings compares a sanitized record against the source resume text and
// reports fields the model most likely dropped.
func Warnings(record model.ResumeRecord, sourceText string) []Warning {
	var out []Warning
	lowerSource := strings.ToLower(sourceText)

	if record.PersonalInfo.FullName == "" {
		out = append(out, Warning{Code: CodeMissingName, Field: "personal_info.full_name", Message: "full name is empty"})
	}

	contact := []struct {
		field   string
		value   string
		present bool
	}{
		{"personal_info.email", record.PersonalInfo.Email, emailPattern.MatchString(sourceText)},
		{"personal_info.phone", record.PersonalInfo.Phone, containsPhone(sourceText)},
		{"personal_info.linkedin", record.PersonalInfo.LinkedIn, strings.Contains(lowerSource, "linkedin.com")},
		{"personal_info.github", record.PersonalInfo.GitHub, strings.Contains(lowerSource, "github.com")},
	}
	for _, c := range contact {
		if c.value == "" && c.present {
			out = append(out, Warning{
				Code:    CodeMissingContact,
				Field:   c.field,
				Message: "field is empty but the source resume appears to contain it",
			})
		}
	}

	for i, job := range record.WorkExperience {
		if job.Company == "" {
			out = append(out, Warning{Code: CodeMissingJobField, Field: fmt.Sprintf("work_experience[%d].company", i), Message: "company is empty"})
		}
		if job.Role == "" {
			out = append(out, Warning{Code: CodeMissingJobField, Field: fmt.Sprintf("work_experience[%d].role", i), Message: "role is empty"})
		}
	}

	if len(record.WorkExperience) == 0 && experiencePattern.MatchString(sourceText) {
		out = append(out, Warning{Code: CodeMissingExperience, Field: "work_experience", Message: "no work experience returned but the source resume mentions experience"})
	}
	return out
}

// containsPhone reports a digit run long enough to be a phone number. Year
// ranges such as 2019-2022 stay below the threshold.
func containsPhone(text string) bool {
	for _, m := range phonePattern.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if r >= '0' && r <= '9' {
				digits++
			}
		}
		if digits >= 9 {
			return true
		}
	}
	return false
}
