package model

import (
	"errors"
	"fmt"
	"strings"
)

// ResumeRecord is the structured resume produced by the model.
type ResumeRecord struct {
	Metadata            Metadata     `json:"metadata"`
	PersonalInfo        PersonalInfo `json:"personal_info"`
	ProfessionalSummary string       `json:"professional_summary"`
	Skills              Skills       `json:"skills"`
	WorkExperience      []Job        `json:"work_experience"`
	Education           []Education  `json:"education"`
	Certifications      []string     `json:"certifications"`
	Projects            []Project    `json:"projects"`
}

// Metadata carries the model's own assessment. The score is advisory.
type Metadata struct {
	EstimatedATSScore  int    `json:"estimated_ats_score"`
	ChangesMadeSummary string `json:"changes_made_summary"`
}

// PersonalInfo holds identity and contact fields copied from the source resume.
type PersonalInfo struct {
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`
	Location  string `json:"location"`
}

// Skills groups skills, most relevant first.
type Skills struct {
	Technical  []string `json:"technical"`
	SoftSkills []string `json:"soft_skills"`
}

// Job is a work history entry. Company, Role, Dates and Location are immutable.
type Job struct {
	Company            string   `json:"company"`
	Role               string   `json:"role"`
	Dates              string   `json:"dates"`
	Location           string   `json:"location"`
	DescriptionBullets []string `json:"description_bullets"`
}

// Education is an education entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Date        string `json:"date"`
}

// Project is a notable project.
type Project struct {
	Title       string `json:"title"`
	TechStack   string `json:"tech_stack"`
	Description string `json:"description"`
}

const (
	MinATSScore = 0
	MaxATSScore = 100
)

// Normalize trims every string, drops empty entries from string lists and
// replaces nil slices with empty ones.
func (r *ResumeRecord) Normalize() {
	r.Metadata.ChangesMadeSummary = strings.TrimSpace(r.Metadata.ChangesMadeSummary)

	p := &r.PersonalInfo
	p.FullName = strings.TrimSpace(p.FullName)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	p.LinkedIn = strings.TrimSpace(p.LinkedIn)
	p.GitHub = strings.TrimSpace(p.GitHub)
	p.Portfolio = strings.TrimSpace(p.Portfolio)
	p.Location = strings.TrimSpace(p.Location)

	r.ProfessionalSummary = strings.TrimSpace(r.ProfessionalSummary)
	r.Skills.Technical = compact(r.Skills.Technical)
	r.Skills.SoftSkills = compact(r.Skills.SoftSkills)
	r.Certifications = compact(r.Certifications)

	if r.WorkExperience == nil {
		r.WorkExperience = []Job{}
	}
	for i := range r.WorkExperience {
		job := &r.WorkExperience[i]
		job.Company = strings.TrimSpace(job.Company)
		job.Role = strings.TrimSpace(job.Role)
		job.Dates = strings.TrimSpace(job.Dates)
		job.Location = strings.TrimSpace(job.Location)
		job.DescriptionBullets = compact(job.DescriptionBullets)
	}

	if r.Education == nil {
		r.Education = []Education{}
	}
	for i := range r.Education {
		edu := &r.Education[i]
		edu.Institution = strings.TrimSpace(edu.Institution)
		edu.Degree = strings.TrimSpace(edu.Degree)
		edu.Date = strings.TrimSpace(edu.Date)
	}

	if r.Projects == nil {
		r.Projects = []Project{}
	}
	for i := range r.Projects {
		proj := &r.Projects[i]
		proj.Title = strings.TrimSpace(proj.Title)
		proj.TechStack = strings.TrimSpace(proj.TechStack)
		proj.Description = strings.TrimSpace(proj.Description)
	}
}

// ClampScore forces the score into [MinATSScore, MaxATSScore] and reports
// whether it had to change.
func (r *ResumeRecord) ClampScore() bool {
	switch {
	case r.Metadata.EstimatedATSScore < MinATSScore:
		r.Metadata.EstimatedATSScore = MinATSScore
		return true
	case r.Metadata.EstimatedATSScore > MaxATSScore:
		r.Metadata.EstimatedATSScore = MaxATSScore
		return true
	}
	return false
}

// ErrMissingName is returned by Validate for a record without a name.
var ErrMissingName = errors.New("personal_info.full_name is required")

// Validate checks the minimum a record needs to be rendered.
func (r ResumeRecord) Validate() error {
	if strings.TrimSpace(r.PersonalInfo.FullName) == "" {
		return ErrMissingName
	}
	score := r.Metadata.EstimatedATSScore
	if score < MinATSScore || score > MaxATSScore {
		return fmt.Errorf("metadata.estimated_ats_score must be between %d and %d", MinATSScore, MaxATSScore)
	}
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
