package render

import (
	"context"
	"html"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-optimizer/resume/model"
)

func fixture() model.ResumeRecord {
	r := model.ResumeRecord{
		Metadata: model.Metadata{EstimatedATSScore: 87},
		PersonalInfo: model.PersonalInfo{
			FullName: "Jane Doe",
			Email:    "jane@example.com",
			Phone:    "+1 555 010 2000",
			LinkedIn: "linkedin.com/in/janedoe",
			GitHub:   "https://github.com/janedoe",
			Location: "Berlin, Germany",
		},
		ProfessionalSummary: "Backend engineer building distributed systems in Go & Kubernetes.",
		Skills:              model.Skills{Technical: []string{"Go", "Kubernetes"}, SoftSkills: []string{"Mentoring"}},
		WorkExperience: []model.Job{{
			Company:            "Acme Corp",
			Role:               "Backend Engineer",
			Dates:              "2019-2022",
			Location:           "Berlin",
			DescriptionBullets: []string{"Engineered a <b>Go</b> scheduler handling 2M tasks/day."},
		}},
		Education:      []model.Education{{Institution: "TU Berlin", Degree: "BSc Computer Science", Date: "2018"}},
		Certifications: []string{"CKA"},
		Projects:       []model.Project{{Title: "queuectl", TechStack: "Go, Redis", Description: "CLI for job queues."}},
	}
	r.Normalize()
	return r
}

func TestHTMLContainsEveryField(t *testing.T) {
	record := fixture()
	out, err := HTML(record)
	require.NoError(t, err)
	doc := html.UnescapeString(string(out))

	for _, want := range []string{
		"Jane Doe", "jane@example.com", "+1 555 010 2000", "Berlin, Germany",
		"linkedin.com/in/janedoe", "https://github.com/janedoe",
		record.ProfessionalSummary, "Go", "Kubernetes", "Mentoring",
		"Acme Corp", "Backend Engineer", "2019-2022",
		"TU Berlin", "BSc Computer Science", "2018", "CKA",
		"queuectl", "Go, Redis", "CLI for job queues.",
	} {
		assert.Contains(t, doc, want)
	}
	assert.Contains(t, doc, "Engineered a Go scheduler handling 2M tasks/day.")
	assert.Contains(t, doc, `href="https://linkedin.com/in/janedoe"`)
}

func TestHTMLEscapesContent(t *testing.T) {
	record := fixture()
	record.ProfessionalSummary = `<script>alert("x")</script>`
	record.PersonalInfo.Portfolio = "javascript:alert(1)"

	out, err := HTML(record)
	require.NoError(t, err)
	doc := string(out)
	assert.NotContains(t, doc, "<script>alert")
	assert.NotContains(t, doc, `href="javascript:`)
}

func TestHTMLOmitsEmptySections(t *testing.T) {
	var record model.ResumeRecord
	record.Normalize()

	out, err := HTML(record)
	require.NoError(t, err)
	doc := string(out)
	assert.Contains(t, doc, "Name Not Provided")
	for _, id := range []string{`id="experience"`, `id="projects"`, `id="certifications"`, `id="skills"`} {
		assert.NotContains(t, doc, id)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{name: "Jane Doe", want: "Jane_Doe_resume.pdf"},
		{name: "  José   María O'Neil ", want: "José_María_ONeil_resume.pdf"},
		{name: "../../etc/passwd", want: "etcpasswd_resume.pdf"},
		{name: "", want: "Candidate_resume.pdf"},
		{name: "..", want: "Candidate_resume.pdf"},
	}
	for _, tt := range tests {
		record := model.ResumeRecord{PersonalInfo: model.PersonalInfo{FullName: tt.name}}
		assert.Equal(t, tt.want, FileName(record), tt.name)
	}
	assert.Equal(t, "Jane_Doe_resume.html", FileNameWithExt(model.ResumeRecord{PersonalInfo: model.PersonalInfo{FullName: "Jane Doe"}}, ".html"))
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://github.com/x", absoluteURL("github.com/x"))
	assert.Equal(t, "http://example.com", absoluteURL("http://example.com"))
	assert.Equal(t, "#", absoluteURL("javascript:alert(1)"))
}

func TestPDFRenderer(t *testing.T) {
	chrome := os.Getenv("CHROME_PATH")
	if chrome == "" {
		for _, candidate := range []string{"google-chrome", "chromium", "chromium-browser"} {
			if path, err := exec.LookPath(candidate); err == nil {
				chrome = path
				break
			}
		}
	}
	if chrome == "" {
		t.Skip("no Chrome available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()
	pdf, err := NewPDFRenderer(chrome).Render(ctx, fixture())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))
}
