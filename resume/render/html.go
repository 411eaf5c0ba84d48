// Package render projects a ResumeRecord into a downloadable document.
package render

import (
	"bytes"
	"embed"
	"html/template"
	"regexp"
	"strings"

	"resume-optimizer/internal/shared/util"
	"resume-optimizer/resume/model"
)

//go:embed templates/resume.html.tmpl
var templateFS embed.FS

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var resumeTemplate = template.Must(template.New("resume.html.tmpl").Funcs(template.FuncMap{
	"stripTags": func(s string) string { return strings.TrimSpace(tagPattern.ReplaceAllString(s, "")) },
}).ParseFS(templateFS, "templates/resume.html.tmpl"))

type link struct {
	Href template.URL
	Text string
}

type view struct {
	Record  model.ResumeRecord
	Theme   Theme
	Contact string
	Links   []link
	Skills  []string
}

// HTML renders the record as a one-page HTML document. It does not validate.
func HTML(record model.ResumeRecord) ([]byte, error) {
	return HTMLWithTheme(record, DefaultTheme)
}

// HTMLWithTheme renders with a custom theme.
func HTMLWithTheme(record model.ResumeRecord, theme Theme) ([]byte, error) {
	v := view{
		Record:  record,
		Theme:   theme,
		Contact: joinNonEmpty(" | ", record.PersonalInfo.Phone, record.PersonalInfo.Email, record.PersonalInfo.Location),
		Links:   links(record.PersonalInfo),
	}
	v.Skills = append(v.Skills, nonEmpty(record.Skills.Technical)...)
	v.Skills = append(v.Skills, nonEmpty(record.Skills.SoftSkills)...)

	var buf bytes.Buffer
	if err := resumeTemplate.Execute(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func links(p model.PersonalInfo) []link {
	var out []link
	for _, raw := range []string{p.LinkedIn, p.GitHub, p.Portfolio} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		out = append(out, link{Href: template.URL(absoluteURL(raw)), Text: raw})
	}
	return out
}

// absoluteURL adds https:// to bare hosts such as linkedin.com/in/jane and
// neutralizes any scheme other than http or https.
func absoluteURL(raw string) string {
	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return raw
	case strings.Contains(lower, ":") && !strings.Contains(lower[:strings.Index(lower, ":")], "."):
		return "#"
	default:
		return "https://" + raw
	}
}

var unsafeFileChars = regexp.MustCompile(`[^\p{L}\p{N}_.-]+`)

// FileName returns the download name for the PDF rendering of record.
func FileName(record model.ResumeRecord) string {
	return FileNameWithExt(record, ".pdf")
}

// FileNameWithExt returns <Full_Name>_resume<ext>, falling back to
// Candidate when the name is empty or unusable.
func FileNameWithExt(record model.ResumeRecord, ext string) string {
	name := strings.Join(strings.Fields(record.PersonalInfo.FullName), "_")
	name = unsafeFileChars.ReplaceAllString(name, "")
	name = strings.Trim(name, "._-")
	safe, err := util.SanitizeFileName(name)
	if err != nil {
		safe = "Candidate"
	}
	return safe + "_resume" + ext
}

func joinNonEmpty(sep string, values ...string) string {
	return strings.Join(nonEmpty(values), sep)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
