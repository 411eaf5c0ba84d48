// Package prompt builds the model prompt for a resume and a job description.
package prompt

import (
	"embed"
	"strings"
	"text/template"
)

//go:embed templates/*.txt
var templateFS embed.FS

var (
	templates = template.Must(template.ParseFS(templateFS, "templates/initial.txt", "templates/refine.txt"))
	schema    = strings.TrimSpace(mustRead("templates/schema.txt"))
)

type templateData struct {
	Resume         string
	JobDescription string
	Schema         string
}

// Build renders the prompt for mode. For ModeRefine, resumeInput is the
// previous record serialized as JSON. Unknown modes render as ModeInitial.
func Build(mode Mode, resumeInput, jobDescription string) string {
	name := "initial.txt"
	if mode == ModeRefine {
		name = "refine.txt"
	}
	var b strings.Builder
	data := templateData{
		Resume:         strings.TrimSpace(resumeInput),
		JobDescription: strings.TrimSpace(jobDescription),
		Schema:         schema,
	}
	// Execute only fails on a broken template or writer; both are static here.
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		panic("prompt: " + err.Error())
	}
	return b.String()
}

// Schema returns the output structure shown to the model.
func Schema() string {
	return schema
}

func mustRead(name string) string {
	data, err := templateFS.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return string(data)
}
