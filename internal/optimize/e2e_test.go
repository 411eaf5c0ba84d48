package optimize

import (
	"context"
	"html"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"resume-optimizer/resume/render"
	"resume-optimizer/resume/truth"
)

func TestAcmeScenario(t *testing.T) {
	source := "Company: Acme Corp\nRole: Backend Engineer\nDates: 2019-2022\n\nJane Doe\njane@example.com\n+1 555 010 2000\nhttps://linkedin.com/in/janedoe\nhttps://github.com/janedoe\nBerlin, Germany\nLocation: Berlin\nTU Berlin, BSc Computer Science, 2018"
	jd := "Kubernetes, Go, distributed systems"

	var sent string
	client := &mockLLM{}
	client.On("Generate", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.String(1) }).
		Return(readFixture(t, "acme_response.json"), nil).Once()
	svc, _ := newTestService(client, nil)

	result, err := svc.Optimize(context.Background(), Request{ResumeText: source, JobDescription: jd})
	require.NoError(t, err)

	for _, want := range []string{"Acme Corp", "Backend Engineer", "2019-2022", "Kubernetes", "Go", "distributed systems"} {
		assert.Contains(t, sent, want)
	}

	assert.Empty(t, truth.Check(source, result.Record))
	assert.Empty(t, result.Warnings)

	doc, err := render.HTML(result.Record)
	require.NoError(t, err)
	text := html.UnescapeString(string(doc))
	record := result.Record
	for _, want := range []string{
		record.PersonalInfo.FullName,
		record.PersonalInfo.Email,
		record.PersonalInfo.Phone,
		record.ProfessionalSummary,
		record.WorkExperience[0].Company,
		record.WorkExperience[0].Role,
		record.WorkExperience[0].Dates,
		record.WorkExperience[0].DescriptionBullets[0],
		record.WorkExperience[0].DescriptionBullets[1],
		record.Education[0].Institution,
		record.Projects[0].Title,
		record.Certifications[0],
	} {
		assert.Contains(t, text, want)
	}
	for _, skill := range record.Skills.Technical {
		assert.Contains(t, text, skill)
	}
}
