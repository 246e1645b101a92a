package skillgap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/ai/aitest"
)

func TestExtract(t *testing.T) {
	reply := "Skills: python, DOCKER, django, cpp, graphql, Python, nodejs"
	oracle := aitest.New(aitest.Text(reply))
	a := newTestAnalyzer(t, oracle)

	res, err := a.Extract(context.Background(), ExtractRequest{ResumeText: sampleResume})
	require.NoError(t, err)

	assert.Equal(t, []string{"Python", "Docker", "Django", "C++", "GraphQL", "Node.js"}, res.Skills)
	assert.Equal(t, reply, res.Raw)

	calls := oracle.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, StageExtraction, calls[0].Opts.Stage)
	assert.Equal(t, 2000, calls[0].Opts.MaxTokens)
	assert.Equal(t, DefaultTemperature, calls[0].Opts.Temperature)
	assert.False(t, calls[0].Opts.JSON)
	assert.Contains(t, calls[0].Prompt, sampleResume)
	assert.Contains(t, calls[0].Prompt, "Reference skills:")
}

func TestExtractBulletedReply(t *testing.T) {
	oracle := aitest.New(aitest.Text("```\n- Kubernetes\n- Terraform (2 years)\n```"))
	a := newTestAnalyzer(t, oracle)

	res, err := a.Extract(context.Background(), ExtractRequest{ResumeText: sampleResume})
	require.NoError(t, err)
	assert.Equal(t, []string{"Kubernetes", "Terraform"}, res.Skills)
}

func TestExtractEmpty(t *testing.T) {
	oracle := aitest.New(aitest.Text(" , ,"))
	a := newTestAnalyzer(t, oracle)

	res, err := a.Extract(context.Background(), ExtractRequest{ResumeText: sampleResume})
	require.Error(t, err)
	assert.Equal(t, ai.KindEmptyExtraction, ai.KindOf(err))
	assert.Equal(t, " , ,", res.Raw)
	assert.Equal(t, " , ,", ai.RawOf(err))
	assert.Empty(t, res.Skills)
}

func TestExtractRejectsShortResume(t *testing.T) {
	oracle := aitest.New()
	a := newTestAnalyzer(t, oracle)

	_, err := a.Extract(context.Background(), ExtractRequest{ResumeText: "  too short  "})
	require.Error(t, err)
	assert.Equal(t, ai.KindIncompleteInput, ai.KindOf(err))
	assert.Empty(t, oracle.Calls())
}

func TestExtractGatewayFailure(t *testing.T) {
	oracle := aitest.New(aitest.Fail(errors.New("connection reset")))
	a := newTestAnalyzer(t, oracle)

	res, err := a.Extract(context.Background(), ExtractRequest{ResumeText: sampleResume})
	require.Error(t, err)
	assert.Equal(t, ai.KindTransientInference, ai.KindOf(err))
	assert.Empty(t, res.Skills, "no heuristic fallback on failure")
}

func TestExtractTaxonomyOverride(t *testing.T) {
	oracle := aitest.New(aitest.Text("Go"))
	a := newTestAnalyzer(t, oracle)

	_, err := a.Extract(context.Background(), ExtractRequest{ResumeText: sampleResume, TaxonomyContext: "CUSTOM CONTEXT"})
	require.NoError(t, err)
	assert.Contains(t, oracle.Calls()[0].Prompt, "CUSTOM CONTEXT")
	assert.NotContains(t, oracle.Calls()[0].Prompt, "Reference skills:")
}
