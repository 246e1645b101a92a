package skillgap

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/ai/aitest"
)

func TestExpandJob(t *testing.T) {
	oracle := aitest.New(aitest.Text("  The role needs senior Python.  "))
	a := newTestAnalyzer(t, oracle)

	longDescription := strings.Repeat("d", expansionDescriptionWindow+500)
	res, err := a.ExpandJob(context.Background(), ExpandRequest{
		Title:          "Backend Engineer",
		Company:        "Acme",
		Description:    longDescription,
		RequiredSkills: []string{"Python", "Docker"},
	})
	require.NoError(t, err)
	assert.Equal(t, "The role needs senior Python.", res.Narrative)
	assert.Equal(t, "  The role needs senior Python.  ", res.Raw)

	prompt := oracle.Calls()[0].Prompt
	assert.Contains(t, prompt, "Job title: Backend Engineer")
	assert.Contains(t, prompt, "Required skills: Python, Docker")
	assert.NotContains(t, prompt, strings.Repeat("d", expansionDescriptionWindow+1))
	assert.Equal(t, 1000, oracle.Calls()[0].Opts.MaxTokens)
}

func TestExpandJobIncompleteInput(t *testing.T) {
	tests := map[string]ExpandRequest{
		"no title":       {Description: "Build APIs"},
		"no description": {Title: "Engineer", Description: "   "},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			oracle := aitest.New()
			a := newTestAnalyzer(t, oracle)

			_, err := a.ExpandJob(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, ai.KindIncompleteInput, ai.KindOf(err))
			assert.Empty(t, oracle.Calls(), "no oracle call for unsatisfiable input")
		})
	}
}

func TestExpandJobNoFallback(t *testing.T) {
	a := newTestAnalyzer(t, aitest.New(aitest.Fail(errors.New("timeout"))))

	res, err := a.ExpandJob(context.Background(), ExpandRequest{Title: "Engineer", Description: "Build APIs"})
	require.Error(t, err)
	assert.Equal(t, ai.KindTransientInference, ai.KindOf(err))
	assert.Empty(t, res.Narrative, "the original description is never substituted")
}
