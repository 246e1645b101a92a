package skillgap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/ai/aitest"
)

func TestSynthesizePathDefaults(t *testing.T) {
	reply := `[
		{"id": "graphql-1", "title": "GraphQL basics", "description": "Schemas", "duration": "1 week", "difficulty": "Beginner", "resources": ["graphql.org", 7, ""]},
		{"title": "  ", "difficulty": "expert"},
		"not an object",
		{"id": 4, "resources": "one link"}
	]`
	oracle := aitest.New(aitest.Text(reply))
	a := newTestAnalyzer(t, oracle)

	res, err := a.SynthesizePath(context.Background(), PathRequest{
		Missing:  []string{"GraphQL"},
		Current:  []string{"Python"},
		JobTitle: "Backend Engineer",
	})
	require.NoError(t, err)
	assert.Equal(t, reply, res.Raw)

	assert.Equal(t, []LearningStep{
		{ID: "graphql-1", Title: "GraphQL basics", Description: "Schemas", Duration: "1 week", Difficulty: DifficultyBeginner, Resources: []string{"graphql.org", "7"}},
		{ID: "2", Title: "Step 2", Duration: "2-4 weeks", Difficulty: DifficultyIntermediate, Resources: []string{}},
		{ID: "3", Title: "Step 3", Duration: "2-4 weeks", Difficulty: DifficultyIntermediate, Resources: []string{}},
		{ID: "4", Title: "Step 4", Duration: "2-4 weeks", Difficulty: DifficultyIntermediate, Resources: []string{"one link"}},
	}, res.Steps)

	prompt := oracle.Calls()[0].Prompt
	assert.Contains(t, prompt, "- GraphQL")
	assert.Contains(t, prompt, "- Python")
	assert.Contains(t, prompt, "Role: Backend Engineer")
}

func TestSynthesizePathObjectForm(t *testing.T) {
	a := newTestAnalyzer(t, aitest.New(aitest.Text(`{"steps": [{"title": "Kafka"}]}`)))

	res, err := a.SynthesizePath(context.Background(), PathRequest{Missing: []string{"Kafka"}})
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "Kafka", res.Steps[0].Title)
	assert.Equal(t, "1", res.Steps[0].ID)
}

func TestSynthesizePathNoMissingSkills(t *testing.T) {
	oracle := aitest.New()
	a := newTestAnalyzer(t, oracle)

	res, err := a.SynthesizePath(context.Background(), PathRequest{Missing: []string{" "}, Current: []string{"Go"}})
	require.NoError(t, err)
	assert.Empty(t, res.Steps)
	assert.NotNil(t, res.Steps)
	assert.Empty(t, oracle.Calls())
}

func TestSynthesizePathMalformed(t *testing.T) {
	for name, reply := range map[string]string{
		"prose":       "Learn GraphQL first.",
		"wrong shape": `{"plan": []}`,
		"scalar":      `42`,
	} {
		t.Run(name, func(t *testing.T) {
			a := newTestAnalyzer(t, aitest.New(aitest.Text(reply)))
			res, err := a.SynthesizePath(context.Background(), PathRequest{Missing: []string{"GraphQL"}})
			require.Error(t, err)
			assert.Equal(t, ai.KindMalformedOutput, ai.KindOf(err))
			assert.Equal(t, reply, res.Raw)
		})
	}
}
