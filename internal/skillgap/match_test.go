package skillgap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/ai/aitest"
)

func TestMatch(t *testing.T) {
	reply := `{"matched_skills": [
		{"extracted_skill": "Python", "taxonomy_skill": "Python", "confidence": "exact", "keywords": ["python", "py"], "reasoning": "same name"},
		{"extracted_skill": "Python scripting", "taxonomy_skill": "python", "confidence": "semantic"},
		{"extracted_skill": "Containers", "taxonomy_skill": "Docker", "confidence": "related"},
		{"extracted_skill": "Django", "taxonomy_skill": "Web Frameworks", "confidence": "weird"},
		{"extracted_skill": "Nothing", "taxonomy_skill": "  "}
	]}`
	oracle := aitest.New(aitest.Text(reply))
	a := newTestAnalyzer(t, oracle)

	res, err := a.Match(context.Background(), MatchRequest{
		Skills:     []string{"Python", "Python scripting", "Containers", "Django"},
		ResumeText: sampleResume,
	})
	require.NoError(t, err)
	assert.Equal(t, reply, res.Raw)

	require.Len(t, res.Matched, 3)
	assert.Equal(t, MatchedSkill{
		Skill: "Python", Keywords: []string{"python", "py"}, MatchedFrom: "Python",
		Confidence: ConfidenceExact, Reasoning: "same name",
	}, res.Matched[0])

	assert.Equal(t, "Docker", res.Matched[1].Skill)
	assert.Equal(t, ConfidencePartial, res.Matched[1].Confidence)
	assert.Contains(t, res.Matched[1].Keywords, "docker", "keywords come from the taxonomy when omitted")

	assert.Equal(t, "Web Frameworks", res.Matched[2].Skill)
	assert.Equal(t, ConfidenceNone, res.Matched[2].Confidence)

	call := oracle.Calls()[0]
	assert.True(t, call.Opts.JSON)
	assert.Equal(t, 3000, call.Opts.MaxTokens)
}

func TestMatchMalformed(t *testing.T) {
	for name, reply := range map[string]string{
		"prose":        "I could not match these skills.",
		"wrong shape":  `{"matches": []}`,
		"missing name": `{"matched_skills": [{"extracted_skill": "Go"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			a := newTestAnalyzer(t, aitest.New(aitest.Text(reply)))
			res, err := a.Match(context.Background(), MatchRequest{Skills: []string{"Go"}})
			require.Error(t, err)
			assert.Equal(t, ai.KindMalformedOutput, ai.KindOf(err))
			assert.Equal(t, reply, res.Raw)
			assert.Equal(t, reply, ai.RawOf(err))
			assert.Empty(t, res.Matched)
		})
	}
}

func TestMatchEmptyArrayIsSuccess(t *testing.T) {
	a := newTestAnalyzer(t, aitest.New(aitest.Text(`{"matched_skills": []}`)))
	res, err := a.Match(context.Background(), MatchRequest{Skills: []string{"Go"}})
	require.NoError(t, err)
	assert.Empty(t, res.Matched)
}

func TestConfidenceOf(t *testing.T) {
	assert.Equal(t, ConfidenceExact, confidenceOf(" EXACT "))
	for _, label := range []string{"semantic", "partial", "related", "contextual"} {
		assert.Equal(t, ConfidencePartial, confidenceOf(label))
	}
	assert.Equal(t, ConfidenceNone, confidenceOf(""))
	assert.Equal(t, ConfidenceNone, confidenceOf("maybe"))
}

func TestFindMatched(t *testing.T) {
	matched := []MatchedSkill{{Skill: "Docker", MatchedFrom: "Containers"}}

	m, ok := FindMatched(matched, "docker")
	assert.True(t, ok)
	assert.Equal(t, "Docker", m.Skill)

	_, ok = FindMatched(matched, "CONTAINERS")
	assert.True(t, ok)

	_, ok = FindMatched(matched, "Go")
	assert.False(t, ok)
}
