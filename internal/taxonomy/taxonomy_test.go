package taxonomy

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `{
  "roles": [
    {"role": "Backend", "skills": [
      {"skill": "Go", "keywords": ["golang", "Go"], "topics": ["Channels", {"topic": "Modules"}]},
      {"skill": "Docker", "keywords": ["containers"], "topics": []}
    ]},
    {"role": "Platform", "skills": [
      {"skill": "go", "keywords": ["goroutines"], "topics": ["Channels"]},
      {"skill": "Kubernetes", "keywords": ["k8s"]}
    ]}
  ]
}`

func TestParseAndSummary(t *testing.T) {
	tax, err := Parse([]byte(sample))
	require.NoError(t, err)

	sum := tax.Summary()
	assert.Equal(t, []string{"Docker", "Go", "Kubernetes"}, sum.Skills)
	assert.Equal(t, []string{"Backend", "Platform"}, sum.Roles)
	assert.Equal(t, []string{"Channels", "Modules"}, sum.Topics)
	assert.Equal(t, []string{"containers", "go", "golang", "goroutines", "k8s"}, sum.Keywords)

	skill, ok := tax.Lookup("GOROUTINES")
	require.True(t, ok)
	assert.Equal(t, "Go", skill.Name)
	assert.Equal(t, []string{"golang", "Go", "goroutines"}, skill.Keywords)
	assert.Equal(t, []Topic{"Channels", "Modules"}, skill.Topics)
}

func TestCanonical(t *testing.T) {
	tax, err := Parse([]byte(sample))
	require.NoError(t, err)

	got, ok := tax.Canonical("  kubernetes ")
	assert.True(t, ok)
	assert.Equal(t, "Kubernetes", got)

	_, ok = tax.Canonical("k8s")
	assert.False(t, ok, "keywords are not canonical names")

	got, ok = tax.Resolve("K8S")
	assert.True(t, ok)
	assert.Equal(t, "Kubernetes", got)

	_, ok = tax.Resolve("Haskell")
	assert.False(t, ok)

	var nilTax *Taxonomy
	_, ok = nilTax.Canonical("Go")
	assert.False(t, ok)
}

func TestSummaryTopicLimit(t *testing.T) {
	var b strings.Builder
	b.WriteString(`{"roles":[{"role":"R","skills":[{"skill":"S","topics":[`)
	for i := 0; i < MaxSummaryTopics+50; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"topic-`)
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString(string(rune('a' + i%26)))
		b.WriteString(`-`)
		b.WriteString(strings.Repeat("y", i/26))
		b.WriteString(`"`)
	}
	b.WriteString(`]}]}]}`)

	tax, err := Parse([]byte(b.String()))
	require.NoError(t, err)
	assert.Len(t, tax.Summary().Topics, MaxSummaryTopics)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`{"roles": []}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"roles": [{"role": "R", "skills": [{"skill": "S", "topics": [1]}]}]}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tax.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	tax, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, tax.Roles(), 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestSharedIsSingleton(t *testing.T) {
	first, err := Shared()
	require.NoError(t, err)
	second, err := Shared()
	require.NoError(t, err)
	assert.Same(t, first, second)

	name, ok := first.Canonical("graphql")
	assert.True(t, ok)
	assert.Equal(t, "GraphQL", name)
}

func TestContext(t *testing.T) {
	tax, err := Parse([]byte(sample))
	require.NoError(t, err)

	ctx := tax.Context(2, 1, 0)
	assert.Contains(t, ctx, "Reference skills: Docker, Go\n")
	assert.Contains(t, ctx, "Reference roles: Backend")
	assert.NotContains(t, ctx, "Kubernetes")
	assert.NotContains(t, ctx, "Keywords")

	ctx = tax.Context(0, 0, 2)
	assert.Contains(t, ctx, "Keywords and variations: containers, go")
}
