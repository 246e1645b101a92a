// Package taxonomy holds the read-only skill reference corpus: roles, the
// skills each role needs, and the keywords and topics attached to each skill.
package taxonomy

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/spigell/skillgap/internal/utils"
)

// MaxSummaryTopics caps the topics listed in a Summary.
const MaxSummaryTopics = 200

//go:embed data/roadmaps.json
var defaultData []byte

// Key returns the caseless lookup key for a skill name.
func Key(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Topic is a learning topic. The source file stores topics either as plain
// strings or as {"topic": "..."} objects.
type Topic string

func (t *Topic) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Topic(strings.TrimSpace(s))
		return nil
	}

	var obj struct {
		Topic string `json:"topic"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("topic must be a string or an object with a topic field: %w", err)
	}
	*t = Topic(strings.TrimSpace(obj.Topic))
	return nil
}

type Skill struct {
	Name     string   `json:"skill"`
	Keywords []string `json:"keywords"`
	Topics   []Topic  `json:"topics"`
}

type Role struct {
	Name   string  `json:"role"`
	Skills []Skill `json:"skills"`
}

// Summary is the flattened, sorted view used in prompts.
type Summary struct {
	Skills   []string
	Roles    []string
	Topics   []string
	Keywords []string
}

// Taxonomy is immutable after Parse returns.
type Taxonomy struct {
	roles []Role

	// skills maps the folded skill name to the merged skill entry.
	skills map[string]Skill
	// aliases maps folded keywords to the first skill that lists them.
	aliases map[string]string
	summary Summary
}

// Parse builds a Taxonomy from the roles JSON document.
func Parse(data []byte) (*Taxonomy, error) {
	var doc struct {
		Roles []Role `json:"roles"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode taxonomy: %w", err)
	}
	if len(doc.Roles) == 0 {
		return nil, errors.New("taxonomy has no roles")
	}

	t := &Taxonomy{
		roles:   doc.Roles,
		skills:  make(map[string]Skill),
		aliases: make(map[string]string),
	}
	t.index()

	return t, nil
}

// Load reads a taxonomy file from disk.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %q: %w", path, err)
	}
	return Parse(data)
}

var (
	sharedOnce sync.Once
	shared     *Taxonomy
	sharedErr  error
)

// Shared returns the process-wide taxonomy built from the embedded corpus.
func Shared() (*Taxonomy, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = Parse(defaultData)
	})
	return shared, sharedErr
}

func (t *Taxonomy) index() {
	roles := map[string]struct{}{}
	topics := map[string]struct{}{}
	keywords := map[string]struct{}{}

	for _, role := range t.roles {
		if name := strings.TrimSpace(role.Name); name != "" {
			roles[name] = struct{}{}
		}

		for _, skill := range role.Skills {
			name := strings.TrimSpace(skill.Name)
			if name == "" {
				continue
			}
			key := Key(name)

			merged, seen := t.skills[key]
			if !seen {
				merged = Skill{Name: name}
			}
			merged.Keywords = appendUnique(merged.Keywords, skill.Keywords...)
			merged.Topics = appendUniqueTopics(merged.Topics, skill.Topics...)
			t.skills[key] = merged

			for _, kw := range skill.Keywords {
				kw = strings.TrimSpace(kw)
				if kw == "" {
					continue
				}
				keywords[strings.ToLower(kw)] = struct{}{}
				if _, ok := t.aliases[Key(kw)]; !ok {
					t.aliases[Key(kw)] = merged.Name
				}
			}
			for _, topic := range skill.Topics {
				if topic != "" {
					topics[string(topic)] = struct{}{}
				}
			}
		}
	}

	skills := make(map[string]struct{}, len(t.skills))
	for _, s := range t.skills {
		skills[s.Name] = struct{}{}
	}

	t.summary = Summary{
		Skills:   sortedKeys(skills),
		Roles:    sortedKeys(roles),
		Topics:   utils.Head(sortedKeys(topics), MaxSummaryTopics),
		Keywords: sortedKeys(keywords),
	}
}

// Roles returns the roles in file order.
func (t *Taxonomy) Roles() []Role {
	out := make([]Role, len(t.roles))
	copy(out, t.roles)
	return out
}

// Summary returns sorted skill, role, topic and keyword lists.
func (t *Taxonomy) Summary() Summary {
	return Summary{
		Skills:   append([]string(nil), t.summary.Skills...),
		Roles:    append([]string(nil), t.summary.Roles...),
		Topics:   append([]string(nil), t.summary.Topics...),
		Keywords: append([]string(nil), t.summary.Keywords...),
	}
}

// Lookup finds a skill by name or keyword, case-insensitively.
func (t *Taxonomy) Lookup(name string) (Skill, bool) {
	canonical, ok := t.Resolve(name)
	if !ok {
		return Skill{}, false
	}
	skill, ok := t.skills[Key(canonical)]
	return skill, ok
}

// Canonical returns the taxonomy spelling of a skill name. Keywords are not
// consulted, so "GitHub" stays distinct from "Git".
func (t *Taxonomy) Canonical(name string) (string, bool) {
	if t == nil || strings.TrimSpace(name) == "" {
		return "", false
	}
	skill, ok := t.skills[Key(name)]
	return skill.Name, ok
}

// Resolve is Canonical with a keyword fallback.
func (t *Taxonomy) Resolve(name string) (string, bool) {
	if canonical, ok := t.Canonical(name); ok {
		return canonical, true
	}
	if t == nil {
		return "", false
	}
	canonical, ok := t.aliases[Key(name)]
	return canonical, ok
}

// Context renders the prompt block describing the reference corpus.
// Non-positive skill and role limits list everything; maxKeywords == 0 leaves
// keywords out.
func (t *Taxonomy) Context(maxSkills, maxRoles, maxKeywords int) string {
	var b strings.Builder
	b.WriteString("Reference skills: ")
	b.WriteString(strings.Join(utils.Head(t.summary.Skills, maxSkills), ", "))
	b.WriteString("\nReference roles: ")
	b.WriteString(strings.Join(utils.Head(t.summary.Roles, maxRoles), ", "))
	if maxKeywords != 0 && len(t.summary.Keywords) > 0 {
		b.WriteString("\nKeywords and variations: ")
		b.WriteString(strings.Join(utils.Head(t.summary.Keywords, maxKeywords), ", "))
	}
	return b.String()
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || containsFold(dst, v) {
			continue
		}
		dst = append(dst, v)
	}
	return dst
}

func appendUniqueTopics(dst []Topic, values ...Topic) []Topic {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range dst {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			dst = append(dst, v)
		}
	}
	return dst
}

func containsFold(values []string, v string) bool {
	key := Key(v)
	for _, existing := range values {
		if Key(existing) == key {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

