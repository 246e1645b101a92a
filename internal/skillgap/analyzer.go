package skillgap

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/skillgap/internal/ai"
	"github.com/spigell/skillgap/internal/logger"
	"github.com/spigell/skillgap/internal/parser"
	"github.com/spigell/skillgap/internal/taxonomy"
)

const (
	StageExtraction    = "extraction"
	StageMatching      = "matching"
	StageProficiency   = "proficiency"
	StageExpansion     = "expansion"
	StageCompatibility = "compatibility"
	StageLearningPath  = "learning_path"
)

const DefaultTemperature = 0.5

//go:embed prompts/*.md
var promptFiles embed.FS

//go:embed schemas/*.json
var schemaFiles embed.FS

// Inferer is the gateway capability the stages depend on.
type Inferer interface {
	Infer(ctx context.Context, prompt string, opts ai.Options) (*ai.RawResult, error)
}

type stageSpec struct {
	system    string
	template  string
	maxTokens int
	json      bool
}

// Analyzer runs the individual stages. It is safe for concurrent use.
type Analyzer struct {
	gateway     Inferer
	taxonomy    *taxonomy.Taxonomy
	logger      *zap.Logger
	model       string
	temperature float64
	retries     *int
	threshold   float64
	expand      bool
	stages      map[string]stageSpec
}

// Option customizes an Analyzer.
type Option func(*Analyzer)

func WithLogger(l *zap.Logger) Option {
	return func(a *Analyzer) { a.logger = l }
}

// WithModel overrides the oracle's default model for every stage.
func WithModel(model string) Option {
	return func(a *Analyzer) { a.model = strings.TrimSpace(model) }
}

func WithTemperature(t float64) Option {
	return func(a *Analyzer) { a.temperature = t }
}

// WithRetries sets the retry count passed to the gateway.
func WithRetries(n int) Option {
	return func(a *Analyzer) {
		if n >= 0 {
			a.retries = ai.Retries(n)
		}
	}
}

// WithMatchThreshold sets the current/missing split point.
func WithMatchThreshold(t float64) Option {
	return func(a *Analyzer) { a.threshold = t }
}

// WithExpansion toggles job description expansion in Analyze.
func WithExpansion(enabled bool) Option {
	return func(a *Analyzer) { a.expand = enabled }
}

// NewAnalyzer wires the stages to a gateway. A nil taxonomy falls back to
// the shared embedded one.
func NewAnalyzer(gateway Inferer, tax *taxonomy.Taxonomy, opts ...Option) (*Analyzer, error) {
	if gateway == nil {
		return nil, errors.New("gateway is required")
	}
	if tax == nil {
		shared, err := taxonomy.Shared()
		if err != nil {
			return nil, fmt.Errorf("load taxonomy: %w", err)
		}
		tax = shared
	}

	a := &Analyzer{
		gateway:     gateway,
		taxonomy:    tax,
		temperature: DefaultTemperature,
		threshold:   DefaultMatchThreshold,
		expand:      true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}

	stages, err := loadStages()
	if err != nil {
		return nil, err
	}
	a.stages = stages

	return a, nil
}

// Threshold reports the configured match threshold.
func (a *Analyzer) Threshold() float64 {
	return a.threshold
}

// Taxonomy returns the reference corpus in use.
func (a *Analyzer) Taxonomy() *taxonomy.Taxonomy {
	return a.taxonomy
}

var stageBudgets = map[string]struct {
	maxTokens int
	json      bool
}{
	StageExtraction:    {maxTokens: 2000},
	StageMatching:      {maxTokens: 3000, json: true},
	StageProficiency:   {maxTokens: 2500, json: true},
	StageExpansion:     {maxTokens: 1000},
	StageCompatibility: {maxTokens: 5000, json: true},
	StageLearningPath:  {maxTokens: 3000, json: true},
}

func loadStages() (map[string]stageSpec, error) {
	stages := make(map[string]stageSpec, len(stageBudgets))
	for name, budget := range stageBudgets {
		system, err := promptFiles.ReadFile("prompts/" + name + "_system.md")
		if err != nil {
			return nil, fmt.Errorf("load %s system prompt: %w", name, err)
		}
		template, err := promptFiles.ReadFile("prompts/" + name + ".md")
		if err != nil {
			return nil, fmt.Errorf("load %s prompt: %w", name, err)
		}
		stages[name] = stageSpec{
			system:    strings.TrimSpace(string(system)),
			template:  string(template),
			maxTokens: budget.maxTokens,
			json:      budget.json,
		}
	}
	return stages, nil
}

func mustSchema(name string) *parser.Schema {
	data, err := schemaFiles.ReadFile("schemas/" + name + ".json")
	if err != nil {
		panic(fmt.Sprintf("missing schema %s: %v", name, err))
	}
	return parser.MustSchema(name, string(data))
}

// render fills {{KEY}} placeholders in the stage template.
func render(template string, values map[string]string) string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.TrimSpace(strings.NewReplacer(pairs...).Replace(template))
}

type runIDKey struct{}

// WithRunID tags ctx so stage logs and gateway calls carry the run id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

func runIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

func (a *Analyzer) stageLogger(ctx context.Context, stage string) *zap.Logger {
	return logger.ForStage(a.logger, stage, runIDFrom(ctx))
}

// infer renders and sends one stage prompt. The returned raw text is set
// whenever the oracle answered, even if the call ultimately failed.
func (a *Analyzer) infer(ctx context.Context, stage string, values map[string]string) (string, string, error) {
	st, ok := a.stages[stage]
	if !ok {
		return "", "", fmt.Errorf("unknown stage %q", stage)
	}

	res, err := a.gateway.Infer(ctx, render(st.template, values), ai.Options{
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   st.maxTokens,
		Retries:     a.retries,
		System:      st.system,
		JSON:        st.json,
		Stage:       stage,
		RunID:       runIDFrom(ctx),
	})

	var content, raw string
	if res != nil {
		content, raw = res.Content, res.Raw
	}
	if err != nil {
		if ai.KindOf(err) == ai.KindUnknown {
			err = ai.NewError(ai.KindTransientInference, stage, "inference failed", raw, err)
		}
		return "", raw, err
	}
	return content, raw, nil
}

// malformed wraps a parse failure with the stage and raw text.
func malformed(stage, raw string, err error) error {
	var perr *parser.ParseError
	detail := "unparseable response"
	if errors.As(err, &perr) {
		detail = perr.Reason
		if len(perr.Violations) > 0 {
			detail += ": " + strings.Join(perr.Violations, "; ")
		}
	}
	return ai.NewError(ai.KindMalformedOutput, stage, detail, raw, err)
}

func bulletList(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return "- " + strings.Join(items, "\n- ")
}
