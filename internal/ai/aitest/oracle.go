// Package aitest provides a scripted Oracle for tests.
package aitest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/spigell/skillgap/internal/ai"
)

// ErrUnexpectedCall is returned when the script has no reply left.
var ErrUnexpectedCall = errors.New("aitest: unexpected oracle call")

// Reply is one scripted oracle answer.
type Reply struct {
	Text string
	Err  error
}

// Call records one Generate invocation.
type Call struct {
	Prompt string
	Opts   ai.Options
}

// Oracle replays scripted replies. Replies keyed by stage are consumed before
// the default queue.
type Oracle struct {
	mu      sync.Mutex
	model   string
	queue   []Reply
	byStage map[string][]Reply
	calls   []Call
}

// New returns an Oracle that answers with the given replies in order.
func New(replies ...Reply) *Oracle {
	return &Oracle{model: "fake-model", queue: replies, byStage: map[string][]Reply{}}
}

// Text is shorthand for a successful reply.
func Text(s string) Reply { return Reply{Text: s} }

// Fail is shorthand for a failed reply.
func Fail(err error) Reply { return Reply{Err: err} }

// OnStage queues replies for a specific stage.
func (o *Oracle) OnStage(stage string, replies ...Reply) *Oracle {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.byStage[stage] = append(o.byStage[stage], replies...)
	return o
}

func (o *Oracle) Generate(ctx context.Context, prompt string, opts ai.Options) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls = append(o.calls, Call{Prompt: prompt, Opts: opts})

	if err := ctx.Err(); err != nil {
		return "", err
	}

	if replies := o.byStage[opts.Stage]; len(replies) > 0 {
		o.byStage[opts.Stage] = replies[1:]
		return replies[0].Text, replies[0].Err
	}

	if len(o.queue) == 0 {
		return "", ErrUnexpectedCall
	}
	reply := o.queue[0]
	o.queue = o.queue[1:]
	return reply.Text, reply.Err
}

func (o *Oracle) Model() string { return o.model }

// Calls returns a copy of the recorded calls.
func (o *Oracle) Calls() []Call {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Call, len(o.calls))
	copy(out, o.calls)
	return out
}

// CallsFor returns the recorded calls for one stage.
func (o *Oracle) CallsFor(stage string) []Call {
	var out []Call
	for _, c := range o.Calls() {
		if strings.EqualFold(c.Opts.Stage, stage) {
			out = append(out, c)
		}
	}
	return out
}
