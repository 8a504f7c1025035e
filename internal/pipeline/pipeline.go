// Package pipeline orchestrates one report run as a linear state machine:
//
//	SELECTING → AGGREGATING → COMPOSING → GENERATING → RECONCILING → NOTIFYING → DONE
//
// with two extra terminals: EMPTY (no documents at all, reached from
// SELECTING) and FAILED (generation or persistence error). A failure skips
// straight to NOTIFYING with a failure payload, so exactly one notification
// is sent per run, success or failure.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brandbrief/brandbrief/internal/aggregate"
	"github.com/brandbrief/brandbrief/internal/compose"
	"github.com/brandbrief/brandbrief/internal/config"
	"github.com/brandbrief/brandbrief/internal/llm"
	"github.com/brandbrief/brandbrief/internal/notify"
	"github.com/brandbrief/brandbrief/internal/report"
	"github.com/brandbrief/brandbrief/internal/store"
	"github.com/brandbrief/brandbrief/internal/window"
)

// State names a pipeline stage or terminal.
type State string

const (
	StateSelecting   State = "SELECTING"
	StateAggregating State = "AGGREGATING"
	StateComposing   State = "COMPOSING"
	StateGenerating  State = "GENERATING"
	StateReconciling State = "RECONCILING"
	StateNotifying   State = "NOTIFYING"
	StateDone        State = "DONE"
	StateEmpty       State = "EMPTY"
	StateFailed      State = "FAILED"
)

// NumSteps is the number of steps in a full run.
const NumSteps = 6

// Step ordinals within a run. Terminal runs skip steps, so a result's step
// sequence may be sparse.
const (
	stepSelect = iota + 1
	stepAggregate
	stepCompose
	stepGenerate
	stepReconcile
	stepNotify
)

// StepResult holds the result of a single pipeline step. Step is the step's
// fixed ordinal within a full run, 1 through NumSteps.
type StepResult struct {
	Step    int
	Name    string
	Summary string
	Err     error
}

// Result holds the outcome of a full run.
type Result struct {
	Date     time.Time
	State    State
	Articles int
	Steps    []StepResult
}

// Pipeline runs the selection → aggregation → generation → reconciliation
// flow for a single logical date. Each run is one sequential invocation with
// no retries; concurrent runs for the same date race on the upsert with
// last-write-wins semantics.
type Pipeline struct {
	cfg       *config.Config
	store     store.Store
	generator llm.Generator
	notifier  notify.Notifier
}

// New creates a pipeline wired to its three collaborators.
func New(cfg *config.Config, s store.Store, generator llm.Generator, notifier notify.Notifier) *Pipeline {
	return &Pipeline{cfg: cfg, store: s, generator: generator, notifier: notifier}
}

// Run executes one full pipeline run for the given time's logical date.
func (p *Pipeline) Run(ctx context.Context, now time.Time) *Result {
	date := store.MidnightUTC(now)
	r := &Result{Date: date, State: StateSelecting}

	// SELECTING
	log.Println("Step 1/6: Selecting documents...")
	docs, err := p.selectDocuments(ctx, now)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Step: stepSelect, Name: "Select", Err: err})
		return p.fail(ctx, r, err)
	}
	r.Articles = len(docs)
	r.Steps = append(r.Steps, StepResult{
		Step:    stepSelect,
		Name:    "Select",
		Summary: fmt.Sprintf("Found %d documents to summarize", len(docs)),
	})

	if len(docs) == 0 {
		log.Printf("No documents in scope for %s", date.Format("2006-01-02"))
		return p.empty(ctx, r)
	}

	// AGGREGATING
	r.State = StateAggregating
	log.Println("Step 2/6: Aggregating signals...")
	signals := aggregate.Compute(docs, p.cfg.Generator.ContentBudget)
	r.Steps = append(r.Steps, StepResult{
		Step: stepAggregate,
		Name: "Aggregate",
		Summary: fmt.Sprintf("%d sentiment labels, %d keywords, %d ranked by engagement",
			len(signals.SentimentCounts), len(signals.TopKeywords), len(signals.TopEngaged)),
	})

	// COMPOSING
	r.State = StateComposing
	log.Println("Step 3/6: Composing generation request...")
	prompt := compose.Render(p.cfg.Entity, p.cfg.Platform, signals)
	r.Steps = append(r.Steps, StepResult{
		Step:    stepCompose,
		Name:    "Compose",
		Summary: fmt.Sprintf("Request composed (%d chars)", len(prompt)),
	})

	// GENERATING
	r.State = StateGenerating
	log.Println("Step 4/6: Generating narrative...")
	raw, err := p.generator.Generate(ctx, prompt)
	if err != nil {
		r.Steps = append(r.Steps, StepResult{Step: stepGenerate, Name: "Generate", Err: err})
		return p.fail(ctx, r, err)
	}
	narrative := llm.CleanNarrative(raw)
	r.Steps = append(r.Steps, StepResult{
		Step:    stepGenerate,
		Name:    "Generate",
		Summary: fmt.Sprintf("Narrative generated (%d chars)", len(narrative)),
	})

	// RECONCILING
	r.State = StateReconciling
	log.Println("Step 5/6: Reconciling report...")
	summary := report.Finalize(narrative, time.Now().UTC(), len(docs))
	reconciler := report.NewReconciler(p.store)
	if err := reconciler.Save(ctx, date, summary, len(docs)); err != nil {
		r.Steps = append(r.Steps, StepResult{Step: stepReconcile, Name: "Reconcile", Err: err})
		return p.fail(ctx, r, err)
	}
	r.Steps = append(r.Steps, StepResult{
		Step:    stepReconcile,
		Name:    "Reconcile",
		Summary: fmt.Sprintf("Report upserted for %s", date.Format("2006-01-02")),
	})

	// NOTIFYING
	r.State = StateNotifying
	log.Println("Step 6/6: Sending notification...")
	p.send(ctx, r,
		report.Subject(p.cfg.Entity, date, len(docs)),
		report.SuccessBody(date, len(docs), summary),
	)

	r.State = StateDone
	log.Printf("Processed %d documents for %s", len(docs), date.Format("2006-01-02"))
	return r
}

// DryRun reports what a run would do without generating, persisting, or
// notifying.
func (p *Pipeline) DryRun(ctx context.Context, now time.Time) *Result {
	date := store.MidnightUTC(now)
	r := &Result{Date: date}

	docs, err := p.selectDocuments(ctx, now)
	if err != nil {
		r.State = StateFailed
		r.Steps = append(r.Steps, StepResult{Step: stepSelect, Name: "Select", Err: err})
		return r
	}
	r.Articles = len(docs)
	r.Steps = append(r.Steps, StepResult{
		Step:    stepSelect,
		Name:    "Select",
		Summary: fmt.Sprintf("[dry-run] %d documents in scope", len(docs)),
	})

	if len(docs) == 0 {
		r.State = StateEmpty
		r.Steps = append(r.Steps, StepResult{
			Step:    stepNotify,
			Name:    "Notify",
			Summary: "[dry-run] Would send zero-article notification",
		})
		return r
	}

	existing, _ := p.store.GetReport(ctx, date)
	action := "create"
	if existing != nil {
		action = "overwrite"
	}
	r.Steps = append(r.Steps, StepResult{
		Step:    stepReconcile,
		Name:    "Reconcile",
		Summary: fmt.Sprintf("[dry-run] Would generate a narrative and %s the report for %s", action, date.Format("2006-01-02")),
	})

	r.State = StateDone
	return r
}

func (p *Pipeline) selectDocuments(ctx context.Context, now time.Time) ([]store.Document, error) {
	policy, err := window.ParsePolicy(p.cfg.Window.Policy)
	if err != nil {
		return nil, err
	}
	return window.NewSelector(p.store, policy).Select(ctx, now)
}

// empty terminates a run that found no documents at all. No generation call
// is made and no report is persisted; the zero-article notification is the
// only output.
func (p *Pipeline) empty(ctx context.Context, r *Result) *Result {
	r.State = StateNotifying
	p.send(ctx, r,
		report.Subject(p.cfg.Entity, r.Date, 0),
		report.EmptyBody(),
	)
	r.State = StateEmpty
	return r
}

// fail terminates a run after a selection, generation, or persistence error.
// The failure notification carries the cause; no report upsert is attempted
// past this point.
func (p *Pipeline) fail(ctx context.Context, r *Result, cause error) *Result {
	log.Printf("Run failed: %v", cause)
	r.State = StateNotifying
	p.send(ctx, r,
		report.Subject(p.cfg.Entity, r.Date, 0),
		report.FailureBody(cause),
	)
	r.State = StateFailed
	return r
}

// send delivers the run's single notification. Delivery failure is logged
// and recorded but never changes the run's outcome.
func (p *Pipeline) send(ctx context.Context, r *Result, subject, body string) {
	if err := p.notifier.Send(ctx, subject, body); err != nil {
		log.Printf("Notification failed: %v", err)
		r.Steps = append(r.Steps, StepResult{Step: stepNotify, Name: "Notify", Err: err})
		return
	}
	r.Steps = append(r.Steps, StepResult{Step: stepNotify, Name: "Notify", Summary: "Notification sent"})
}
