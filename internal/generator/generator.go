// Package generator runs the regeneration pass: load both document
// collections, render every artifact and write it back to the workspace.
package generator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/starford/decisionlog/internal/apperr"
	"github.com/starford/decisionlog/internal/index"
	"github.com/starford/decisionlog/internal/loader"
	"github.com/starford/decisionlog/internal/metrics"
	"github.com/starford/decisionlog/internal/models"
	"github.com/starford/decisionlog/internal/render"
	"github.com/starford/decisionlog/internal/storage"
)

// Paths locates the inputs and outputs, relative to the workspace root.
type Paths struct {
	DecisionsDir string
	IdeasDir     string
	Changelog    string
	Relations    string
}

// DefaultPaths returns the conventional workspace layout.
func DefaultPaths() Paths {
	return Paths{
		DecisionsDir: "decisions",
		IdeasDir:     "ideas",
		Changelog:    "CHANGELOG.md",
		Relations:    "RELATIONS.md",
	}
}

// Collection is the result of loading both categories.
type Collection struct {
	ADRs  []models.Document
	Ideas []models.Document
}

// Artifact is one rendered output file.
type Artifact struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Content []byte `json:"-"`
}

// Report summarises a finished pass.
type Report struct {
	ADRs      int           `json:"adrs"`
	Ideas     int           `json:"ideas"`
	Artifacts []Artifact    `json:"artifacts"`
	Duration  time.Duration `json:"duration"`
}

// Generator owns the workspace paths and runs regeneration passes. Passes
// are serialised; concurrent callers wait for each other.
type Generator struct {
	store    storage.Provider
	paths    Paths
	index    index.DocumentIndex
	recorder metrics.Recorder
	logger   *slog.Logger
	out      io.Writer
	now      func() time.Time

	mu sync.Mutex
}

// Option configures a Generator.
type Option func(*Generator)

// WithIndex keeps idx synced with every loaded collection.
func WithIndex(idx index.DocumentIndex) Option {
	return func(g *Generator) { g.index = idx }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(g *Generator) { g.recorder = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithOutput sets where confirmation lines are printed.
func WithOutput(w io.Writer) Option {
	return func(g *Generator) { g.out = w }
}

// WithClock overrides the clock used for the changelog timestamp.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// New creates a Generator over store.
func New(store storage.Provider, paths Paths, opts ...Option) *Generator {
	g := &Generator{
		store:    store,
		paths:    paths,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		out:      io.Discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Paths returns the configured workspace layout.
func (g *Generator) Paths() Paths {
	return g.paths
}

// Load reads both collections from the workspace.
func (g *Generator) Load(ctx context.Context) (*Collection, error) {
	adrs, err := loader.Load(g.store, models.KindADR, g.paths.DecisionsDir)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ideas, err := loader.Load(g.store, models.KindIdea, g.paths.IdeasDir)
	if err != nil {
		return nil, err
	}
	return &Collection{ADRs: adrs, Ideas: ideas}, nil
}

// Refresh loads both collections and syncs the index without rendering or
// writing anything.
func (g *Generator) Refresh(ctx context.Context) (*Collection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.Load(ctx)
	if err != nil {
		return nil, err
	}
	g.observe(c)
	g.syncIndex(c)
	return c, nil
}

// step renders one artifact. A nil artifact means the step has nothing to
// produce for this collection.
type step func(c *Collection) (*Artifact, error)

func (g *Generator) steps() []step {
	return []step{
		g.indexStep(models.KindADR, g.paths.DecisionsDir, "ADR"),
		g.indexStep(models.KindIdea, g.paths.IdeasDir, "아이디어"),
		g.changelogStep,
		g.relationsStep,
	}
}

func (g *Generator) indexStep(kind models.Kind, dir, noun string) step {
	return func(c *Collection) (*Artifact, error) {
		docs := c.ADRs
		if kind == models.KindIdea {
			docs = c.Ideas
		}
		if len(docs) == 0 {
			return nil, nil
		}
		name := path.Join(dir, loader.IndexName)
		current, err := g.store.Read(name)
		if err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		updated, err := render.Splice(string(current), render.Table(kind, docs))
		if err != nil {
			return nil, fmt.Errorf("generator: %s: %w", name, err)
		}
		return &Artifact{
			Path:    name,
			Message: fmt.Sprintf("%s 업데이트 완료 (%d개 %s)", name, len(docs), noun),
			Content: []byte(updated),
		}, nil
	}
}

func (g *Generator) changelogStep(c *Collection) (*Artifact, error) {
	return &Artifact{
		Path:    g.paths.Changelog,
		Message: g.paths.Changelog + " 생성 완료",
		Content: []byte(render.Changelog(c.ADRs, c.Ideas, g.now())),
	}, nil
}

func (g *Generator) relationsStep(c *Collection) (*Artifact, error) {
	return &Artifact{
		Path:    g.paths.Relations,
		Message: g.paths.Relations + " 생성 완료",
		Content: []byte(render.Relations(loader.ADRs(c.ADRs))),
	}, nil
}

// Run performs one regeneration pass. Artifacts are rendered and written one
// at a time in a fixed order; the first error aborts the remaining steps.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()
	report, err := g.run(ctx)
	g.recorder.ObserveRunDuration(time.Since(start))
	if err != nil {
		g.recorder.IncRunOutcome(metrics.OutcomeFailed)
		return nil, err
	}
	report.Duration = time.Since(start)
	g.recorder.IncRunOutcome(metrics.OutcomeSuccess)
	g.logger.Info("regeneration complete",
		slog.Int("adrs", report.ADRs),
		slog.Int("ideas", report.Ideas),
		slog.Int("artifacts", len(report.Artifacts)),
		slog.Duration("duration", report.Duration))
	return report, nil
}

func (g *Generator) run(ctx context.Context) (*Report, error) {
	c, err := g.Load(ctx)
	if err != nil {
		return nil, err
	}
	g.observe(c)
	g.syncIndex(c)

	report := &Report{ADRs: len(c.ADRs), Ideas: len(c.Ideas)}
	for _, s := range g.steps() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		a, err := s(c)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		if err := g.store.Write(a.Path, a.Content); err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}
		g.recorder.IncArtifactWritten(a.Path)
		g.logger.Debug("artifact written", slog.String("path", a.Path), slog.Int("bytes", len(a.Content)))
		fmt.Fprintf(g.out, "✓ %s\n", a.Message)
		report.Artifacts = append(report.Artifacts, *a)
	}
	return report, nil
}

// Check renders every artifact without writing and returns the paths whose
// content on disk differs. The changelog timestamp is ignored. A non-empty
// result comes with apperr.ErrStale.
func (g *Generator) Check(ctx context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, err := g.Load(ctx)
	if err != nil {
		return nil, err
	}
	g.observe(c)

	var stale []string
	for _, s := range g.steps() {
		a, err := s(c)
		if err != nil {
			return nil, err
		}
		if a == nil {
			continue
		}
		current, err := g.store.Read(a.Path)
		if err != nil {
			stale = append(stale, a.Path)
			continue
		}
		want, got := a.Content, current
		if a.Path == g.paths.Changelog {
			want = []byte(render.StripTimestamp(string(want)))
			got = []byte(render.StripTimestamp(string(got)))
		}
		if !bytes.Equal(want, got) {
			stale = append(stale, a.Path)
		}
	}

	if len(stale) > 0 {
		g.recorder.IncRunOutcome(metrics.OutcomeStale)
		return stale, apperr.ErrStale
	}
	return nil, nil
}

func (g *Generator) observe(c *Collection) {
	g.recorder.SetDocuments(string(models.KindADR), len(c.ADRs))
	g.recorder.SetDocuments(string(models.KindIdea), len(c.Ideas))
}

// syncIndex refreshes the derived index. The index is a cache, so failures
// are logged and the pass continues.
func (g *Generator) syncIndex(c *Collection) {
	if g.index == nil {
		return
	}
	for kind, docs := range map[models.Kind][]models.Document{
		models.KindADR:  c.ADRs,
		models.KindIdea: c.Ideas,
	} {
		if err := index.Sync(g.index, kind, docs, g.logger); err != nil {
			g.logger.Warn("index sync failed",
				slog.String("kind", string(kind)),
				slog.String("error", err.Error()))
		}
	}
}
