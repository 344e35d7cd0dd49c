// Package batch summarizes every document of a dataset directory.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/sanonone/trustsum/internal/output"
	"github.com/sanonone/trustsum/pkg/dataset"
	"github.com/sanonone/trustsum/pkg/engine"
)

// Document statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Failure kinds reported by the runner itself, next to engine.ErrorKind values.
const (
	KindInvalidName   = "invalid_name"
	KindNameCollision = "name_collision"
	KindOutput        = "output"
)

// Options configures a Runner.
type Options struct {
	DatasetDir     string
	ValidationFile string
	TargetKey      []string
	// StopOnError aborts the run at the first failing document.
	StopOnError bool
	Workers     int
}

// Selection narrows the dataset. Files, when set, wins over Exclude.
type Selection struct {
	Files   []string `json:"files,omitempty"`
	Exclude []string `json:"exclude,omitempty"`
}

// Runner processes documents with a shared Engine.
type Runner struct {
	eng    *engine.Engine
	writer *output.Writer
	loader dataset.Loader
	opts   Options

	// OnDocument, when set, is called after each document completes.
	OnDocument func(DocumentReport)
}

// NewRunner returns a Runner. A nil writer skips artifact output.
func NewRunner(eng *engine.Engine, writer *output.Writer, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Runner{
		eng:    eng,
		writer: writer,
		loader: dataset.NewAutoLoader(opts.TargetKey),
		opts:   opts,
	}
}

// WithProgress returns a copy of r that calls fn after each document.
func (r *Runner) WithProgress(fn func(DocumentReport)) *Runner {
	cp := *r
	cp.OnDocument = fn
	return &cp
}

// Files resolves sel against the dataset directory. Explicit names must be
// existing files directly inside it.
func (r *Runner) Files(sel Selection) ([]string, error) {
	return dataset.ListFiles(r.opts.DatasetDir, sel.Files, sel.Exclude)
}

// Run summarizes the selected documents. See RunFiles.
func (r *Runner) Run(ctx context.Context, sel Selection) (*Report, error) {
	files, err := r.Files(sel)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset: %w", err)
	}
	return r.RunFiles(ctx, files)
}

// RunFiles summarizes files, named relative to the dataset directory. With
// StopOnError the first failure cancels the remaining documents and is
// returned alongside the partial report.
func (r *Runner) RunFiles(ctx context.Context, files []string) (*Report, error) {
	report := &Report{
		RunID:     uuid.New().String(),
		StartedAt: time.Now(),
		Documents: make([]DocumentReport, len(files)),
	}
	for i, name := range files {
		report.Documents[i] = DocumentReport{Name: name, Status: StatusSkipped}
	}
	rejected := r.reject(report.Documents)

	refs := r.references()
	slog.Info("[BATCH] Run started",
		"run_id", report.RunID,
		"documents", len(files),
		"workers", r.opts.Workers)

	var stopErr error
	for i, doc := range report.Documents {
		if !rejected[i] {
			continue
		}
		slog.Error("[BATCH] Document rejected", "run_id", report.RunID, "doc", doc.Name, "error", doc.Error)
		if r.OnDocument != nil {
			r.OnDocument(doc)
		}
		if r.opts.StopOnError && stopErr == nil {
			stopErr = fmt.Errorf("%s: %s", doc.Name, doc.Error)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	var mu sync.Mutex
	for i, name := range files {
		if stopErr != nil || gctx.Err() != nil {
			break
		}
		if rejected[i] {
			continue
		}
		g.Go(func() error {
			doc := r.process(gctx, name, refs[name])

			mu.Lock()
			report.Documents[i] = doc
			mu.Unlock()
			if r.OnDocument != nil {
				r.OnDocument(doc)
			}

			if doc.Status == StatusFailed {
				slog.Error("[BATCH] Document failed", "run_id", report.RunID, "doc", name, "error", doc.Error)
				if r.opts.StopOnError {
					return fmt.Errorf("%s: %s", name, doc.Error)
				}
			}
			return nil
		})
	}
	err := g.Wait()
	if stopErr != nil {
		err = stopErr
	}

	report.Duration = time.Since(report.StartedAt)
	for _, d := range report.Documents {
		if d.Status == StatusFailed {
			report.Failed++
		}
	}
	if err == nil {
		err = ctx.Err()
	}
	slog.Info("[BATCH] Run finished",
		"run_id", report.RunID,
		"failed", report.Failed,
		"duration", report.Duration)
	return report, err
}

// reject fails documents whose name leaves the dataset directory or whose
// artifacts would overwrite those of an earlier document ("a.json" and
// "a.txt" share the stem "a").
func (r *Runner) reject(docs []DocumentReport) []bool {
	rejected := make([]bool, len(docs))
	stems := make(map[string]string, len(docs))
	for i := range docs {
		d := &docs[i]
		if err := dataset.CheckName(d.Name); err != nil {
			d.Status, d.Error, d.Kind = StatusFailed, err.Error(), KindInvalidName
			rejected[i] = true
			continue
		}
		stem := output.Stem(d.Name)
		if first, ok := stems[stem]; ok && r.writer != nil {
			d.Status, d.Kind = StatusFailed, KindNameCollision
			d.Error = fmt.Sprintf("artifacts of %s would overwrite those of %s", d.Name, first)
			rejected[i] = true
			continue
		}
		stems[stem] = d.Name
	}
	return rejected
}

func (r *Runner) process(ctx context.Context, name, reference string) DocumentReport {
	start := time.Now()
	rep := DocumentReport{Name: name, Status: StatusOK}

	res, err := r.summarize(ctx, name, reference)
	rep.Runtime = time.Since(start)
	if err != nil {
		rep.Status = StatusFailed
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			rep.Status = StatusSkipped
		}
		rep.Error = err.Error()
		rep.Kind = engine.ErrorKind(err)
		return rep
	}

	rep.Candidates = len(res.Candidates)
	rep.Converged = res.Diagnostics.InversePageRank.Converged && res.Diagnostics.TrustRank.Converged
	if best, ok := res.Best(); ok {
		rep.Best = &best
	}
	if r.writer != nil {
		paths, err := r.writer.Write(res)
		rep.Outputs = paths
		if err != nil {
			rep.Status = StatusFailed
			rep.Error = err.Error()
			rep.Kind = KindOutput
		}
	}
	return rep
}

func (r *Runner) summarize(ctx context.Context, name, reference string) (*engine.Result, error) {
	doc, err := r.loader.Load(filepath.Join(r.opts.DatasetDir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", name, err)
	}
	doc.Name = name
	doc.Reference = reference
	return r.eng.Summarize(ctx, doc)
}

// references loads the validation file. A missing or unreadable file only
// disables validation.
func (r *Runner) references() map[string]string {
	if r.opts.ValidationFile == "" {
		return map[string]string{}
	}
	refs, err := dataset.LoadReferences(r.opts.ValidationFile)
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, os.ErrNotExist) {
			level = slog.LevelInfo
		}
		slog.Log(context.Background(), level, "[BATCH] Validation disabled",
			"file", r.opts.ValidationFile, "error", err)
		return map[string]string{}
	}
	return refs
}
