package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/gesturewin/internal/config"
	"github.com/ivlev/gesturewin/internal/ledger"
	"github.com/ivlev/gesturewin/internal/renderer"
	"github.com/ivlev/gesturewin/internal/source"
	"github.com/ivlev/gesturewin/internal/system"
	"github.com/ivlev/gesturewin/internal/window"
)

const progressTemplate = `{{ string . "prefix" }} {{counters . "%s/%s" "%s/?"}} {{bar . }} {{percent . "%.01f%%" "?"}} {{etime . "%s elapsed"}} {{rtime . "%s remain" "%s total" "???"}}`

// TaskError is the failure of one window's render task.
type TaskError struct {
	Index int
	Err   error
}

func (e TaskError) Error() string {
	return fmt.Sprintf("window %d: %v", e.Index, e.Err)
}

func (e TaskError) Unwrap() error {
	return e.Err
}

// Report summarizes a batch render.
type Report struct {
	RunID    string
	Dir      string
	Total    int
	Rendered int
	Skipped  int
	Failed   []TaskError
	Elapsed  time.Duration
}

// RenderProject renders every window of Source under Config.BasePath.
type RenderProject struct {
	Config config.Render
	Source source.Source

	// Ledger, when set, arbitrates windows between concurrent runs.
	Ledger       ledger.Ledger
	LedgerPrefix string
	RunID        string
}

func NewRenderProject(cfg config.Render, src source.Source) *RenderProject {
	return &RenderProject{
		Config: cfg,
		Source: src,
		RunID:  uuid.NewString(),
	}
}

type outcome int

const (
	rendered outcome = iota
	skipped
)

// Run schedules one task per window on a bounded pool. A failing task never
// stops the others; failures are returned in the report and joined into err.
func (p *RenderProject) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	r, err := renderer.New(p.Config.BasePath, p.Config.Style)
	if err != nil {
		return nil, err
	}
	if p.Config.Workers < 0 {
		return nil, fmt.Errorf("%w: workers=%d", config.ErrInvalidConfig, p.Config.Workers)
	}
	workers := p.Config.Workers
	if workers == 0 {
		workers = system.DefaultWorkers()
	}
	if p.RunID == "" {
		p.RunID = uuid.NewString()
	}

	total := p.Source.Len()
	report := &Report{RunID: p.RunID, Dir: r.Dir, Total: total}

	fmt.Printf("[*] Запуск %s: окон %d -> %s | потоков: %d\n", p.RunID, total, r.Dir, workers)

	var bar *pb.ProgressBar
	if p.Config.ShowProgress {
		bar = pb.ProgressBarTemplate(progressTemplate).Start(total)
		bar.Set("prefix", "Рендер")
	}

	var (
		nRendered, nSkipped, nDone atomic.Int64
		mu                         sync.Mutex
	)

	var g errgroup.Group
	g.SetLimit(workers)

	for i := 0; i < total; i++ {
		if ctx.Err() != nil {
			mu.Lock()
			report.Failed = append(report.Failed, TaskError{Index: i, Err: ctx.Err()})
			mu.Unlock()
			continue
		}

		i := i
		g.Go(func() error {
			res, err := p.renderTask(ctx, r, i)
			switch {
			case err != nil:
				mu.Lock()
				report.Failed = append(report.Failed, TaskError{Index: i, Err: err})
				mu.Unlock()
			case res == skipped:
				nSkipped.Add(1)
			default:
				nRendered.Add(1)
			}

			done := nDone.Add(1)
			if bar != nil {
				bar.Increment()
			} else if done%100 == 0 || done == int64(total) {
				fmt.Printf("[>] Готово: %d/%d\n", done, total)
			}
			return nil
		})
	}
	g.Wait()

	if bar != nil {
		bar.Finish()
	}

	sort.Slice(report.Failed, func(a, b int) bool {
		return report.Failed[a].Index < report.Failed[b].Index
	})
	report.Rendered = int(nRendered.Load())
	report.Skipped = int(nSkipped.Load())
	report.Elapsed = time.Since(start)

	fmt.Printf("[+] Отрисовано: %d | Пропущено: %d | Ошибок: %d | %.2fs\n",
		report.Rendered, report.Skipped, len(report.Failed), report.Elapsed.Seconds())

	if len(report.Failed) == 0 {
		return report, nil
	}
	errs := make([]error, len(report.Failed))
	for k, te := range report.Failed {
		errs[k] = te
	}
	return report, errors.Join(errs...)
}

// renderTask normalizes and draws window i. Panics are converted to errors.
func (p *RenderProject) renderTask(ctx context.Context, r *renderer.Renderer, i int) (res outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()

	frames, label, err := p.Source.Window(i)
	if err != nil {
		return 0, err
	}
	if !p.Config.Style.Override && r.Exists(i, label) {
		return skipped, nil
	}

	if p.Ledger != nil {
		key := ledger.Key(p.LedgerPrefix, renderer.Signature(p.Config.Style), renderer.FileName(i, label))
		ok, err := p.Ledger.Claim(ctx, key)
		if err != nil {
			return 0, err
		}
		if !ok {
			return skipped, nil
		}
		// The claim guards only the render in progress; once the file is
		// written the skip-if-exists check takes over.
		defer func() {
			rerr := p.Ledger.Release(ctx, key)
			switch {
			case rerr == nil:
			case err != nil:
				err = errors.Join(err, rerr)
			default:
				log.Printf("[!] Окно %d: не удалось снять захват: %v", i, rerr)
			}
		}()
	}

	_, wasSkipped, err := r.Render(window.Normalize(frames), i, label)
	if err != nil {
		return 0, err
	}
	if wasSkipped {
		return skipped, nil
	}
	return rendered, nil
}
