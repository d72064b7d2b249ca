package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"docprint/internal/codec"
	"docprint/internal/doc"
	"docprint/internal/logging"
	"docprint/internal/observ"
	"docprint/internal/printer"
	"docprint/internal/trace"
)

// Mode selects what happens to printed output.
type Mode uint8

const (
	// ModeWrite writes <name>.txt next to each input when it changed.
	ModeWrite Mode = iota
	// ModeCheck only reports whether <name>.txt is out of date.
	ModeCheck
	// ModeStdout returns the output in the results without touching disk.
	ModeStdout
)

func (m Mode) String() string {
	switch m {
	case ModeWrite:
		return "write"
	case ModeCheck:
		return "check"
	case ModeStdout:
		return "stdout"
	default:
		return "Mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ErrNoFiles is returned when the given paths hold no doc files.
var ErrNoFiles = errors.New("no doc files found")

// PrintOptions configures a batch run.
type PrintOptions struct {
	Print  printer.Options
	Decode codec.DecodeOptions
	// InputFormat forces the decoder; empty picks it per file extension.
	InputFormat codec.Format
	Mode        Mode
	// Jobs limits concurrent files; zero or less uses GOMAXPROCS.
	Jobs     int
	Progress ProgressSink
	// RunID identifies the run in logs; a random one is used when zero.
	RunID uuid.UUID
	// Timer receives per-stage timings; a private one is used when nil.
	Timer *observ.Timer
	// Cache skips decoding and printing for inputs laid out before with the
	// same settings. Nil disables it.
	Cache *Cache
}

// PrintResult captures the outcome for one file.
type PrintResult struct {
	Path       string
	OutputPath string
	// Changed is true when the output file is missing or differs from the
	// printed text (and, in write mode, was rewritten).
	Changed    bool
	Formatted  []byte
	CursorNode *printer.CursorNode
	// Cached is true when the output came from the layout cache.
	Cached  bool
	Err     error
	Elapsed time.Duration
}

// Report is the outcome of a run.
type Report struct {
	RunID   uuid.UUID
	Results []PrintResult
	Timing  observ.Report
}

// Failed counts results that carry an error.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// PrintPaths prints every doc file under paths. Per-file failures are
// recorded in the results; the error is only set when the run itself could
// not proceed.
func PrintPaths(ctx context.Context, paths []string, opts PrintOptions) ([]PrintResult, error) {
	report, err := Run(ctx, paths, opts)
	if report == nil {
		return nil, err
	}
	return report.Results, err
}

// Run is PrintPaths returning the full report.
func Run(ctx context.Context, paths []string, opts PrintOptions) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	runID := opts.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	logger := logging.FromContext(ctx).With(zap.String("run_id", runID.String()))

	ctx, span := trace.Start(ctx, trace.ScopeDriver, "print-paths")

	var files []string
	err := timer.Measure("collect", func() error {
		var err error
		files, err = CollectFiles(ctx, paths, opts.InputFormat != "")
		return err
	})
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	if len(files) == 0 {
		span.End(ErrNoFiles.Error())
		return nil, ErrNoFiles
	}

	for _, path := range files {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	logger.Debug("print run started",
		zap.Int("files", len(files)),
		zap.Int("jobs", jobs),
		zap.Stringer("mode", opts.Mode),
	)

	// Each worker writes only its own index.
	results := make([]PrintResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = PrintResult{Path: path, OutputPath: OutputPath(path), Err: err}
				return err
			}
			w := worker{opts: opts, timer: timer, logger: logger}
			results[i] = w.printFile(gctx, path)
			return nil
		})
	}
	err = g.Wait()

	report := &Report{RunID: runID, Results: results, Timing: timer.Report()}
	span.WithExtra("files", strconv.Itoa(len(files))).
		WithExtra("failed", strconv.Itoa(report.Failed())).
		End(errDetail(err))

	logger.Info("print run finished",
		zap.Int("files", len(files)),
		zap.Int("failed", report.Failed()),
		zap.Float64("total_ms", report.Timing.TotalMS),
	)
	return report, err
}

type worker struct {
	opts   PrintOptions
	timer  *observ.Timer
	logger *zap.Logger
}

func (w worker) printFile(ctx context.Context, path string) PrintResult {
	start := time.Now()
	result := PrintResult{Path: path, OutputPath: OutputPath(path)}

	ctx, span := trace.Start(ctx, trace.ScopeFile, "file:"+path)

	stage, err := w.process(ctx, path, &result)
	result.Elapsed = time.Since(start)
	result.Err = err

	if err != nil {
		emit(w.opts.Progress, Event{File: path, Stage: stage, Status: StatusError, Err: err, Elapsed: result.Elapsed})
		w.logger.Warn("print failed",
			zap.String("path", path),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		span.End(err.Error())
		return result
	}

	emit(w.opts.Progress, Event{File: path, Stage: stage, Status: StatusDone, Elapsed: result.Elapsed})
	w.logger.Debug("printed",
		zap.String("path", path),
		zap.Bool("changed", result.Changed),
		zap.Int("bytes", len(result.Formatted)),
		zap.Duration("elapsed", result.Elapsed),
	)
	span.WithExtra("changed", strconv.FormatBool(result.Changed)).End("")
	return result
}

// process runs the stages for one file and returns the last stage reached.
func (w worker) process(ctx context.Context, path string, result *PrintResult) (Stage, error) {
	w.started(path, StageRead)
	data, err := os.ReadFile(path)
	if err != nil {
		return StageRead, err
	}

	format := w.opts.InputFormat
	if format == "" {
		if format, err = codec.FormatFromPath(path); err != nil {
			return StageDecode, err
		}
	}

	var key Digest
	if w.opts.Cache != nil {
		key = cacheKey(data, format, w.opts)
		cached, ok, err := w.opts.Cache.get(key)
		if err != nil {
			w.logger.Warn("layout cache read failed", zap.String("path", path), zap.Error(err))
		}
		if ok {
			result.Cached = true
			trace.Mark(ctx, trace.ScopeFile, "cache-hit", key.String())
			return w.finish(path, cached, result)
		}
	}

	printed, stage, err := w.layout(ctx, path, data, format)
	if err != nil {
		return stage, err
	}
	if w.opts.Cache != nil {
		if err := w.opts.Cache.put(key, printed); err != nil {
			w.logger.Warn("layout cache write failed", zap.String("path", path), zap.Error(err))
		}
	}
	return w.finish(path, printed, result)
}

// layout decodes and prints one input.
func (w worker) layout(ctx context.Context, path string, data []byte, format codec.Format) (printer.Result, Stage, error) {
	w.started(path, StageDecode)
	d, err := measure(w.timer, "decode "+path, func() (doc.Doc, error) {
		return codec.DecodeContext(ctx, data, format, w.opts.Decode)
	})
	if err != nil {
		return printer.Result{}, StageDecode, err
	}

	w.started(path, StagePrint)
	printed, err := measure(w.timer, "print "+path, func() (printer.Result, error) {
		return printer.PrintContext(ctx, d, w.opts.Print)
	})
	if err != nil {
		return printer.Result{}, StagePrint, err
	}
	return printed, StagePrint, nil
}

// finish compares printed output with the existing output file and writes it
// in write mode.
func (w worker) finish(path string, printed printer.Result, result *PrintResult) (Stage, error) {
	formatted := []byte(printed.Formatted)
	result.Formatted = formatted
	result.CursorNode = printed.CursorNode

	existing, exists, err := readExisting(result.OutputPath)
	if err != nil {
		return StageWrite, err
	}
	result.Changed = !exists || !bytes.Equal(existing, formatted)

	if w.opts.Mode != ModeWrite || !result.Changed {
		return StagePrint, nil
	}

	w.started(path, StageWrite)
	if err := w.timer.Measure("write "+result.OutputPath, func() error {
		return writeAtomic(result.OutputPath, formatted)
	}); err != nil {
		return StageWrite, fmt.Errorf("write %s: %w", result.OutputPath, err)
	}
	return StageWrite, nil
}

func (w worker) started(path string, stage Stage) {
	emit(w.opts.Progress, Event{File: path, Stage: stage, Status: StatusWorking})
}

func measure[T any](timer *observ.Timer, name string, fn func() (T, error)) (T, error) {
	var out T
	err := timer.Measure(name, func() error {
		var err error
		out, err = fn()
		return err
	})
	return out, err
}

func errDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
