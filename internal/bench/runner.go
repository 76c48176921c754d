// Package bench runs a line workload through the line assembler
// and checks that every line comes out as it went in.
package bench

import (
	"bytes"
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/FerroO2000/ringo/internal"
	"github.com/FerroO2000/ringo/internal/config"
	"github.com/FerroO2000/ringo/internal/line"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"
)

// Default configuration values for the runner.
const (
	DefaultCapacity      = line.DefaultCapacity
	DefaultLines         = 100_000
	DefaultMaxLineLength = 80
	DefaultChunkSize     = 64
	DefaultConcurrent    = false
	DefaultDropControl   = line.DefaultDropControl
	DefaultSeed          = 1

	// minCapacity leaves room for at least one byte, the carriage return and the line feed.
	minCapacity = 4
)

// Config is the configuration of a [Runner].
type Config struct {
	// Capacity is the size of the ring buffer of the assembler.
	// It must be a power of two.
	//
	// Default: 256
	Capacity uint32 `mapstructure:"capacity"`

	// Lines is the number of lines generated by a run.
	//
	// Default: 100_000
	Lines int `mapstructure:"lines"`

	// MaxLineLength is the maximum number of printable characters of a line.
	// It cannot be greater than Capacity - 2, otherwise a line
	// and its terminator would not fit the ring buffer.
	//
	// Default: 80
	MaxLineLength int `mapstructure:"max-line"`

	// ChunkSize is the maximum number of bytes passed to a single Feed call.
	//
	// Default: 64
	ChunkSize int `mapstructure:"chunk"`

	// Concurrent states whether the lines are fed and read
	// by two different goroutines.
	//
	// Default: false
	Concurrent bool `mapstructure:"concurrent"`

	// DropControl enables the control character filter of the assembler.
	// When enabled, random control characters are injected into the lines.
	//
	// Default: false
	DropControl bool `mapstructure:"drop-control"`

	// Seed is the seed of the line generator.
	//
	// Default: 1
	Seed uint64 `mapstructure:"seed"`
}

// NewConfig returns the default configuration of a [Runner].
func NewConfig() *Config {
	return &Config{
		Capacity:      DefaultCapacity,
		Lines:         DefaultLines,
		MaxLineLength: DefaultMaxLineLength,
		ChunkSize:     DefaultChunkSize,
		Concurrent:    DefaultConcurrent,
		DropControl:   DefaultDropControl,
		Seed:          DefaultSeed,
	}
}

// Validate checks the configuration.
func (c *Config) Validate(ac *config.AnomalyCollector) {
	config.CheckNotZero(ac, "Capacity", &c.Capacity, DefaultCapacity)
	config.CheckPowerOfTwo(ac, "Capacity", &c.Capacity)
	config.CheckNotLower(ac, "Capacity", &c.Capacity, minCapacity)

	config.CheckNotNegative(ac, "Lines", &c.Lines, DefaultLines)

	config.CheckNotNegative(ac, "MaxLineLength", &c.MaxLineLength, DefaultMaxLineLength)
	config.CheckNotZero(ac, "MaxLineLength", &c.MaxLineLength, DefaultMaxLineLength)
	config.CheckNotGreaterThan(ac, "MaxLineLength", "Capacity - 2", &c.MaxLineLength, int(c.Capacity)-2)

	config.CheckNotNegative(ac, "ChunkSize", &c.ChunkSize, DefaultChunkSize)
	config.CheckNotZero(ac, "ChunkSize", &c.ChunkSize, DefaultChunkSize)
}

func (c *Config) assemblerConfig() *line.Config {
	return &line.Config{
		Capacity:    c.Capacity,
		DropControl: c.DropControl,
	}
}

// Report is the outcome of a run.
type Report struct {
	GeneratedLines  int64
	ReceivedLines   int64
	MismatchedLines int64

	FedBytes       int64
	FilteredBytes  int64
	TruncatedLines int64

	Elapsed time.Duration
}

// OK reports whether every generated line has been received unchanged.
func (r *Report) OK() bool {
	return r.MismatchedLines == 0 && r.TruncatedLines == 0 && r.ReceivedLines == r.GeneratedLines
}

// Throughput returns the fed bytes per second.
func (r *Report) Throughput() float64 {
	if r.Elapsed <= 0 {
		return 0
	}

	return float64(r.FedBytes) / r.Elapsed.Seconds()
}

// Runner feeds generated lines to a line assembler and reads them back.
type Runner struct {
	tel *internal.Telemetry

	cfg *Config

	asm *line.Assembler
	// mux guards asm when the producer and the consumer run concurrently
	mux sync.Mutex

	producerDone atomic.Bool

	generatedLines  atomic.Int64
	receivedLines   atomic.Int64
	mismatchedLines atomic.Int64

	lineLength *internal.Histogram
}

// NewRunner returns a runner for the given configuration.
// The storage of the assembler is allocated once and reused by every run.
func NewRunner(cfg *Config) (*Runner, error) {
	asm, err := line.NewAssembler(make([]byte, cfg.Capacity), cfg.assemblerConfig())
	if err != nil {
		return nil, err
	}

	return &Runner{
		tel: internal.NewTelemetry("bench", "runner"),

		cfg: cfg,

		asm: asm,

		lineLength: &internal.Histogram{},
	}, nil
}

// Init registers the metrics of the runner.
func (r *Runner) Init() {
	r.tel.LogInfo("initializing")

	r.tel.NewCounter("generated_lines", r.generatedLines.Load)
	r.tel.NewCounter("received_lines", r.receivedLines.Load)
	r.tel.NewCounter("mismatched_lines", r.mismatchedLines.Load)

	r.tel.NewCounter("fed_bytes", func() int64 { return r.asm.Stats().FedBytes })
	r.tel.NewCounter("filtered_bytes", func() int64 { return r.asm.Stats().FilteredBytes })
	r.tel.NewCounter("truncated_lines", func() int64 { return r.asm.Stats().TruncatedLines })

	r.lineLength = r.tel.NewHistogram("line_length", metric.WithUnit("By"))
}

// Run generates the configured number of lines, feeds them to the assembler
// and compares the received lines with the generated ones.
// When ctx is cancelled, the partial report is returned along with the context error.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx, span := r.tel.NewTrace(ctx, "run")
	defer span.End()

	span.SetAttributes(
		attribute.Int("lines", r.cfg.Lines),
		attribute.Bool("concurrent", r.cfg.Concurrent),
	)

	r.tel.LogInfo("running", "lines", r.cfg.Lines, "capacity", r.cfg.Capacity, "concurrent", r.cfg.Concurrent)

	r.reset()
	startStats := r.asm.Stats()
	start := time.Now()

	var err error
	if r.cfg.Concurrent {
		err = r.runConcurrent(ctx)
	} else {
		err = r.runInterleaved(ctx)
	}

	stats := r.asm.Stats()
	report := &Report{
		GeneratedLines:  r.generatedLines.Load(),
		ReceivedLines:   r.receivedLines.Load(),
		MismatchedLines: r.mismatchedLines.Load(),

		FedBytes:       stats.FedBytes - startStats.FedBytes,
		FilteredBytes:  stats.FilteredBytes - startStats.FilteredBytes,
		TruncatedLines: stats.TruncatedLines - startStats.TruncatedLines,

		Elapsed: time.Since(start),
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.tel.LogError("run interrupted", err, "received_lines", report.ReceivedLines)
		return report, err
	}

	if !report.OK() {
		span.SetStatus(codes.Error, "corrupted lines")
	}

	r.tel.LogInfo("completed", "elapsed", report.Elapsed, "received_lines", report.ReceivedLines)

	return report, nil
}

func (r *Runner) reset() {
	r.producerDone.Store(false)

	r.generatedLines.Store(0)
	r.receivedLines.Store(0)
	r.mismatchedLines.Store(0)

	// Left over bytes of an interrupted run
	r.asm.Drain(make([]byte, r.asm.Len()+1))
}

func (r *Runner) newGenerator() *generator {
	return newGenerator(r.cfg.Seed, r.cfg.MaxLineLength, r.cfg.DropControl)
}

// destSize fits the printable characters, the carriage return and the NUL terminator.
func (r *Runner) destSize() int {
	return r.cfg.MaxLineLength + 2
}

func (r *Runner) check(ctx context.Context, expected *generator, received []byte) {
	content, _ := expected.next()

	idx := r.receivedLines.Add(1)
	r.lineLength.Record(ctx, float64(len(received)))

	if !bytes.Equal(content, received) {
		if r.mismatchedLines.Add(1) == 1 {
			r.tel.LogWarn("first mismatched line", "line", idx, "expected", string(content), "received", string(received))
		}
	}
}

func (r *Runner) runInterleaved(ctx context.Context) error {
	producer := r.newGenerator()
	consumer := r.newGenerator()
	dest := make([]byte, r.destSize())

	for range r.cfg.Lines {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, wire := producer.next()
		r.generatedLines.Add(1)

		for len(wire) > 0 {
			chunk := wire[:min(len(wire), r.cfg.ChunkSize)]
			wire = wire[r.asm.Feed(chunk):]

			for {
				n, ok := r.asm.Next(dest)
				if !ok {
					break
				}
				r.check(ctx, consumer, dest[:n])
			}
		}
	}

	return nil
}

func (r *Runner) runConcurrent(ctx context.Context) error {
	wg, ctx := errgroup.WithContext(ctx)

	wg.Go(func() error {
		defer r.producerDone.Store(true)
		return r.produce(ctx)
	})

	wg.Go(func() error {
		return r.consume(ctx)
	})

	return wg.Wait()
}

func (r *Runner) produce(ctx context.Context) error {
	producer := r.newGenerator()

	for range r.cfg.Lines {
		_, wire := producer.next()
		r.generatedLines.Add(1)

		for len(wire) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}

			chunk := wire[:min(len(wire), r.cfg.ChunkSize)]

			r.mux.Lock()
			n := r.asm.Feed(chunk)
			r.mux.Unlock()

			if n == 0 {
				// The buffer is full, wait for the consumer
				runtime.Gosched()
				continue
			}

			wire = wire[n:]
		}
	}

	return nil
}

func (r *Runner) consume(ctx context.Context) error {
	consumer := r.newGenerator()
	dest := make([]byte, r.destSize())

	for r.receivedLines.Load() < int64(r.cfg.Lines) {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Loaded before locking, so no byte can be fed after the check
		done := r.producerDone.Load()

		r.mux.Lock()
		n, ok := r.asm.Next(dest)
		empty := r.asm.Len() == 0
		r.mux.Unlock()

		if ok {
			r.check(ctx, consumer, dest[:n])
			continue
		}

		if empty && done {
			return nil
		}

		runtime.Gosched()
	}

	return nil
}
