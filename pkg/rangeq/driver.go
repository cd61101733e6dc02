package rangeq

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/rangeq/pkg/observability"
)

// Command tokens.
const (
	CmdInsert = "k"
	CmdQuery  = "q"
)

// DefaultSeparator separates query results on the output stream.
const DefaultSeparator = " "

// maxTokenSize bounds a single whitespace-separated token.
const maxTokenSize = 1 << 20

// Usage is printed to the error stream for every unknown command token.
const Usage = "usage:\n\tk <key>\n\tq <lo> <hi>\n"

// Reasons attached to rejected tokens in metrics.
const (
	reasonUnknownCommand  = "unknown_command"
	reasonInvalidArgument = "invalid_argument"
)

// ErrInterrupted wraps the context error when a run is cancelled.
var ErrInterrupted = errors.New("driver interrupted")

// Stats summarises one driver run.
type Stats struct {
	Inserts    int
	Duplicates int
	Queries    int
	Rejected   int
	// Truncated is set when the input ended in the middle of a command.
	Truncated bool
}

// Driver executes the command protocol against a Set.
type Driver struct {
	Set Set
	// Out receives query results.
	Out io.Writer
	// Err receives usage and argument diagnostics. Nil discards them.
	Err io.Writer
	// Separator goes between query results. Empty means DefaultSeparator.
	Separator string

	Logger  *slog.Logger
	Metrics *observability.DriverMetrics
	// Tracer defaults to the global "rangeq" tracer.
	Tracer trace.Tracer
}

// Run reads commands from in until EOF. Unknown commands and malformed
// integers are reported on Err and skipped. The results are written to Out
// joined by the separator and followed by one newline when at least one
// query ran.
func (drv *Driver) Run(ctx context.Context, in io.Reader) (stats Stats, err error) {
	ctx, span := drv.tracer().Start(ctx, "rangeq.run")
	defer func() {
		span.SetAttributes(
			attribute.Int("rangeq.inserts", stats.Inserts),
			attribute.Int("rangeq.duplicates", stats.Duplicates),
			attribute.Int("rangeq.queries", stats.Queries),
			attribute.Int("rangeq.rejected", stats.Rejected),
			attribute.Bool("rangeq.truncated", stats.Truncated),
		)

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		span.End()
	}()

	state := &run{
		Driver:  drv,
		scanner: bufio.NewScanner(in),
		out:     bufio.NewWriter(drv.Out),
		log:     drv.logger(),
		sep:     drv.Separator,
	}

	if state.sep == "" {
		state.sep = DefaultSeparator
	}

	state.scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxTokenSize)
	state.scanner.Split(bufio.ScanWords)

	loopErr := state.loop(ctx)

	if state.stats.Queries > 0 {
		state.out.WriteString("\n")
	}

	flushErr := state.out.Flush()
	if flushErr != nil {
		flushErr = fmt.Errorf("write results: %w", flushErr)
	}

	state.log.InfoContext(ctx, "run complete",
		"inserts", state.stats.Inserts,
		"duplicates", state.stats.Duplicates,
		"queries", state.stats.Queries,
		"rejected", state.stats.Rejected,
		"truncated", state.stats.Truncated,
		"keys", drv.Set.Len(),
	)

	return state.stats, errors.Join(loopErr, flushErr)
}

func (drv *Driver) tracer() trace.Tracer {
	if drv.Tracer != nil {
		return drv.Tracer
	}

	return otel.Tracer("rangeq")
}

func (drv *Driver) logger() *slog.Logger {
	if drv.Logger != nil {
		return drv.Logger
	}

	return slog.New(slog.DiscardHandler)
}

// run is the state of a single Driver.Run call.
type run struct {
	*Driver

	scanner *bufio.Scanner
	out     *bufio.Writer
	log     *slog.Logger
	sep     string
	stats   Stats
}

func (r *run) loop(ctx context.Context) error {
	for r.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrInterrupted, err)
		}

		switch token := r.scanner.Text(); token {
		case CmdInsert:
			args, ok := r.args(ctx, token, 1)
			if ok {
				r.insert(ctx, args[0])
			}
		case CmdQuery:
			args, ok := r.args(ctx, token, 2)
			if ok {
				r.query(ctx, args[0], args[1])
			}
		default:
			r.reject(ctx, reasonUnknownCommand, "invalid command %q\n%s", token, Usage)
		}

		if r.stats.Truncated {
			break
		}
	}

	err := r.scanner.Err()
	if err != nil {
		return fmt.Errorf("read commands: %w", err)
	}

	return nil
}

// args consumes count integer arguments. Every argument token is consumed
// even when an earlier one is malformed, so the next command starts cleanly.
func (r *run) args(ctx context.Context, cmd string, count int) ([]int64, bool) {
	values := make([]int64, count)
	valid := true

	for idx := range count {
		if !r.scanner.Scan() {
			r.stats.Truncated = true
			r.log.WarnContext(ctx, "input ended inside a command", "command", cmd, "missing", count-idx)

			return nil, false
		}

		token := r.scanner.Text()

		value, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			r.reject(ctx, reasonInvalidArgument, "invalid argument %q for %s\n", token, cmd)

			valid = false

			continue
		}

		values[idx] = value
	}

	return values, valid
}

func (r *run) insert(ctx context.Context, key int64) {
	inserted := r.Set.Insert(key)
	if inserted {
		r.stats.Inserts++
	} else {
		r.stats.Duplicates++
	}

	r.Metrics.RecordInsert(ctx, !inserted)
}

func (r *run) query(ctx context.Context, lo, hi int64) {
	count := 0
	if lo <= hi {
		count = r.Set.CountRange(lo, hi)
	}

	if r.stats.Queries > 0 {
		r.out.WriteString(r.sep)
	}

	r.out.WriteString(strconv.Itoa(count))
	r.stats.Queries++

	r.log.DebugContext(ctx, "query", "lo", lo, "hi", hi, "count", count)
	r.Metrics.RecordQuery(ctx, count)
}

func (r *run) reject(ctx context.Context, reason, format string, args ...any) {
	r.stats.Rejected++

	if r.Err != nil {
		fmt.Fprintf(r.Err, format, args...)
	}

	r.Metrics.RecordRejected(ctx, reason)
}
