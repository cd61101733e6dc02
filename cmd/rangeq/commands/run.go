package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rangeq/pkg/config"
	"github.com/Sumatoshi-tech/rangeq/pkg/rangeq"
	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree/dot"
)

// ErrDumpUnsupported is returned when a DOT dump is requested for an engine
// other than the red-black tree.
var ErrDumpUnsupported = errors.New("dump is only supported by the rbtree engine")

// RunCommand executes the command protocol against one engine.
type RunCommand struct {
	engine    string
	separator string
	dump      string
	input     string
	capacity  int
}

// NewRunCommand creates the run subcommand.
func NewRunCommand() *cobra.Command {
	rc := &RunCommand{}

	cobraCmd := &cobra.Command{
		Use:   "run",
		Short: "Execute k/q commands and print query results",
		Long: `Read commands from --input (stdin by default):

  k <key>        insert key
  q <lo> <hi>    print the number of keys in [lo, hi]

Results are printed on one line, separated by --separator.`,
		Args: cobra.NoArgs,
		RunE: rc.run,
	}

	flags := cobraCmd.Flags()
	flags.StringVar(&rc.engine, "engine", rangeq.DefaultEngine, "ordered set engine: rbtree, btree, llrb, gods")
	flags.StringVar(&rc.separator, "separator", rangeq.DefaultSeparator, "separator between query results")
	flags.StringVar(&rc.dump, "dump", "", "write the final tree as DOT to this path (.lz4 compresses)")
	flags.StringVarP(&rc.input, "input", "i", "", "command file (default stdin)")
	flags.IntVar(&rc.capacity, "capacity", 0, "pre-size the engine for this many keys")

	return cobraCmd
}

func (rc *RunCommand) run(cmd *cobra.Command, _ []string) (err error) {
	sess, err := startSession(cmd, func(cfg *config.Config) {
		flags := cmd.Flags()

		if flags.Changed("engine") {
			cfg.Engine.Name = rc.engine
		}

		if flags.Changed("capacity") {
			cfg.Engine.Capacity = rc.capacity
		}

		if flags.Changed("separator") {
			cfg.Output.Separator = rc.separator
		}

		if flags.Changed("dump") {
			cfg.Output.Dump = rc.dump
		}
	})
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, sess.close())
	}()

	cfg := sess.cfg

	set, err := rangeq.NewSet(cfg.Engine.Name, cfg.Engine.Capacity)
	if err != nil {
		return err
	}

	var treeSet *rangeq.TreeSet

	if cfg.Output.Dump != "" {
		var ok bool

		treeSet, ok = set.(*rangeq.TreeSet)
		if !ok {
			return fmt.Errorf("%w: %q", ErrDumpUnsupported, cfg.Engine.Name)
		}
	}

	_, err = execute(cmd, sess, set, rc.input, cmd.OutOrStdout(), cfg.Output.Separator)
	if err != nil {
		return err
	}

	if treeSet != nil {
		err = dot.WriteFile(cfg.Output.Dump, treeSet.Tree(), dot.Options{})
		if err != nil {
			return fmt.Errorf("dump tree: %w", err)
		}
	}

	return nil
}

// execute runs the driver over the input named by path.
func execute(
	cmd *cobra.Command, sess *session, set rangeq.Set, path string, out io.Writer, separator string,
) (rangeq.Stats, error) {
	in, err := openInput(cmd, path)
	if err != nil {
		return rangeq.Stats{}, err
	}

	defer in.Close()

	drv := &rangeq.Driver{
		Set:       set,
		Out:       out,
		Err:       cmd.ErrOrStderr(),
		Separator: separator,
		Logger:    sess.providers.Logger,
		Metrics:   sess.metrics,
		Tracer:    sess.providers.Tracer,
	}

	stats, err := drv.Run(cmd.Context(), in)
	if err != nil {
		return stats, fmt.Errorf("run %s: %w", cmd.Name(), err)
	}

	return stats, nil
}
