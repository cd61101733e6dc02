package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rangeq/pkg/rangeq"
	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree"
)

// StatsCommand reports the shape of the tree built from a command stream.
type StatsCommand struct {
	input string
}

// NewStatsCommand creates the stats subcommand.
func NewStatsCommand() *cobra.Command {
	sc := &StatsCommand{}

	cobraCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show tree shape, invariant status and arena usage",
		Args:  cobra.NoArgs,
		RunE:  sc.run,
	}

	cobraCmd.Flags().StringVarP(&sc.input, "input", "i", "", "command file (default stdin)")

	return cobraCmd
}

func (sc *StatsCommand) run(cmd *cobra.Command, _ []string) (err error) {
	sess, err := startSession(cmd, nil)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, sess.close())
	}()

	set := rangeq.NewTreeSet(rbtree.WithCapacity(sess.cfg.Engine.Capacity))

	stats, err := execute(cmd, sess, set, sc.input, io.Discard, rangeq.DefaultSeparator)
	if err != nil {
		return err
	}

	renderStats(cmd.OutOrStdout(), set.Tree(), stats)

	return nil
}

func renderStats(out io.Writer, tree *rbtree.Tree[int64], stats rangeq.Stats) {
	invariants := "ok"
	if err := tree.Verify(); err != nil {
		invariants = err.Error()
	}

	tbl := table.NewWriter()
	tbl.SetOutputMirror(out)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.AppendHeader(table.Row{"Metric", "Value"})
	tbl.AppendRows([]table.Row{
		{"keys", humanize.Comma(int64(tree.Len()))},
		{"height", tree.Height()},
		{"black height", tree.BlackHeight()},
		{"invariants", invariants},
		{"arena slots", humanize.Comma(int64(tree.ArenaSlots()))},
		{"arena bytes", humanize.IBytes(tree.ArenaBytes())},
	})
	tbl.AppendSeparator()
	tbl.AppendRows([]table.Row{
		{"inserts", stats.Inserts},
		{"duplicates", stats.Duplicates},
		{"queries", stats.Queries},
		{"rejected", stats.Rejected},
		{"truncated", fmt.Sprint(stats.Truncated)},
	})
	tbl.Render()
}
