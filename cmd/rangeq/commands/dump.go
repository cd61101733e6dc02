package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rangeq/pkg/rangeq"
	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree"
	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree/dot"
)

// DumpCommand builds the red-black tree from a command stream and exports
// it as Graphviz DOT.
type DumpCommand struct {
	output string
	input  string
	name   string
}

// NewDumpCommand creates the dump subcommand.
func NewDumpCommand() *cobra.Command {
	dc := &DumpCommand{}

	cobraCmd := &cobra.Command{
		Use:   "dump",
		Short: "Export the tree built from the input as Graphviz DOT",
		Long: `Apply every command from the input to a red-black tree and write the
final tree as a DOT digraph. Query results are discarded. Render with:

  dot -Tsvg tree.dot -o tree.svg

An output path ending in .lz4 is written as an LZ4 frame.`,
		Args: cobra.NoArgs,
		RunE: dc.run,
	}

	flags := cobraCmd.Flags()
	flags.StringVarP(&dc.output, "output", "o", "tree_dump.dot", "destination file, \"-\" for stdout")
	flags.StringVarP(&dc.input, "input", "i", "", "command file (default stdin)")
	flags.StringVar(&dc.name, "graph-name", "BinaryTree", "digraph name")

	return cobraCmd
}

func (dc *DumpCommand) run(cmd *cobra.Command, _ []string) (err error) {
	sess, err := startSession(cmd, nil)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, sess.close())
	}()

	set := rangeq.NewTreeSet(rbtree.WithCapacity(sess.cfg.Engine.Capacity))

	_, err = execute(cmd, sess, set, dc.input, io.Discard, rangeq.DefaultSeparator)
	if err != nil {
		return err
	}

	opts := dot.Options{Name: dc.name}

	if dc.output == dashPath {
		return dot.Write(cmd.OutOrStdout(), set.Tree(), opts)
	}

	err = dot.WriteFile(dc.output, set.Tree(), opts)
	if err != nil {
		return fmt.Errorf("dump tree: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d nodes to %s\n", set.Len(), dc.output)

	return nil
}
