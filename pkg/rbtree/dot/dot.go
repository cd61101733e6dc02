// Package dot renders an rbtree.Tree as a Graphviz digraph.
package dot

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"

	"github.com/Sumatoshi-tech/rangeq/pkg/rbtree"
)

// Palette.
const (
	colorBackground = "#48565D"
	colorDefault    = "#F08080"
	colorRoot       = "#0B0042"
	colorBlack      = "#1B1B1C"
	colorRed        = "#820007"
)

// CompressedExt marks destinations written as an LZ4 frame.
const CompressedExt = ".lz4"

// Options tunes the rendered graph.
type Options struct {
	// Name of the digraph. Defaults to "BinaryTree".
	Name string
	// FormatKey renders a key label. Defaults to fmt's %v.
	FormatKey func(key any) string
}

// Write serialises tree as a DOT digraph to w: a ROOT record, one Mrecord per
// node labelled with its arena id, key and child ids, and one edge per child
// link.
func Write[K any](w io.Writer, tree *rbtree.Tree[K], opts Options) error {
	name := opts.Name
	if name == "" {
		name = "BinaryTree"
	}

	format := opts.FormatKey
	if format == nil {
		format = func(key any) string { return fmt.Sprint(key) }
	}

	buf := bufio.NewWriter(w)

	fmt.Fprintf(buf, "digraph %s {\n", quoteID(name))
	fmt.Fprintf(buf, "bgcolor = %q;\n", colorBackground)
	buf.WriteString("edge[minlen = 3, penwidth = 3; color = \"black\"];\n")
	buf.WriteString("node[shape = \"rectangle\", style = \"rounded, filled\",\n")
	fmt.Fprintf(buf, "\tfillcolor = %q,\n", colorDefault)
	buf.WriteString("\tfontsize = 30,\n\theight = 3,\n")
	buf.WriteString("\tpenwidth = 5, color = \"white\", fontcolor = \"white\"];\n")

	buf.WriteString("{rank = min;\n")
	fmt.Fprintf(buf, "\troot [shape = Mrecord, fillcolor = %q, label = \"{ROOT: %s}\"];\n",
		colorRoot, nodeRef(tree.RootID()))
	buf.WriteString("}\n")

	var edges strings.Builder

	tree.Nodes(func(info rbtree.NodeInfo[K]) bool {
		fill := colorBlack
		if info.Red {
			fill = colorRed
		}

		fmt.Fprintf(buf, "\tn%d [shape = Mrecord, fillcolor = %q, label = \"{#%d | val: %s | {L: %s R: %s}}\"];\n",
			info.ID, fill, info.ID, escape(format(info.Key)), nodeRef(info.Left), nodeRef(info.Right))

		if info.Left != 0 {
			fmt.Fprintf(&edges, "n%d -> n%d\n", info.ID, info.Left)
		}

		if info.Right != 0 {
			fmt.Fprintf(&edges, "n%d -> n%d\n", info.ID, info.Right)
		}

		return true
	})

	if tree.RootID() != 0 {
		fmt.Fprintf(buf, "root -> n%d\n", tree.RootID())
	}

	buf.WriteString(edges.String())
	buf.WriteString("}\n")

	err := buf.Flush()
	if err != nil {
		return fmt.Errorf("write dot: %w", err)
	}

	return nil
}

func nodeRef(id uint32) string {
	if id == 0 {
		return "nil"
	}

	return fmt.Sprintf("#%d", id)
}

// escape protects characters that are special inside record labels.
func escape(label string) string {
	var sb strings.Builder

	for _, r := range label {
		switch r {
		case '"', '{', '}', '|', '<', '>', '\\':
			sb.WriteByte('\\')
		}

		sb.WriteRune(r)
	}

	return sb.String()
}

// quoteID renders name as a double-quoted DOT identifier.
func quoteID(name string) string {
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(name) + `"`
}

// Create opens path for writing. Paths ending in CompressedExt are wrapped
// in an LZ4 frame writer; closing the result flushes the frame and closes
// the file.
func Create(path string) (io.WriteCloser, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create dump: %w", err)
	}

	if !strings.HasSuffix(path, CompressedExt) {
		return file, nil
	}

	return &frameWriter{Writer: lz4.NewWriter(file), file: file}, nil
}

type frameWriter struct {
	*lz4.Writer

	file *os.File
}

func (fw *frameWriter) Close() error {
	return errors.Join(fw.Writer.Close(), fw.file.Close())
}

// WriteFile renders tree into path, compressing it when the path asks for it.
func WriteFile[K any](path string, tree *rbtree.Tree[K], opts Options) (err error) {
	dst, err := Create(path)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, dst.Close())
	}()

	return Write(dst, tree, opts)
}
