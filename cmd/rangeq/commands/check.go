package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/rangeq/pkg/rangeq"
)

// ErrMismatch is returned when an engine disagrees with the reference.
var ErrMismatch = errors.New("engines disagree")

// checkSeparator puts every result on its own line so diffs are per query.
const checkSeparator = "\n"

// CheckCommand runs one input through several engines and compares them.
type CheckCommand struct {
	engines   []string
	reference string
	input     string
	noColor   bool
}

// NewCheckCommand creates the check subcommand.
func NewCheckCommand() *cobra.Command {
	cc := &CheckCommand{}

	cobraCmd := &cobra.Command{
		Use:   "check",
		Short: "Run the same commands through several engines and compare results",
		Args:  cobra.NoArgs,
		RunE:  cc.run,
	}

	flags := cobraCmd.Flags()
	flags.StringSliceVar(&cc.engines, "engines", rangeq.Engines(), "engines to check")
	flags.StringVar(&cc.reference, "reference", rangeq.EngineBTree, "engine whose output is taken as correct")
	flags.StringVarP(&cc.input, "input", "i", "", "command file (default stdin)")
	flags.BoolVar(&cc.noColor, "no-color", false, "disable colored output")

	return cobraCmd
}

func (cc *CheckCommand) run(cmd *cobra.Command, _ []string) (err error) {
	sess, err := startSession(cmd, nil)
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, sess.close())
	}()

	in, err := openInput(cmd, cc.input)
	if err != nil {
		return err
	}

	commands, err := io.ReadAll(in)

	closeErr := in.Close()
	if err != nil || closeErr != nil {
		return fmt.Errorf("read input: %w", errors.Join(err, closeErr))
	}

	engines := cc.engines
	if !slices.Contains(engines, cc.reference) {
		engines = append([]string{cc.reference}, engines...)
	}

	outputs := make(map[string]string, len(engines))

	for _, name := range engines {
		output, runErr := cc.runEngine(cmd, sess, name, commands)
		if runErr != nil {
			return runErr
		}

		outputs[name] = output
	}

	return cc.report(cmd.OutOrStdout(), engines, outputs)
}

func (cc *CheckCommand) runEngine(cmd *cobra.Command, sess *session, name string, commands []byte) (string, error) {
	set, err := rangeq.NewSet(name, 0)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer

	drv := &rangeq.Driver{
		Set:       set,
		Out:       &out,
		Err:       io.Discard,
		Separator: checkSeparator,
		Logger:    sess.providers.Logger.With("engine", name),
		Metrics:   sess.metrics,
		Tracer:    sess.providers.Tracer,
	}

	_, err = drv.Run(cmd.Context(), bytes.NewReader(commands))
	if err != nil {
		return "", fmt.Errorf("engine %s: %w", name, err)
	}

	return out.String(), nil
}

func (cc *CheckCommand) report(out io.Writer, engines []string, outputs map[string]string) error {
	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)

	if cc.noColor {
		pass.DisableColor()
		fail.DisableColor()
	}

	want := outputs[cc.reference]
	failed := 0

	for _, name := range engines {
		if name == cc.reference {
			continue
		}

		got := outputs[name]
		if got == want {
			pass.Fprint(out, "PASS")
			fmt.Fprintf(out, " %s\n", name)

			continue
		}

		failed++

		fail.Fprint(out, "FAIL")
		fmt.Fprintf(out, " %s (reference %s)\n", name, cc.reference)
		fmt.Fprintln(out, lineDiff(want, got, cc.noColor))
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d engines", ErrMismatch, failed, len(engines)-1)
	}

	return nil
}

// lineDiff renders a line-level diff of want against got.
func lineDiff(want, got string, plain bool) string {
	dmp := diffmatchpatch.New()

	wantChars, gotChars, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(wantChars, gotChars, false), lines)

	if !plain {
		return dmp.DiffPrettyText(diffs)
	}

	var buf bytes.Buffer

	for _, diff := range diffs {
		prefix := "  "

		switch diff.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		case diffmatchpatch.DiffEqual:
		}

		for line := range bytes.Lines([]byte(diff.Text)) {
			buf.WriteString(prefix)
			buf.Write(line)
		}
	}

	return buf.String()
}
