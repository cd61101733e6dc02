package commands //nolint:testpackage // exercises the report path engines never reach.

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportMismatch(t *testing.T) {
	t.Parallel()

	cc := &CheckCommand{reference: "btree", noColor: true}

	var out bytes.Buffer

	err := cc.report(&out, []string{"btree", "rbtree", "llrb"}, map[string]string{
		"btree":  "1\n2\n3\n",
		"rbtree": "1\n2\n3\n",
		"llrb":   "1\n4\n3\n",
	})

	assert.ErrorIs(t, err, ErrMismatch)
	assert.Contains(t, out.String(), "PASS rbtree")
	assert.Contains(t, out.String(), "FAIL llrb (reference btree)")
	assert.Contains(t, out.String(), "- 2\n")
	assert.Contains(t, out.String(), "+ 4\n")
}

func TestLineDiffEqual(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "  1\n  2\n", lineDiff("1\n2\n", "1\n2\n", true))
}
