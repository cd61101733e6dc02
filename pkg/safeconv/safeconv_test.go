package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustIntToUint32(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint32(42), MustIntToUint32(42))
	})

	t.Run("zero", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, uint32(0), MustIntToUint32(0))
	})

	t.Run("max_uint32", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, MaxUint32, MustIntToUint32(math.MaxUint32))
	})

	t.Run("negative_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int to uint32 out of bounds", func() {
			MustIntToUint32(-1)
		})
	})

	t.Run("overflow_panics", func(t *testing.T) {
		t.Parallel()

		assert.PanicsWithValue(t, "safeconv: int to uint32 out of bounds", func() {
			MustIntToUint32(math.MaxUint32 + 1)
		})
	})
}

func TestUint32ToInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, Uint32ToInt(0))
	assert.Equal(t, 7, Uint32ToInt(7))
	assert.Equal(t, 1<<20, Uint32ToInt(1<<20))
}
