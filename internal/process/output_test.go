package process_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/patchcheck/internal/process"
)

func TestLimitedBuffer(t *testing.T) {
	tests := map[string]struct {
		max          int
		writes       []string
		expOut       string
		expTruncated bool
	}{
		"Writes under the limit should be kept.": {
			max:    10,
			writes: []string{"hello", "world"},
			expOut: "helloworld",
		},

		"Writes over the limit should be truncated and marked.": {
			max:          8,
			writes:       []string{"hello", "world"},
			expOut:       "hellowor" + process.TruncatedMarker,
			expTruncated: true,
		},

		"Writes after the limit was reached should be discarded.": {
			max:          5,
			writes:       []string{"hello", "world", "again"},
			expOut:       "hello" + process.TruncatedMarker,
			expTruncated: true,
		},

		"A zero limit should not truncate.": {
			max:    0,
			writes: []string{strings.Repeat("a", 100)},
			expOut: strings.Repeat("a", 100),
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			b := process.NewLimitedBuffer(test.max)
			for _, w := range test.writes {
				n, err := b.Write([]byte(w))
				require.NoError(err)
				require.Equal(len(w), n)
			}

			assert.Equal(test.expOut, b.String())
			assert.Equal(test.expTruncated, b.Truncated())
		})
	}
}

func TestCheckBinaries(t *testing.T) {
	assert := assert.New(t)

	results := process.CheckBinaries([]string{"sh", "this-binary-does-not-exist-patchcheck", "sh"})

	// Duplicates are only checked once.
	if assert.Len(results, 2) {
		assert.Equal("binary_sh", results[0].ID)
		assert.Equal("binary_this-binary-does-not-exist-patchcheck", results[1].ID)
		assert.Equal("error", string(results[1].Status))
	}
}
