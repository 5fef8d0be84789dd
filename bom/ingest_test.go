package bom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/bomx/errors"
)

func TestReadTable(t *testing.T) {
	t.Run("reads comma-separated input", func(t *testing.T) {
		input := "Part Number,Ref Des,Qty\nRC0402JR-071RL,\"R1, R2\",2\nGRM155R71C104KA88D,C1,1\n"

		headers, rows, err := ReadTable(strings.NewReader(input), ',')
		require.NoError(t, err)

		assert.Equal(t, []string{"Part Number", "Ref Des", "Qty"}, headers)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{"RC0402JR-071RL", "R1, R2", "2"}, rows[0])
	})

	t.Run("reads tab-separated input", func(t *testing.T) {
		input := "MPN\tQty\nRC0402JR-071RL\t10\n"

		headers, rows, err := ReadTable(strings.NewReader(input), '\t')
		require.NoError(t, err)
		assert.Equal(t, []string{"MPN", "Qty"}, headers)
		require.Len(t, rows, 1)
	})

	t.Run("skips fully-empty rows", func(t *testing.T) {
		input := "MPN,Qty\n,\nRC0402JR-071RL,2\n , \n"

		_, rows, err := ReadTable(strings.NewReader(input), ',')
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("empty file is job-fatal", func(t *testing.T) {
		_, _, err := ReadTable(strings.NewReader(""), ',')
		require.Error(t, err)
		assert.True(t, errors.IsJobFatalError(err))
	})

	t.Run("header without data rows is job-fatal", func(t *testing.T) {
		_, _, err := ReadTable(strings.NewReader("MPN,Qty\n"), ',')
		require.Error(t, err)
		assert.True(t, errors.IsJobFatalError(err))
	})

	t.Run("ragged rows are tolerated", func(t *testing.T) {
		input := "MPN,Qty,Notes\nRC0402JR-071RL,2\n"

		_, rows, err := ReadTable(strings.NewReader(input), ',')
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Len(t, rows[0], 2)
	})
}

func TestDelimiterForPath(t *testing.T) {
	assert.Equal(t, ',', DelimiterForPath("parts.csv"))
	assert.Equal(t, '\t', DelimiterForPath("parts.tsv"))
	assert.Equal(t, '\t', DelimiterForPath("PARTS.TXT"))
	assert.Equal(t, ',', DelimiterForPath("parts"))
}
