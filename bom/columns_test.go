package bom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/bomx/errors"
	"github.com/teranos/bomx/reasoner"
)

func TestHeuristicMapping(t *testing.T) {
	t.Run("exact synonym matches", func(t *testing.T) {
		m := HeuristicMapping([]string{"MPN", "Designators", "Qty", "Description"})

		require.NotNil(t, m.ManufacturerPartNumber)
		assert.Equal(t, "MPN", *m.ManufacturerPartNumber)
		require.NotNil(t, m.Designators)
		assert.Equal(t, "Designators", *m.Designators)
		require.NotNil(t, m.Quantity)
		assert.Equal(t, "Qty", *m.Quantity)
		require.NotNil(t, m.Description)
	})

	t.Run("substring matches messy headers", func(t *testing.T) {
		m := HeuristicMapping([]string{"Mfr Part Number (primary)", "Ref Des list", "Order Quantity"})

		require.NotNil(t, m.ManufacturerPartNumber)
		assert.Equal(t, "Mfr Part Number (primary)", *m.ManufacturerPartNumber)
		require.NotNil(t, m.Designators)
		require.NotNil(t, m.Quantity)
		assert.Nil(t, m.Description)
	})

	t.Run("unmatched fields stay null", func(t *testing.T) {
		m := HeuristicMapping([]string{"Column A", "Column B"})

		assert.Nil(t, m.ManufacturerPartNumber)
		assert.Nil(t, m.Designators)
		assert.Nil(t, m.Quantity)
		assert.Nil(t, m.Description)
	})

	t.Run("each header assigned at most once", func(t *testing.T) {
		m := HeuristicMapping([]string{"Part Number"})

		require.NotNil(t, m.ManufacturerPartNumber)
		assert.Nil(t, m.Description)
	})
}

func TestResolveColumns(t *testing.T) {
	headers := []string{"Part Number", "Ref Des", "Qty"}
	rows := [][]string{{"RC0402JR-071RL", "R1", "2"}}

	t.Run("reasoning failure falls back with a note", func(t *testing.T) {
		p := New(&fakeReasoner{
			mapColumns: func([]string, [][]string) (*reasoner.ColumnMappingResult, error) {
				return nil, errors.New("service down")
			},
		}, &fakeCatalog{}, Config{})

		job := NewJob(headers, rows, nil)
		require.NoError(t, p.resolveColumns(context.Background(), job))

		require.NotNil(t, job.Mapping)
		require.NotNil(t, job.Mapping.ManufacturerPartNumber)
		assert.Equal(t, "Part Number", *job.Mapping.ManufacturerPartNumber)
		require.NotNil(t, job.MappingNote, "fallback must leave a note on the job")
	})

	t.Run("hallucinated column names are discarded", func(t *testing.T) {
		p := New(&fakeReasoner{
			mapColumns: passthroughMapping("No Such Column", "", "Qty", ""),
		}, &fakeCatalog{}, Config{})

		job := NewJob(headers, rows, nil)
		require.NoError(t, p.resolveColumns(context.Background(), job))

		// Heuristic fills the discarded mpn field
		require.NotNil(t, job.Mapping.ManufacturerPartNumber)
		assert.Equal(t, "Part Number", *job.Mapping.ManufacturerPartNumber)
	})

	t.Run("unresolvable mandatory fields are job-fatal", func(t *testing.T) {
		p := New(&fakeReasoner{
			mapColumns: func([]string, [][]string) (*reasoner.ColumnMappingResult, error) {
				return nil, errors.New("service down")
			},
		}, &fakeCatalog{}, Config{})

		job := NewJob([]string{"Column A", "Column B"}, rows, nil)
		err := p.resolveColumns(context.Background(), job)
		require.Error(t, err)
		assert.True(t, errors.IsJobFatalError(err))
	})
}
