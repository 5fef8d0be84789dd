package bom

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/bomx/catalog"
	"github.com/teranos/bomx/errors"
	"github.com/teranos/bomx/reasoner"
)

var testHeaders = []string{"Part Number", "Ref Des", "Qty"}

func sellerWith(inventory int, unitPrice string) catalog.Seller {
	return catalog.Seller{
		Offers: []catalog.Offer{{
			InventoryLevel: inventory,
			Prices: []catalog.PriceBreak{
				{Quantity: 1, Price: decimal.RequireFromString(unitPrice), Currency: "USD"},
			},
		}},
	}
}

func similarWith(mpn string, inventory int, unitPrice string) catalog.SimilarPart {
	return catalog.SimilarPart{
		MPN:     &mpn,
		Sellers: []catalog.Seller{sellerWith(inventory, unitPrice)},
	}
}

// scriptedPipeline wires a pipeline whose reasoner maps the test headers,
// returns empty extractions, and accepts every candidate.
func scriptedPipeline(cat *fakeCatalog) *Pipeline {
	return New(&fakeReasoner{
		mapColumns: passthroughMapping("Part Number", "Ref Des", "Qty", ""),
		extractRow: nullExtraction,
		evaluate: func(*catalog.PartRecord, catalog.SimilarPart, map[string]string) (*reasoner.Evaluation, error) {
			return &reasoner.Evaluation{Valid: true, Reasoning: "equivalent"}, nil
		},
	}, cat, Config{})
}

func TestRun(t *testing.T) {
	t.Run("partial failures stay on their rows", func(t *testing.T) {
		rows := make([][]string, 10)
		for i := range rows {
			rows[i] = []string{fmt.Sprintf("MPN-%d", i), fmt.Sprintf("R%d", i), "2"}
		}
		rows[3][2] = "abc" // row 4 has a malformed quantity

		p := scriptedPipeline(&fakeCatalog{})
		job, err := p.Run(context.Background(), testHeaders, rows, nil)
		require.NoError(t, err)

		assert.Equal(t, StateFinalized, job.State)
		assert.Equal(t, 9, job.ParsedCount())
		assert.Equal(t, 1, job.FailedCount())
		assert.Nil(t, job.ProcessingError, "per-row failures never set the job-level error")
		assert.Equal(t, "9 of 10 items parsed successfully", job.Summary())

		require.True(t, job.Items[3].Failed())
		assert.Contains(t, *job.Items[3].ParseError, "abc")
		assert.Contains(t, job.Items[3].OriginalRowText, "MPN-3")
	})

	t.Run("empty input is fatal with zero items", func(t *testing.T) {
		p := scriptedPipeline(&fakeCatalog{})

		job, err := p.Run(context.Background(), testHeaders, nil, nil)
		require.Error(t, err)
		assert.True(t, errors.IsJobFatalError(err))
		assert.Equal(t, StateFailed, job.State)
		require.NotNil(t, job.ProcessingError)
		assert.Empty(t, job.Items)
	})

	t.Run("missing header row is fatal", func(t *testing.T) {
		p := scriptedPipeline(&fakeCatalog{})

		_, err := p.Run(context.Background(), nil, [][]string{{"MPN-1", "R1", "2"}}, nil)
		require.Error(t, err)
		assert.True(t, errors.IsJobFatalError(err))
	})

	t.Run("recommends lowest-cost valid alternative with inventory tie-break", func(t *testing.T) {
		cat := &fakeCatalog{records: map[string]*catalog.PartRecord{
			"ORIG-1": {
				MPN:     "ORIG-1",
				Sellers: []catalog.Seller{sellerWith(5000, "0.0500")},
				SimilarParts: []catalog.SimilarPart{
					similarWith("ALT-A", 100, "0.0350"),
					similarWith("ALT-B", 9000, "0.0350"),
				},
			},
		}}

		p := scriptedPipeline(cat)
		job, err := p.Run(context.Background(), testHeaders,
			[][]string{{"ORIG-1", "R1", "1000"}}, nil)
		require.NoError(t, err)

		item := job.Items[0]
		require.NotNil(t, item.PartData)
		require.NotNil(t, item.RecommendedAlternative)
		assert.Equal(t, "ALT-B", *item.RecommendedAlternative.MPN, "equal cost breaks toward inventory")

		require.NotNil(t, item.CostAnalysis)
		require.NotNil(t, item.CostAnalysis.TotalSavings)
		assert.True(t, item.CostAnalysis.TotalSavings.Equal(decimal.RequireFromString("15.00")),
			"total savings = %s", item.CostAnalysis.TotalSavings)
	})

	t.Run("no valid candidate leaves the recommendation null", func(t *testing.T) {
		cat := &fakeCatalog{records: map[string]*catalog.PartRecord{
			"ORIG-1": {
				MPN:          "ORIG-1",
				Sellers:      []catalog.Seller{sellerWith(5000, "0.0500")},
				SimilarParts: []catalog.SimilarPart{similarWith("ALT-A", 100, "0.0350")},
			},
		}}

		p := New(&fakeReasoner{
			mapColumns: passthroughMapping("Part Number", "Ref Des", "Qty", ""),
			extractRow: nullExtraction,
			evaluate: func(*catalog.PartRecord, catalog.SimilarPart, map[string]string) (*reasoner.Evaluation, error) {
				return &reasoner.Evaluation{Valid: false, Reasoning: "tolerance too loose"}, nil
			},
		}, cat, Config{})

		job, err := p.Run(context.Background(), testHeaders,
			[][]string{{"ORIG-1", "R1", "1000"}}, nil)
		require.NoError(t, err)

		item := job.Items[0]
		assert.Nil(t, item.RecommendedAlternative)
		assert.Nil(t, item.CostAnalysis)
		require.Len(t, item.Evaluations, 1)
		assert.False(t, item.Evaluations[0].Result.Valid)
	})

	t.Run("catalog outage degrades rows without aborting", func(t *testing.T) {
		cat := &fakeCatalog{err: errors.Wrap(errors.ErrServiceUnavailable, "catalog down")}

		p := scriptedPipeline(cat)
		job, err := p.Run(context.Background(), testHeaders,
			[][]string{{"MPN-1", "R1", "2"}, {"MPN-2", "R2", "4"}}, nil)
		require.NoError(t, err)

		assert.Equal(t, StateFinalized, job.State)
		for _, item := range job.Items {
			assert.Nil(t, item.PartData)
			assert.Contains(t, item.Notes, "catalog enrichment unavailable")
		}
	})

	t.Run("part absent from catalog gets a note", func(t *testing.T) {
		p := scriptedPipeline(&fakeCatalog{})
		job, err := p.Run(context.Background(), testHeaders,
			[][]string{{"NO-SUCH-PART", "R1", "2"}}, nil)
		require.NoError(t, err)

		item := job.Items[0]
		assert.Nil(t, item.PartData)
		require.Len(t, item.Notes, 1)
		assert.Contains(t, item.Notes[0], "not found in catalog")
	})

	t.Run("assumptions reach the evaluator", func(t *testing.T) {
		cat := &fakeCatalog{records: map[string]*catalog.PartRecord{
			"ORIG-1": {
				MPN:          "ORIG-1",
				SimilarParts: []catalog.SimilarPart{similarWith("ALT-A", 100, "0.01")},
			},
		}}

		var seen map[string]string
		p := New(&fakeReasoner{
			mapColumns: passthroughMapping("Part Number", "Ref Des", "Qty", ""),
			extractRow: nullExtraction,
			evaluate: func(_ *catalog.PartRecord, _ catalog.SimilarPart, assumptions map[string]string) (*reasoner.Evaluation, error) {
				seen = assumptions
				return &reasoner.Evaluation{Valid: true, Reasoning: "fine"}, nil
			},
		}, cat, Config{})

		_, err := p.Run(context.Background(), testHeaders,
			[][]string{{"ORIG-1", "R1", "5"}},
			ProjectAssumptions{"operating temperature?": "-40C to 85C"})
		require.NoError(t, err)
		assert.Equal(t, "-40C to 85C", seen["operating temperature?"])
	})

	t.Run("cancellation interrupts the run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p := scriptedPipeline(&fakeCatalog{})
		job, err := p.Run(ctx, testHeaders, [][]string{{"MPN-1", "R1", "2"}}, nil)
		require.Error(t, err)
		assert.Equal(t, StateFailed, job.State)
	})
}

func TestRunFile(t *testing.T) {
	t.Run("end to end from a CSV reader", func(t *testing.T) {
		cat := &fakeCatalog{records: map[string]*catalog.PartRecord{
			"ORIG-1": {
				MPN:          "ORIG-1",
				Sellers:      []catalog.Seller{sellerWith(5000, "0.0500")},
				SimilarParts: []catalog.SimilarPart{similarWith("ALT-A", 100, "0.0350")},
			},
		}}

		input := "Part Number,Ref Des,Qty\nORIG-1,\"R1, R2\",1000\n"
		p := scriptedPipeline(cat)

		job, err := p.RunFile(context.Background(), strings.NewReader(input), ',', nil)
		require.NoError(t, err)
		assert.Equal(t, StateFinalized, job.State)
		require.Len(t, job.Items, 1)
		assert.Equal(t, []string{"R1", "R2"}, job.Items[0].Designators)
		require.NotNil(t, job.Items[0].RecommendedAlternative)
	})

	t.Run("empty file yields a failed job", func(t *testing.T) {
		p := scriptedPipeline(&fakeCatalog{})

		job, err := p.RunFile(context.Background(), strings.NewReader(""), ',', nil)
		require.Error(t, err)
		assert.True(t, errors.IsJobFatalError(err))
		assert.Equal(t, StateFailed, job.State)
		require.NotNil(t, job.ProcessingError)
		assert.Empty(t, job.Items)
	})
}
