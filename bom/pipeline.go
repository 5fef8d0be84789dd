package bom

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/teranos/bomx/catalog"
	"github.com/teranos/bomx/errors"
	"github.com/teranos/bomx/reasoner"
)

// CatalogClient is the part-catalog capability the pipeline consumes.
// Lookup returns errors.ErrNotFound for MPNs absent from the catalog.
type CatalogClient interface {
	Lookup(ctx context.Context, mpn string) (*catalog.PartRecord, error)
}

// Config tunes pipeline concurrency
type Config struct {
	// Workers bounds concurrent row parsing and catalog lookups
	Workers int
	// Evaluators bounds concurrent alternative evaluations
	Evaluators int
	// SampleRows is how many data rows accompany the column-mapping request
	SampleRows int
	// Delimiter joins fields back into the row text shown to the reasoner
	Delimiter rune
	Logger    *zap.SugaredLogger
}

// Pipeline runs BOM jobs. It owns each job exclusively for the duration of
// a run; the only shared state underneath is the catalog client's cache.
type Pipeline struct {
	reasoner reasoner.Client
	catalog  CatalogClient
	config   Config
	logger   *zap.SugaredLogger
}

// New creates a pipeline with sane concurrency defaults
func New(reasonerClient reasoner.Client, catalogClient CatalogClient, config Config) *Pipeline {
	if config.Workers <= 0 {
		config.Workers = 10
	}
	if config.Evaluators <= 0 {
		config.Evaluators = 4
	}
	if config.SampleRows <= 0 {
		config.SampleRows = 10
	}
	if config.Delimiter == 0 {
		config.Delimiter = ','
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Pipeline{
		reasoner: reasonerClient,
		catalog:  catalogClient,
		config:   config,
		logger:   logger,
	}
}

// RunFile reads a delimited BOM file and runs the pipeline over it. A
// job is always returned, carrying its processing error when the run was
// fatal.
func (p *Pipeline) RunFile(ctx context.Context, r io.Reader, delimiter rune, assumptions ProjectAssumptions) (*BomJob, error) {
	headers, rows, err := ReadTable(r, delimiter)
	if err != nil {
		job := NewJob(nil, nil, assumptions)
		job.fail(err.Error())
		return job, err
	}
	return p.Run(ctx, headers, rows, assumptions)
}

// Run processes one BOM through every stage. Per-row failures are recorded
// on the items and never abort the job; only job-fatal conditions (empty
// input, unresolvable mandatory columns) or cancellation end a run early.
func (p *Pipeline) Run(ctx context.Context, headers []string, rows [][]string, assumptions ProjectAssumptions) (*BomJob, error) {
	job := NewJob(headers, rows, assumptions)
	p.logger.Infow("job started", "job_id", job.ID, "rows", len(rows))

	if len(headers) == 0 {
		err := errors.NewJobFatalError("input has no header row")
		job.fail(err.Error())
		return job, err
	}
	if len(rows) == 0 {
		err := errors.NewJobFatalError("input has no data rows")
		job.fail(err.Error())
		return job, err
	}

	if err := p.resolveColumns(ctx, job); err != nil {
		job.fail(err.Error())
		return job, err
	}
	p.transition(job, StateColumnsMapped)

	if err := p.parseRows(ctx, job); err != nil {
		job.fail(err.Error())
		return job, err
	}
	p.transition(job, StateRowsParsed)

	if err := p.enrich(ctx, job); err != nil {
		job.fail(err.Error())
		return job, err
	}
	p.transition(job, StateEnriched)

	if err := p.evaluate(ctx, job); err != nil {
		job.fail(err.Error())
		return job, err
	}
	p.transition(job, StateEvaluated)

	if failed := job.FailedCount(); failed > 0 {
		p.logger.Warnw("job completed with row failures",
			"job_id", job.ID, "failed", failed, "total", len(job.Items))
	}
	p.transition(job, StateFinalized)
	p.logger.Infow("job finished",
		"job_id", job.ID, "parsed", job.ParsedCount(), "failed", job.FailedCount())

	return job, nil
}

func (p *Pipeline) transition(job *BomJob, state JobState) {
	job.State = state
	p.logger.Debugw("job state", "job_id", job.ID, "state", state)
}

// parseRows fans out row parsing across the worker pool. Items land at
// their source row's index so output order matches input order.
func (p *Pipeline) parseRows(ctx context.Context, job *BomJob) error {
	idx := newColumnIndex(job.Headers, job.Mapping)
	items := make([]ParsedBomItem, len(job.Rows))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.config.Workers)
	for i, fields := range job.Rows {
		i, fields := i, fields
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			items[i] = p.parseRow(gctx, fields, idx, job.Mapping, p.config.Delimiter)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return errors.Wrap(err, "row parsing interrupted")
	}

	job.Items = items
	return nil
}

// enrich looks up catalog data for every parsed item that carries an MPN.
// A catalog outage or a missing part degrades the individual row with a
// note; it never aborts the job.
func (p *Pipeline) enrich(ctx context.Context, job *BomJob) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.config.Workers)

	for i := range job.Items {
		item := &job.Items[i]
		if item.Failed() || item.ManufacturerPartNumber == nil {
			continue
		}
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			record, err := p.catalog.Lookup(gctx, *item.ManufacturerPartNumber)
			switch {
			case err == nil:
				item.PartData = record
			case errors.IsNotFoundError(err):
				item.Notes = append(item.Notes,
					fmt.Sprintf("part %s not found in catalog", *item.ManufacturerPartNumber))
			default:
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warnw("catalog enrichment degraded",
					"job_id", job.ID, "mpn", *item.ManufacturerPartNumber, "error", err)
				item.Notes = append(item.Notes, "catalog enrichment unavailable")
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return errors.Wrap(err, "enrichment interrupted")
	}
	return nil
}

// evaluate fans out substitute evaluation across every (item, candidate)
// pair, then picks each item's best valid alternative by lowest total cost
// with inventory and listing-order tie-breaks.
func (p *Pipeline) evaluate(ctx context.Context, job *BomJob) error {
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(p.config.Evaluators)

	for i := range job.Items {
		item := &job.Items[i]
		if item.Failed() || item.PartData == nil || len(item.PartData.SimilarParts) == 0 {
			continue
		}

		item.Evaluations = make([]AlternativeEvaluation, len(item.PartData.SimilarParts))
		for j, candidate := range item.PartData.SimilarParts {
			j, candidate := j, candidate
			group.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				item.Evaluations[j] = AlternativeEvaluation{
					Candidate: candidate,
					Result:    p.evaluateCandidate(gctx, item.PartData, candidate, job.Assumptions),
					TotalCost: alternativeTotalCost(candidate, item.Quantity),
				}
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return errors.Wrap(err, "evaluation interrupted")
	}

	for i := range job.Items {
		item := &job.Items[i]
		best := pickBestAlternative(item.Evaluations)
		if best < 0 {
			continue
		}
		item.RecommendedAlternative = &item.Evaluations[best].Candidate
		analysis := AnalyzeCost(item.PartData.Sellers, item.RecommendedAlternative.Sellers, item.Quantity)
		item.CostAnalysis = &analysis
	}
	return nil
}
