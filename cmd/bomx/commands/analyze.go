package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/teranos/bomx/am"
	"github.com/teranos/bomx/bom"
	"github.com/teranos/bomx/cache"
	"github.com/teranos/bomx/catalog"
	"github.com/teranos/bomx/display"
	"github.com/teranos/bomx/internal/llm"
	"github.com/teranos/bomx/internal/util"
	"github.com/teranos/bomx/logger"
	"github.com/teranos/bomx/reasoner"
)

var assumeFlags []string

// AnalyzeCmd runs the full pipeline over one BOM file
var AnalyzeCmd = &cobra.Command{
	Use:   "analyze <bom-file>",
	Short: "Analyze a BOM file and report alternative parts and savings",
	Long: `Run the enrichment pipeline over a BOM file (CSV or TSV).

Each row is parsed, enriched with part-catalog data, and compared against
candidate alternative parts. The report lists the recommended alternative
and projected cost savings per line item.

Project assumptions answer clarifying questions about the design and are
passed to the alternative evaluator as context.

Examples:
  bomx analyze parts.csv
  bomx analyze parts.tsv --assume "operating environment=automotive"
  bomx analyze parts.csv --json > result.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	AnalyzeCmd.Flags().BoolP("json", "j", false, "Emit the full job result as JSON")
	AnalyzeCmd.Flags().StringArrayVar(&assumeFlags, "assume", nil,
		`Project assumption as "question=answer" (repeatable)`)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := am.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.OpenRouter.APIKey == "" {
		return fmt.Errorf("no reasoning API key configured (set BOMX_OPENROUTER_API_KEY or OPENROUTER_API_KEY)")
	}
	if cfg.Catalog.Token == "" {
		return fmt.Errorf("no catalog token configured (set BOMX_CATALOG_TOKEN or NEXAR_API_KEY)")
	}

	assumptions, err := parseAssumptions(assumeFlags)
	if err != nil {
		return err
	}

	lookupCache, err := cache.New(cache.Config{
		Path:       cfg.Cache.Path,
		MaxEntries: cfg.Cache.MaxEntries,
		Logger:     logger.Logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open lookup cache: %w", err)
	}
	defer lookupCache.Close()

	catalogClient := catalog.NewClient(catalog.Config{
		Token:             cfg.Catalog.Token,
		BaseURL:           cfg.Catalog.BaseURL,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
		MaxAttempts:       cfg.Catalog.MaxAttempts,
		SimilarPartsLimit: cfg.Catalog.SimilarPartsLimit,
		CacheTTL:          time.Duration(cfg.Cache.TTLHours) * time.Hour,
		Cache:             lookupCache,
		Logger:            logger.Logger,
	})

	reasonerClient := reasoner.NewOpenRouter(reasoner.Config{
		APIKey:      cfg.OpenRouter.APIKey,
		BaseURL:     cfg.OpenRouter.BaseURL,
		Model:       cfg.OpenRouter.Model,
		Temperature: util.Ptr(cfg.OpenRouter.Temperature),
		MaxTokens:   util.Ptr(cfg.OpenRouter.MaxTokens),
		Timeout:     time.Duration(cfg.OpenRouter.TimeoutSeconds) * time.Second,
		Logger:      logger.Logger,
	})

	pipeline := bom.New(reasonerClient, catalogClient, bom.Config{
		Workers:    cfg.Pipeline.Workers,
		Evaluators: cfg.Pipeline.Evaluators,
		SampleRows: cfg.Pipeline.SampleRows,
		Delimiter:  bom.DelimiterForPath(path),
		Logger:     logger.Logger,
	})

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open BOM file: %w", err)
	}
	defer file.Close()

	// Ctrl-C cancels in-flight row work
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	job, err := pipeline.RunFile(ctx, file, bom.DelimiterForPath(path), assumptions)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(job)
	}

	renderReport(job)
	return nil
}

// parseAssumptions splits repeated "question=answer" flags
func parseAssumptions(flags []string) (bom.ProjectAssumptions, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	assumptions := make(bom.ProjectAssumptions, len(flags))
	for _, flag := range flags {
		question, answer, found := strings.Cut(flag, "=")
		if !found || strings.TrimSpace(question) == "" {
			return nil, fmt.Errorf("invalid --assume value %q (expected \"question=answer\")", flag)
		}
		assumptions[strings.TrimSpace(question)] = strings.TrimSpace(answer)
	}
	return assumptions, nil
}

func renderReport(job *bom.BomJob) {
	if llm.ShouldDisableColor() {
		pterm.DisableColor()
	}

	pterm.DefaultHeader.WithFullWidth().Printf("BOM Analysis — %s", job.ID)
	pterm.Println()
	pterm.Info.Println(job.Summary())
	pterm.Println()

	data := pterm.TableData{
		{"Row", "MPN", "Qty", "Designators", "Alternative", "Savings"},
	}
	totalSavings := decimal.Zero
	currency := ""

	for i, item := range job.Items {
		row := fmt.Sprintf("%d", i+1)

		if item.Failed() {
			data = append(data, []string{row, "-", "-", "-", "parse error: " + *item.ParseError, "-"})
			continue
		}

		mpn := "-"
		if item.ManufacturerPartNumber != nil {
			mpn = *item.ManufacturerPartNumber
		}

		alternative := "-"
		if item.RecommendedAlternative != nil && item.RecommendedAlternative.MPN != nil {
			alternative = *item.RecommendedAlternative.MPN
		} else if len(item.Notes) > 0 {
			alternative = item.Notes[0]
		}

		savings := "-"
		if item.CostAnalysis != nil && item.CostAnalysis.TotalSavings != nil {
			savings = fmt.Sprintf("%s %s",
				item.CostAnalysis.TotalSavings.StringFixed(2), item.CostAnalysis.Currency)
			totalSavings = totalSavings.Add(*item.CostAnalysis.TotalSavings)
			currency = item.CostAnalysis.Currency
		}

		data = append(data, []string{
			row, mpn, fmt.Sprintf("%d", item.Quantity),
			strings.Join(item.Designators, ", "), alternative, savings,
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Printf("failed to render table: %v\n", err)
	}

	pterm.Println()
	if totalSavings.IsPositive() {
		pterm.Success.Printf("Projected total savings: %s %s\n", totalSavings.StringFixed(2), currency)
	} else if job.FailedCount() > 0 {
		pterm.Warning.Printf("%d of %d rows failed to parse\n", job.FailedCount(), len(job.Items))
	}
}
