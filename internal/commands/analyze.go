package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/NashC/cashflow-analysis/internal/cashflow"
	"github.com/NashC/cashflow-analysis/internal/categorize"
	"github.com/NashC/cashflow-analysis/internal/classify"
	"github.com/NashC/cashflow-analysis/internal/config"
	"github.com/NashC/cashflow-analysis/internal/export"
	"github.com/NashC/cashflow-analysis/internal/importer"
	"github.com/NashC/cashflow-analysis/internal/logging"
	"github.com/NashC/cashflow-analysis/internal/model"
	"github.com/NashC/cashflow-analysis/internal/report"
	"github.com/NashC/cashflow-analysis/internal/validate"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		format       string
		configPath   string
		mortgagePath string
		exportDir    string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <bank-export.csv | import-dir>",
		Short: "Run the full cash flow analysis on bank CSV exports",
		Long: "Analyze a single bank CSV export, or a directory of them.\n" +
			"Directory exports are combined into one dataset and moved to a\n" +
			"processed/ subdirectory once the analysis succeeds.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(verbose)
			return runAnalyze(log, os.Stdout, args[0], format, configPath, mortgagePath, exportDir)
		},
	}

	cmd.Flags().StringVar(&format, "format", "chase", "bank export format")
	cmd.Flags().StringVar(&configPath, "config", "cashflow.yaml", "path to configuration file")
	cmd.Flags().StringVar(&mortgagePath, "mortgage", "", "mortgage servicer CSV for interest enhancement")
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "directory for CSV result exports")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func runAnalyze(log zerolog.Logger, out io.Writer, input, format, configPath, mortgagePath, exportDir string) error {
	cfg := config.Load(log, configPath)

	txns, processed, err := loadTransactions(log, input, format)
	if err != nil {
		return err
	}

	validation := validateTransactions(log, txns)
	if !validation.Valid {
		return fmt.Errorf("input validation failed: %v", validation.Errors)
	}

	if _, err := classify.New(log).ClassifyAll(txns); err != nil {
		return fmt.Errorf("classifying transactions: %w", err)
	}

	categorizer := categorize.New(log, categorize.Options{
		FuzzyThreshold:  cfg.Categorization.FuzzyMatchThreshold,
		Rules:           compileRules(log, cfg.Categorization.CustomRules),
		MerchantAliases: cfg.Categorization.MerchantAliases,
	})
	categorizer.CategorizeAll(txns)

	calc := cashflow.NewCalculator(log, txns)
	monthly := calc.MonthlyMetrics()
	totals := calc.SummaryMetrics()
	categories := calc.CategoryAnalysis()
	check := calc.Validate()
	for _, w := range check.Warnings {
		log.Warn().Msg(w)
	}

	low := categorize.LowConfidence(txns, cfg.Analysis.ConfidenceThreshold)

	summary := report.Summary{
		SourceFile:    input,
		Monthly:       monthly,
		Totals:        totals,
		Validation:    validation,
		Calculation:   check,
		LowConfidence: len(low),
	}

	var enhanced *report.Enhanced
	if mortgagePath != "" {
		enhanced, err = enhanceWithMortgage(log, summary, mortgagePath)
		if err != nil {
			return err
		}
	}

	if exportDir != "" {
		if err := exportResults(log, exportDir, txns, monthly, categories, enhanced); err != nil {
			return err
		}
	}

	if enhanced != nil {
		err = report.WriteEnhanced(out, *enhanced)
	} else {
		err = report.Write(out, summary)
	}
	if err != nil {
		return err
	}

	// The report is already written, so a failed move only warns.
	for _, path := range processed {
		if err := importer.MarkProcessed(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("could not mark export as processed")
		}
	}
	return nil
}

// loadTransactions parses one export file, or every CSV export in a
// directory. Directory imports also return the paths to move to
// processed/ after the run succeeds; a directly named file stays put.
func loadTransactions(log zerolog.Logger, input, format string) ([]model.Transaction, []string, error) {
	parser := importer.DefaultRegistry(log).Get(format)
	if parser == nil {
		return nil, nil, fmt.Errorf("unknown bank format %q", format)
	}

	info, err := os.Stat(input)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", input, err)
	}
	if !info.IsDir() {
		txns, err := importer.ParseFile(parser, input)
		return txns, nil, err
	}

	files, err := importer.Scan(input)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no CSV exports found in %s", input)
	}

	var txns []model.Transaction
	paths := make([]string, 0, len(files))
	for _, f := range files {
		batch, err := importer.ParseFile(parser, f.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Str("file", f.Name).Int("rows", len(batch)).Msg("imported export")
		txns = append(txns, batch...)
		paths = append(paths, f.Path)
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date.Before(txns[j].Date) })
	return txns, paths, nil
}

func validateTransactions(log zerolog.Logger, txns []model.Transaction) model.ValidationResult {
	res := validate.New(log).Validate(txns)
	for _, w := range res.Warnings {
		log.Warn().Msg(w)
	}
	return res
}

func enhanceWithMortgage(log zerolog.Logger, base report.Summary, mortgagePath string) (*report.Enhanced, error) {
	ledger, err := importer.ParseMortgageFile(importer.NewMortgageParser(log), mortgagePath)
	if err != nil {
		return nil, err
	}

	enhancer := cashflow.NewEnhancer(log, ledger)
	enhancedMonthly := enhancer.Enhance(base.Monthly)

	return &report.Enhanced{
		Summary:         base,
		EnhancedMonthly: enhancedMonthly,
		EnhancedTotals:  enhancer.EnhanceSummary(base.Totals, enhancedMonthly),
		Comparison:      enhancer.Compare(base.Monthly, enhancedMonthly),
		Mortgage:        enhancer.Analyze(),
	}, nil
}

func exportResults(log zerolog.Logger, dir string, txns []model.Transaction, monthly []model.MonthlyMetrics, categories map[string]model.CategoryStats, enhanced *report.Enhanced) error {
	files := map[string]func(io.Writer) error{
		"categorized_transactions.csv": func(w io.Writer) error { return export.WriteTransactions(w, txns) },
		"monthly_metrics.csv":          func(w io.Writer) error { return export.WriteMonthlyMetrics(w, monthly) },
		"category_analysis.csv":        func(w io.Writer) error { return export.WriteCategoryAnalysis(w, categories) },
	}
	if enhanced != nil {
		files["enhanced_monthly_metrics.csv"] = func(w io.Writer) error {
			return export.WriteMonthlyMetrics(w, enhanced.EnhancedMonthly)
		}
	}

	for name, fn := range files {
		path := filepath.Join(dir, name)
		if err := export.WriteFile(path, fn); err != nil {
			return fmt.Errorf("exporting %s: %w", name, err)
		}
		log.Info().Str("path", path).Msg("wrote export")
	}
	return nil
}

// compileRules converts configured rules to categorizer rules. A rule
// with a broken regex is dropped with a warning instead of failing the
// whole run.
func compileRules(log zerolog.Logger, rules []config.CustomRule) []categorize.Rule {
	out := make([]categorize.Rule, 0, len(rules))
	for _, r := range rules {
		rule := categorize.Rule{
			Contains:    r.DescriptionContains,
			Category:    r.Category,
			Subcategory: r.Subcategory,
			Confidence:  r.Confidence,
		}
		if r.Pattern != "" {
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				log.Warn().Str("pattern", r.Pattern).Err(err).Msg("skipping rule with invalid pattern")
				continue
			}
			rule.Pattern = re
		}
		out = append(out, rule)
	}
	return out
}
