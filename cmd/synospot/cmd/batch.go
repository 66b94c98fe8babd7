package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/synospot/synospot/internal/batch"
	"github.com/synospot/synospot/internal/observability"
	"github.com/synospot/synospot/internal/pipeline"
)

var (
	batchMetrics     *observability.Metrics
	batchMetricsOnce sync.Once
)

// getBatchMetrics registers the pipeline metrics with the default Prometheus
// registry once per process.
func getBatchMetrics() *observability.Metrics {
	batchMetricsOnce.Do(func() {
		batchMetrics = observability.NewMetrics()
	})
	return batchMetrics
}

// batchCmd represents the batch command for processing a directory of charts.
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process a directory of chart images",
	Long: `Process every supported chart image found in the input directory.
Failing charts are logged and skipped unless --continue-on-error=false.

Examples:
  synospot batch --input-dir masks
  synospot batch --input-dir masks --format csv --output readings.csv`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		paths, err := batch.Discover(cfg.Batch.InputDir, cfg.Batch.Recursive, cfg.Batch.Pattern)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no supported images found in %s", cfg.Batch.InputDir)
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Processing %d chart(s) from %s\n",
			len(paths), cfg.Batch.InputDir); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}

		metrics := getBatchMetrics()
		pl, err := pipeline.NewBuilder().
			WithConfig(cfg.ToPipelineConfig()).
			WithMetrics(metrics).
			Build()
		if err != nil {
			return fmt.Errorf("failed to build extraction pipeline: %w", err)
		}
		defer func() {
			if err := pl.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing pipeline: %v\n", err)
			}
		}()

		var results []*pipeline.ChartResult
		if cfg.Batch.ContinueOnError {
			results, err = pl.ProcessBatch(cmd.Context(), paths)
			if err != nil {
				return err
			}
		} else {
			for _, pth := range paths {
				res, err := pl.ProcessFile(cmd.Context(), pth)
				if err != nil {
					return fmt.Errorf("extraction failed for %s: %w", pth, err)
				}
				results = append(results, res)
			}
		}

		if cfg.Output.OverlayDir != "" {
			for _, res := range results {
				if err := writeOverlay(cmd, pl, res.Source, res, cfg.Output.OverlayDir); err != nil {
					return err
				}
			}
		}

		final, err := formatResults(results, cfg.Output.Format)
		if err != nil {
			return err
		}
		if err := emitOutput(cmd, final, cfg.Output.File); err != nil {
			return err
		}

		s := metrics.Summary()
		_, err = fmt.Fprintf(cmd.OutOrStdout(),
			"Batch complete: %d processed, %d failed, %d systems, %d candidates (%d linked), %d recognition retries\n",
			s.ChartsProcessed, s.ChartsFailed, s.SystemsDetected,
			s.CandidatesDetected, s.CandidatesLinked, s.RecognizeRetries)
		return err
	},
}

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input-dir", "i", "masks", "directory containing chart images")
	cmd.Flags().BoolP("recursive", "r", false, "scan the input directory recursively")
	cmd.Flags().String("pattern", "", "glob restricting which base names are processed (e.g. '*_mask.png')")
	cmd.Flags().Bool("continue-on-error", true, "skip charts that fail instead of aborting")
}

// bindBatchFlags binds all flags to viper configuration keys.
func bindBatchFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"batch.input_dir", "input-dir"},
		{"batch.recursive", "recursive"},
		{"batch.pattern", "pattern"},
		{"batch.continue_on_error", "continue-on-error"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(batchCmd)

	addBatchFlags(batchCmd)
	bindBatchFlags(batchCmd)
}

// GetBatchCommand returns the batch command for testing purposes.
func GetBatchCommand() *cobra.Command {
	return batchCmd
}
