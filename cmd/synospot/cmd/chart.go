package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/synospot/synospot/internal/pipeline"
	"github.com/synospot/synospot/internal/utils"
)

const (
	outputFormatJSON = "json"
	outputFormatCSV  = "csv"
)

// chartCmd represents the chart command.
var chartCmd = &cobra.Command{
	Use:   "chart [files...]",
	Short: "Extract pressure systems and discontinuity markers from chart images",
	Long: `Process one or more binarized weather chart images, detecting L/H
pressure system markers and X discontinuity markers and linking each
marker to its nearest system.

Supported formats: JPEG, PNG, BMP, TIFF

Examples:
  synospot chart 0600_UTC_Tue_02_JAN_mask.png
  synospot chart *.png --format csv
  synospot chart chart.png --output results.json --overlay-dir overlays`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("no input files provided")
		}

		cfg := GetConfig()
		if err := cfg.Validate(); err != nil {
			return err
		}

		for _, pth := range args {
			if !utils.IsSupportedImage(pth) {
				return fmt.Errorf("unsupported image format: %s", pth)
			}
		}

		pl, err := pipeline.NewBuilder().WithConfig(cfg.ToPipelineConfig()).Build()
		if err != nil {
			return fmt.Errorf("failed to build extraction pipeline: %w", err)
		}
		defer func() {
			if err := pl.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing pipeline: %v\n", err)
			}
		}()

		results := make([]*pipeline.ChartResult, 0, len(args))
		for _, pth := range args {
			res, err := pl.ProcessFile(cmd.Context(), pth)
			if err != nil {
				return fmt.Errorf("extraction failed for %s: %w", pth, err)
			}
			if cfg.Output.OverlayDir != "" {
				if err := writeOverlay(cmd, pl, pth, res, cfg.Output.OverlayDir); err != nil {
					return err
				}
			}
			results = append(results, res)
		}

		final, err := formatResults(results, cfg.Output.Format)
		if err != nil {
			return err
		}
		return emitOutput(cmd, final, cfg.Output.File)
	},
}

// formatResults renders results in the requested output format.
func formatResults(results []*pipeline.ChartResult, format string) (string, error) {
	switch format {
	case outputFormatCSV:
		return pipeline.ToCSV(results)
	default:
		parts := make([]string, 0, len(results))
		for _, res := range results {
			s, err := res.ToJSON()
			if err != nil {
				return "", fmt.Errorf("failed to marshal JSON: %w", err)
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, "\n"), nil
	}
}

// emitOutput writes the rendered results to the output file or stdout.
func emitOutput(cmd *cobra.Command, final, outputFile string) error {
	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(final), 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Results written to %s\n", outputFile)
		return err
	}
	if _, err := fmt.Fprintln(cmd.OutOrStdout(), final); err != nil {
		return fmt.Errorf("failed to write final output: %w", err)
	}
	return nil
}

// writeOverlay renders the detections over the source chart and saves
// the annotated image next to the other overlays.
func writeOverlay(cmd *cobra.Command, pl *pipeline.Pipeline, pth string,
	res *pipeline.ChartResult, overlayDir string,
) error {
	img, err := utils.LoadImage(pth)
	if err != nil {
		return fmt.Errorf("failed to load %s for overlay: %w", pth, err)
	}
	ov := pipeline.Overlay(img, res)
	if ov == nil {
		return nil
	}
	if err := os.MkdirAll(overlayDir, 0o750); err != nil {
		return fmt.Errorf("failed to create overlay directory: %w", err)
	}
	base := filepath.Base(pth)
	ext := filepath.Ext(base)
	outPath := filepath.Join(overlayDir, strings.TrimSuffix(base, ext)+"_overlay.png")
	if err := utils.SavePNG(outPath, ov); err != nil {
		return fmt.Errorf("failed to save overlay: %w", err)
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved overlay: %s\n", outPath)
	return err
}

func addChartFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "json", "output format (json, csv)")
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("overlay-dir", "", "directory to write overlay images (drawn markers)")
	cmd.Flags().StringP("language", "l", "eng", "recognition language")
	cmd.Flags().Int("mask-threshold", 120, "grayscale threshold for the standard foreground mask (1-255)")
	cmd.Flags().Int("scan-threshold", 100, "grayscale threshold for the sensitive scan mask (1-255)")
	cmd.Flags().Float64("max-link-distance", 100, "maximum distance for linking a marker to a system (px)")
}

// bindChartFlags binds all flags to viper configuration keys.
func bindChartFlags(cmd *cobra.Command) {
	flagBindings := []struct {
		key  string
		flag string
	}{
		{"output.format", "format"},
		{"output.file", "output"},
		{"output.overlay_dir", "overlay-dir"},
		{"recognition.language", "language"},
		{"mask.threshold", "mask-threshold"},
		{"mask.scan_threshold", "scan-threshold"},
		{"detection.max_link_distance", "max-link-distance"},
	}

	for _, binding := range flagBindings {
		if err := viper.BindPFlag(binding.key, cmd.Flags().Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", binding.flag, err))
		}
	}
}

func init() {
	rootCmd.AddCommand(chartCmd)

	addChartFlags(chartCmd)
	bindChartFlags(chartCmd)
}

// GetChartCommand returns the chart command for testing purposes.
func GetChartCommand() *cobra.Command {
	return chartCmd
}
