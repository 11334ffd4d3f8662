package cmd

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tas33n/DroidWright/internal/imaging"
	"github.com/tas33n/DroidWright/internal/output"
)

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the device screen",
	Long: `Capture the device screen. The image is written to --output, or to stdout
as base64 for easy agent consumption. --annotate draws every element's bounds
with its tap point (or flat-dump index) so a vision model can pick targets.`,
	RunE: runScreenshot,
}

func init() {
	rootCmd.AddCommand(screenshotCmd)
	screenshotCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout as base64)")
	screenshotCmd.Flags().String("format", "png", "Image format: png, jpg")
	screenshotCmd.Flags().Int("quality", 80, "JPEG quality 1-100")
	screenshotCmd.Flags().Float64("scale", 0.5, "Scale factor 0.1-1.0 (for token efficiency)")
	screenshotCmd.Flags().Bool("annotate", false, "Draw element bounds with labels")
	screenshotCmd.Flags().String("labels", "coords", "Annotation labels: coords, index")
}

func runScreenshot(cmd *cobra.Command, args []string) error {
	outPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	quality, _ := cmd.Flags().GetInt("quality")
	scale, _ := cmd.Flags().GetFloat64("scale")
	annotate, _ := cmd.Flags().GetBool("annotate")
	labels, _ := cmd.Flags().GetString("labels")

	opts := imaging.Options{Scale: scale, Format: format, Quality: quality}
	switch labels {
	case "coords":
	case "index":
		opts.Labels = imaging.LabelIndex
	default:
		return fmt.Errorf("unsupported labels: %s (use coords or index)", labels)
	}

	s, err := newSession("")
	if err != nil {
		return err
	}
	if s.provider.Device == nil {
		return errors.New("screenshot not supported on this device")
	}
	ctx := cmd.Context()
	data, err := s.provider.Device.Screenshot(ctx)
	if err != nil {
		return err
	}
	if annotate {
		snap, err := s.provider.Snapshotter.Snapshot(ctx)
		if err != nil {
			return err
		}
		opts.Annotate = snap.Roots
	}
	img, _, err := imaging.Process(data, opts)
	if err != nil {
		return err
	}

	if outPath != "" {
		return os.WriteFile(outPath, img, 0o644)
	}
	encoder := base64.NewEncoder(base64.StdEncoding, output.Writer)
	if _, err := encoder.Write(img); err != nil {
		return err
	}
	if err := encoder.Close(); err != nil {
		return err
	}
	_, err = fmt.Fprintln(output.Writer) // newline after base64
	return err
}
