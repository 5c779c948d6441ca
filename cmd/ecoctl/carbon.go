package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/client/workflow"
)

var plainOutput bool

var carbonCmd = &cobra.Command{
	Use:   "carbon",
	Short: "Estimate the carbon footprint of a product",
	Long: `Estimate the carbon footprint of a product from a photo.

Available subcommands:
  analyze - Upload an image (png, jpg, jpeg, webp)
  sample  - Analyze the server's built-in sample image`,
}

var carbonAnalyzeCmd = &cobra.Command{
	Use:   "analyze <image>",
	Short: "Upload a product image for analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runCarbonAnalyze,
}

var carbonSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Analyze the built-in sample image",
	Args:  cobra.NoArgs,
	RunE:  runCarbonSample,
}

func init() {
	carbonCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "Print the summary without markdown styling")
}

func runCarbonAnalyze(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	return runCarbon(cmd, backend.ImageInput{Filename: filepath.Base(args[0]), Data: data})
}

func runCarbonSample(cmd *cobra.Command, args []string) error {
	return runCarbon(cmd, backend.ImageInput{Filename: "sample.png", Sample: true})
}

func runCarbon(cmd *cobra.Command, in backend.ImageInput) error {
	wf := workflow.NewCarbon(newClient(),
		workflow.WithInterval(cfg.Client.ProgressInterval),
		workflow.WithLogger(logger),
	)
	defer wf.Close()

	snap, err := analyze(cmd.Context(), cmd.ErrOrStderr(), wf, in)
	if err != nil {
		return err
	}
	printCarbon(cmd.OutOrStdout(), *snap.Result, plainOutput)
	return nil
}
