package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/ecosense/internal/infra/storage"
	"github.com/bryanwahyu/ecosense/internal/middleware"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Manage the sample image served by /api/test",
}

var samplePushCmd = &cobra.Command{
	Use:   "push <image>",
	Short: "Upload a sample image to the configured MinIO bucket",
	Args:  cobra.ExactArgs(1),
	RunE:  runSamplePush,
}

func runSamplePush(cmd *cobra.Command, args []string) error {
	if cfg.Samples.Source != "minio" {
		return fmt.Errorf("samples.source is %q; push needs minio", cfg.Samples.Source)
	}
	if err := middleware.ValidateImageFilename(args[0]); err != nil {
		return err
	}
	mime := storage.MIMEType(args[0])

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	m := cfg.Samples.Minio
	store, err := storage.New(ctx, m.Endpoint, m.Region, m.BucketName, m.AccessKey, m.SecretKey, m.UseSSL, cfg.Samples.Object)
	if err != nil {
		return fmt.Errorf("connect minio: %w", err)
	}
	if err := store.Upload(ctx, f, info.Size(), mime); err != nil {
		return fmt.Errorf("upload sample: %w", err)
	}
	logger.Info("sample uploaded",
		zap.String("bucket", m.BucketName),
		zap.String("object", cfg.Samples.Object),
		zap.Int64("bytes", info.Size()))
	fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s to %s/%s\n", filepath.Base(args[0]), m.BucketName, cfg.Samples.Object)
	return nil
}
