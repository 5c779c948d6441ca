package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/bryanwahyu/ecosense/internal/domain/footprint"
)

// Store serves the sample image from a MinIO/S3 bucket.
type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	object     string
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL bool, object string) (*Store, error) {
	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
		Region: region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return nil, err
		}
	}

	return &Store{client: cli, bucketName: bucket, region: region, object: object}, nil
}

// Sample implementasi footprint.SampleStore
func (s *Store) Sample(ctx context.Context) (*footprint.Sample, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapErr(err)
	}
	defer obj.Close()

	// Stat dulu supaya NoSuchKey ketahuan sebelum baca body
	info, err := obj.Stat()
	if err != nil {
		return nil, s.mapErr(err)
	}
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", s.bucketName, s.object, err)
	}

	mime := info.ContentType
	if mime == "" || mime == "application/octet-stream" {
		mime = MIMEType(s.object)
	}
	return &footprint.Sample{Name: path.Base(s.object), Data: data, MIMEType: mime}, nil
}

// Upload simpan sample image ke bucket
func (s *Store) Upload(ctx context.Context, data io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucketName, s.object, data, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Check is used by the readiness endpoint.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}

func (s *Store) mapErr(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return fmt.Errorf("%w: %s/%s", footprint.ErrSampleNotFound, s.bucketName, s.object)
	}
	return err
}
