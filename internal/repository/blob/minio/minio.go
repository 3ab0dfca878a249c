package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"storefront/internal/config"
	"storefront/internal/repository/blob"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

const contentType = "application/json"

// objectClient is the part of *minio.Client the repository uses.
type objectClient interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// BlobRepository stores each value as the object "<namespace>/<key>.json".
type BlobRepository struct {
	client  objectClient
	bucket  string
	quota   int64
	retries retry.Strategy
	logger  *zlog.Zerolog
}

func NewMinIORepository(ctx context.Context, cfg *config.Config, retries retry.Strategy, logger *zlog.Zerolog) (*BlobRepository, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKey, cfg.Minio.SecretKey, ""),
		Secure: cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return newRepository(ctx, client, cfg.Minio.Bucket, int64(cfg.Storage.QuotaBytes), retries, logger)
}

func newRepository(ctx context.Context, client objectClient, bucket string, quota int64, retries retry.Strategy, logger *zlog.Zerolog) (*BlobRepository, error) {
	r := &BlobRepository{
		client:  client,
		bucket:  bucket,
		quota:   quota,
		retries: retries,
		logger:  logger,
	}

	if err := r.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket %s: %w", bucket, err)
	}
	return r, nil
}

func (r *BlobRepository) ensureBucket(ctx context.Context) error {
	return retry.Do(func() error {
		exists, err := r.client.BucketExists(ctx, r.bucket)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}
		r.logger.Info().Str("bucket", r.bucket).Msg("Creating bucket")
		return r.client.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{})
	}, r.retries)
}

func objectName(namespace, key string) string {
	return namespace + "/" + key + ".json"
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (r *BlobRepository) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return nil, err
	}

	var data []byte
	notFound := false
	err := retry.Do(func() error {
		obj, err := r.client.GetObject(ctx, r.bucket, objectName(namespace, key), minio.GetObjectOptions{})
		if err != nil {
			return err
		}
		defer obj.Close()

		data, err = io.ReadAll(obj)
		if err != nil && isNoSuchKey(err) {
			notFound = true
			return nil
		}
		return err
	}, r.retries)

	if notFound {
		return nil, blob.ErrNotFound
	}
	if err != nil {
		r.logger.Error().Err(err).Str("namespace", namespace).Str("key", key).Msg("Failed to get object")
		return nil, fmt.Errorf("%w: %v", blob.ErrStorageError, err)
	}
	return data, nil
}

func (r *BlobRepository) Put(ctx context.Context, namespace, key string, value []byte) error {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return err
	}

	used, err := r.usage(ctx, namespace, key)
	if err != nil {
		return err
	}
	if err := blob.CheckQuota(r.quota, used, int64(len(value))); err != nil {
		return err
	}

	err = retry.Do(func() error {
		_, err := r.client.PutObject(ctx, r.bucket, objectName(namespace, key),
			bytes.NewReader(value), int64(len(value)), minio.PutObjectOptions{ContentType: contentType})
		return err
	}, r.retries)
	if err != nil {
		r.logger.Error().Err(err).Str("namespace", namespace).Str("key", key).Msg("Failed to put object")
		return fmt.Errorf("%w: %v", blob.ErrStorageError, err)
	}
	return nil
}

func (r *BlobRepository) Delete(ctx context.Context, namespace, key string) error {
	if err := blob.ValidateKey(namespace, key); err != nil {
		return err
	}

	err := retry.Do(func() error {
		return r.client.RemoveObject(ctx, r.bucket, objectName(namespace, key), minio.RemoveObjectOptions{})
	}, r.retries)
	if err != nil {
		return fmt.Errorf("%w: %v", blob.ErrStorageError, err)
	}
	return nil
}

func (r *BlobRepository) usage(ctx context.Context, namespace, key string) (int64, error) {
	if r.quota <= 0 {
		return 0, nil
	}

	skip := objectName(namespace, key)
	var total int64
	for obj := range r.client.ListObjects(ctx, r.bucket, minio.ListObjectsOptions{Prefix: namespace + "/", Recursive: true}) {
		if obj.Err != nil {
			return 0, fmt.Errorf("%w: %v", blob.ErrStorageError, obj.Err)
		}
		if obj.Key != skip {
			total += obj.Size
		}
	}
	return total, nil
}
