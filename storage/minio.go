package storage

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net/url"
	"path/filepath"
	"time"

	"cutroom/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
	bucketName  string
)

// InitMinio initializes the MinIO client and ensures the media bucket
// exists.
func InitMinio() error {
	cfg := config.Load()
	bucketName = cfg.MinioBucket

	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		log.Printf("Created MinIO bucket %s", bucketName)
	}

	minioClient = client
	log.Printf("MinIO connected, bucket %s ready", bucketName)
	return nil
}

// GetMinioClient returns the shared client, for callers needing raw
// operations (the minio CLI command).
func GetMinioClient() *minio.Client {
	return minioClient
}

// BucketName returns the configured media bucket.
func BucketName() string {
	return bucketName
}

// UploadFile stores a local file under objectPath in the media bucket.
func UploadFile(ctx context.Context, objectPath, localPath string) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := minioClient.FPutObject(ctx, bucketName, objectPath, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	return nil
}

// DownloadFile fetches an object into a local file.
func DownloadFile(ctx context.Context, objectPath, localPath string) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	if err := minioClient.FGetObject(ctx, bucketName, objectPath, localPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("failed to download %s: %w", objectPath, err)
	}
	return nil
}

// PresignedGetURL returns a time-limited URL for the playback layer to
// read media bytes directly from storage.
func PresignedGetURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if minioClient == nil {
		return "", fmt.Errorf("MinIO client not initialized")
	}
	u, err := minioClient.PresignedGetObject(ctx, bucketName, objectPath, expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", objectPath, err)
	}
	return u.String(), nil
}

// RemoveObject deletes an object from the media bucket.
func RemoveObject(ctx context.Context, objectPath string) error {
	if minioClient == nil {
		return fmt.Errorf("MinIO client not initialized")
	}
	if err := minioClient.RemoveObject(ctx, bucketName, objectPath, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", objectPath, err)
	}
	return nil
}

// StatObject returns object metadata, or an error when absent.
func StatObject(ctx context.Context, objectPath string) (minio.ObjectInfo, error) {
	if minioClient == nil {
		return minio.ObjectInfo{}, fmt.Errorf("MinIO client not initialized")
	}
	return minioClient.StatObject(ctx, bucketName, objectPath, minio.StatObjectOptions{})
}
