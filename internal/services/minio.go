package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioService struct {
	Client     *minio.Client
	BucketName string
}

var minioInstance *MinioService

func InitializeMinio(endpoint, accessKey, secretKey, bucket string, useSSL bool) error {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %v", err)
	}

	// Create bucket if it doesn't exist
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}
	if !exists {
		err = client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("Created bucket: %s", bucket)
	}

	minioInstance = &MinioService{
		Client:     client,
		BucketName: bucket,
	}

	log.Println("Connected to MinIO successfully")
	return nil
}

func GetMinioService() *MinioService {
	return minioInstance
}

// CheckConnection is used by the health endpoint.
func (m *MinioService) CheckConnection() error {
	if m == nil || m.Client == nil {
		return fmt.Errorf("minio service not initialized")
	}
	_, err := m.Client.BucketExists(context.Background(), m.BucketName)
	return err
}

// progressReader counts bytes as the MinIO client consumes them and reports
// each increment to the callback.
type progressReader struct {
	r           io.Reader
	total       int64
	transferred int64
	onProgress  func(transferred, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.transferred += int64(n)
		if p.onProgress != nil {
			p.onProgress(p.transferred, p.total)
		}
	}
	return n, err
}

// Put streams an object into the bucket. onProgress, when non-nil, receives
// monotonically increasing byte counts during the transfer.
func (s *MinioService) Put(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string, onProgress func(transferred, total int64)) error {
	pr := &progressReader{r: reader, total: size, onProgress: onProgress}
	_, err := s.Client.PutObject(
		ctx,
		s.BucketName,
		objectName,
		pr,
		size,
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	return err
}

// RetrievalURL returns a presigned GET URL for an uploaded object.
func (s *MinioService) RetrievalURL(ctx context.Context, objectName string) (string, error) {
	u, err := s.Client.PresignedGetObject(ctx, s.BucketName, objectName, 24*time.Hour, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *MinioService) DownloadFile(objectName, localFilePath string) error {
	return m.Client.FGetObject(context.Background(), m.BucketName, objectName, localFilePath, minio.GetObjectOptions{})
}

func (m *MinioService) DeleteFile(objectName string) error {
	return m.Client.RemoveObject(context.Background(), m.BucketName, objectName, minio.RemoveObjectOptions{})
}

// DeleteObjectsByPrefix removes every object under a prefix, used for user
// cleanup.
func (s *MinioService) DeleteObjectsByPrefix(prefix string) error {
	ctx := context.Background()
	log.Printf("[MinIO] Starting deletion for prefix: %s (bucket: %s)", prefix, s.BucketName)

	exists, err := s.Client.BucketExists(ctx, s.BucketName)
	if err != nil {
		log.Printf("[MinIO] Bucket check failed: %v", err)
		return err
	}
	if !exists {
		log.Printf("[MinIO] Bucket '%s' does not exist", s.BucketName)
		return nil // safe to skip
	}

	errorCh := s.Client.RemoveObjects(ctx, s.BucketName, s.Client.ListObjects(ctx, s.BucketName, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}), minio.RemoveObjectsOptions{})

	for removeErr := range errorCh {
		if removeErr.Err != nil {
			log.Printf("[MinIO] Failed to delete object %s: %v", removeErr.ObjectName, removeErr.Err)
			return removeErr.Err
		}
	}

	log.Printf("[MinIO] Deleted objects with prefix: %s", prefix)
	return nil
}

// GetContentType maps a file extension to a media type, covering the
// keyboard formats the catalog serves.
func GetContentType(extension string) string {
	switch extension {
	case ".mid", ".midi", ".kar":
		return "audio/midi"
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".ogg":
		return "audio/ogg"
	case ".zip":
		return "application/zip"
	default:
		// keyboard style/voice/multipad formats (.sty, .sff1, .sff2, .pad, .vce)
		return "application/octet-stream"
	}
}
