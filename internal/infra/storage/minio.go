package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// presigned URLs stay valid long enough for the analysis call plus a
// comfortable viewing window
const presignExpiry = 7 * 24 * time.Hour

type Store struct {
	client     *minio.Client
	bucketName string
	region     string
	useSSL     bool
	publicRead bool
}

// New buat koneksi MinIO
func New(ctx context.Context, endpoint, region, bucket, accessKey, secretKey string, useSSL, publicRead bool) (*Store, error) {
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

	return &Store{client: cli, bucketName: bucket, region: region, useSSL: useSSL, publicRead: publicRead}, nil
}

// progressReader forwards bytes-read as a 0..1 fraction.
type progressReader struct {
	f     *os.File
	total int64
	read  int64
	fn    func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.f.Read(b)
	if n > 0 && p.fn != nil && p.total > 0 {
		p.read += int64(n)
		frac := float64(p.read) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		p.fn(frac)
	}
	return n, err
}

// Upload implementasi BlobStore. Returns the retrieval URL: the plain
// object URL for public buckets, a presigned GET URL otherwise.
func (s *Store) Upload(ctx context.Context, localPath, key, contentType string, onProgress func(float64)) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return "", err
	}

	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(localPath))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	pr := &progressReader{f: f, total: st.Size(), fn: onProgress}
	_, err = s.client.PutObject(ctx, s.bucketName, key, pr, st.Size(), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	if s.publicRead {
		scheme := "http"
		if s.useSSL {
			scheme = "https"
		}
		return fmt.Sprintf("%s://%s/%s/%s", scheme, s.client.EndpointURL().Host, s.bucketName, key), nil
	}

	u, err := s.client.PresignedGetObject(ctx, s.bucketName, key, presignExpiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// Delete hapus objek dari bucket
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucketName, key, minio.RemoveObjectOptions{})
}

// Check implements the health checker contract.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.client.BucketExists(ctx, s.bucketName)
	return err
}
