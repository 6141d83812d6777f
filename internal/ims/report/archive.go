package report

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Archive 已生成报表的对象存储
type Archive interface {
	Put(ctx context.Context, objectName string, data []byte, contentType string) error
	Location(objectName string) string
}

// ObjectName 归档路径：reports/<日期>/<随机前缀>-<文件名>
func ObjectName(fileName string, now time.Time) string {
	return fmt.Sprintf("reports/%s/%s-%s", now.Format("2006/01/02"), uuid.New().String()[:8], fileName)
}

// MinIOArchive 基于 MinIO 的报表归档
type MinIOArchive struct {
	client *minio.Client
	bucket string
}

func NewMinIOArchive(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOArchive, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}
	return &MinIOArchive{client: client, bucket: bucket}, nil
}

// EnsureBucket 桶不存在时创建
func (a *MinIOArchive) EnsureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("check bucket: %w", err)
	}
	if exists {
		return nil
	}
	return a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{})
}

func (a *MinIOArchive) Put(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload report: %w", err)
	}
	return nil
}

func (a *MinIOArchive) Location(objectName string) string {
	return a.bucket + "/" + objectName
}
