// Package storage 把生成的图片和视频转存到对象存储（MinIO），避免上游临时链接过期。
package storage

import (
	"context"
	"fmt"
	"net/http"
	"smart-chat-go/internal/config"
	"smart-chat-go/pkg/log"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MediaArchiver 下载上游媒体文件、写入存储桶并返回预签名链接。
type MediaArchiver struct {
	client     *minio.Client
	bucketName string
	expiry     time.Duration
	httpClient *http.Client
}

// InitMinIO 初始化 MinIO 客户端并确保指定的存储桶存在。
func InitMinIO(ctx context.Context, cfg config.MinIOConfig, httpClient *http.Client) (*MediaArchiver, error) {
	// 1. 初始化 MinIO 客户端
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 MinIO 客户端失败: %w", err)
	}
	log.Info("MinIO 客户端初始化成功")

	// 2. 检查存储桶 (Bucket) 是否存在，如果不存在则创建
	bucketName := cfg.BucketName
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return nil, fmt.Errorf("检查 MinIO 存储桶失败: %w", err)
	}
	if !exists {
		log.Infof("存储桶 '%s' 不存在，正在创建...", bucketName)
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("创建 MinIO 存储桶失败: %w", err)
		}
		log.Infof("存储桶 '%s' 创建成功", bucketName)
	} else {
		log.Infof("存储桶 '%s' 已存在", bucketName)
	}

	expiry := time.Duration(cfg.URLExpiryHours) * time.Hour
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &MediaArchiver{
		client:     client,
		bucketName: bucketName,
		expiry:     expiry,
		httpClient: httpClient,
	}, nil
}

// Archive 下载 sourceURL 的内容，以 objectName 存入存储桶，返回可直接访问的预签名 URL。
func (a *MediaArchiver) Archive(ctx context.Context, sourceURL, objectName string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download media: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("media download returned status %s", resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	// ContentLength 未知时为 -1，minio 会改用分片上传
	_, err = a.client.PutObject(ctx, a.bucketName, objectName, resp.Body, resp.ContentLength, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload media to MinIO: %w", err)
	}
	return a.PresignedURL(ctx, objectName)
}

// PresignedURL generates a presigned URL for a given object.
func (a *MediaArchiver) PresignedURL(ctx context.Context, objectName string) (string, error) {
	u, err := a.client.PresignedGetObject(ctx, a.bucketName, objectName, a.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return u.String(), nil
}
