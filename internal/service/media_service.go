package service

import (
	"context"
	"fmt"
	"path"
	"smart-chat-go/pkg/log"
	"smart-chat-go/pkg/media"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MediaArchiver 把上游媒体链接转存并返回新的链接。
type MediaArchiver interface {
	Archive(ctx context.Context, sourceURL, objectName string) (string, error)
}

// MediaService 在媒体客户端之上提供转存与视频状态缓存。
type MediaService interface {
	GenerateImage(ctx context.Context, req media.ImageRequest) media.ImageResult
	GenerateVideo(ctx context.Context, req media.VideoRequest) media.VideoResult
	CheckVideoStatus(ctx context.Context, jobID, model string) media.VideoResult
}

type mediaService struct {
	images      media.ImageGenerator
	videos      media.VideoGenerator
	archiver    MediaArchiver // 为 nil 时不转存
	statusCache *cache.Cache
}

// NewMediaService 创建一个新的 MediaService。statusTTL 控制已完成视频任务结果的缓存时间。
func NewMediaService(images media.ImageGenerator, videos media.VideoGenerator, archiver MediaArchiver, statusTTL time.Duration) MediaService {
	if statusTTL <= 0 {
		statusTTL = time.Hour
	}
	return &mediaService{
		images:      images,
		videos:      videos,
		archiver:    archiver,
		statusCache: cache.New(statusTTL, 2*statusTTL),
	}
}

func (s *mediaService) GenerateImage(ctx context.Context, req media.ImageRequest) media.ImageResult {
	res := s.images.GenerateImage(ctx, req)
	if res.Success && res.ImageURL != "" {
		res.ImageURL = s.archive(ctx, res.ImageURL, "images")
	}
	return res
}

func (s *mediaService) GenerateVideo(ctx context.Context, req media.VideoRequest) media.VideoResult {
	res := s.videos.GenerateVideo(ctx, req)
	if res.Success && res.VideoURL != "" {
		res.VideoURL = s.archive(ctx, res.VideoURL, "videos")
	}
	return res
}

// CheckVideoStatus 轮询一次后端；已完成的结果按 (model, jobId) 缓存，重复查询不再访问后端。
func (s *mediaService) CheckVideoStatus(ctx context.Context, jobID, model string) media.VideoResult {
	if model == "" {
		model = media.VideoModelRunway
	}
	key := model + ":" + jobID
	if cached, ok := s.statusCache.Get(key); ok {
		return cached.(media.VideoResult)
	}

	res := s.videos.CheckVideoStatus(ctx, jobID, model)
	if res.Success {
		if res.VideoURL != "" {
			res.VideoURL = s.archive(ctx, res.VideoURL, "videos")
		}
		s.statusCache.SetDefault(key, res)
	}
	return res
}

// archive 转存失败时保留原链接。
func (s *mediaService) archive(ctx context.Context, sourceURL, prefix string) string {
	if s.archiver == nil {
		return sourceURL
	}
	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), extensionOf(sourceURL))
	archived, err := s.archiver.Archive(ctx, sourceURL, objectName)
	if err != nil {
		log.Warnw("媒体转存失败，保留原始链接", "url", sourceURL, "error", err)
		return sourceURL
	}
	return archived
}

func extensionOf(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	ext := path.Ext(rawURL)
	if len(ext) > 5 {
		return ""
	}
	return ext
}
