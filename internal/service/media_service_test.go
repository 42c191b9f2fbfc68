package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"smart-chat-go/pkg/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct {
	result media.ImageResult
	reqs   []media.ImageRequest
}

func (f *fakeImages) GenerateImage(_ context.Context, req media.ImageRequest) media.ImageResult {
	f.reqs = append(f.reqs, req)
	return f.result
}

type fakeVideos struct {
	result      media.VideoResult
	status      media.VideoResult
	statusCalls int
	reqs        []media.VideoRequest
}

func (f *fakeVideos) GenerateVideo(_ context.Context, req media.VideoRequest) media.VideoResult {
	f.reqs = append(f.reqs, req)
	return f.result
}

func (f *fakeVideos) CheckVideoStatus(_ context.Context, jobID, model string) media.VideoResult {
	f.statusCalls++
	res := f.status
	res.JobID = jobID
	return res
}

type fakeArchiver struct {
	err     error
	objects []string
}

func (f *fakeArchiver) Archive(_ context.Context, sourceURL, objectName string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.objects = append(f.objects, objectName)
	return "https://minio.local/" + objectName, nil
}

func TestMediaService_ArchivesSuccessfulImage(t *testing.T) {
	images := &fakeImages{result: media.ImageResult{Success: true, ImageURL: "https://up.example/a.png?sig=1", Model: "DALL-E 3"}}
	archiver := &fakeArchiver{}
	svc := NewMediaService(images, &fakeVideos{}, archiver, time.Minute)

	res := svc.GenerateImage(context.Background(), media.ImageRequest{Prompt: "cat"})
	assert.True(t, res.Success)
	require.Len(t, archiver.objects, 1)
	assert.True(t, strings.HasPrefix(archiver.objects[0], "images/"))
	assert.True(t, strings.HasSuffix(archiver.objects[0], ".png"))
	assert.Equal(t, "https://minio.local/"+archiver.objects[0], res.ImageURL)
}

func TestMediaService_ArchiveFailureKeepsUpstreamURL(t *testing.T) {
	images := &fakeImages{result: media.ImageResult{Success: true, ImageURL: "https://up.example/a.png"}}
	svc := NewMediaService(images, &fakeVideos{}, &fakeArchiver{err: errors.New("minio down")}, time.Minute)

	res := svc.GenerateImage(context.Background(), media.ImageRequest{Prompt: "cat"})
	assert.Equal(t, "https://up.example/a.png", res.ImageURL)
}

func TestMediaService_NoArchiverAndFailedResultsPassThrough(t *testing.T) {
	images := &fakeImages{result: media.ImageResult{Success: false, Error: "boom", Model: "dall-e-3"}}
	videos := &fakeVideos{result: media.VideoResult{Success: true, JobID: "job-1", Model: "Replicate Video"}}
	svc := NewMediaService(images, videos, nil, time.Minute)

	img := svc.GenerateImage(context.Background(), media.ImageRequest{Prompt: "x"})
	assert.False(t, img.Success)
	assert.Equal(t, "boom", img.Error)

	vid := svc.GenerateVideo(context.Background(), media.VideoRequest{Prompt: "x"})
	assert.Equal(t, "job-1", vid.JobID)
	assert.Empty(t, vid.VideoURL)
}

func TestMediaService_CachesCompletedVideoStatus(t *testing.T) {
	videos := &fakeVideos{status: media.VideoResult{Success: true, VideoURL: "https://up.example/v.mp4", Model: "RunwayML Gen-4"}}
	svc := NewMediaService(&fakeImages{}, videos, nil, time.Minute)
	ctx := context.Background()

	first := svc.CheckVideoStatus(ctx, "job-1", "")
	second := svc.CheckVideoStatus(ctx, "job-1", media.VideoModelRunway)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, videos.statusCalls)

	// 不同模型下同名任务不共享缓存
	_ = svc.CheckVideoStatus(ctx, "job-1", media.VideoModelReplicate)
	assert.Equal(t, 2, videos.statusCalls)
}

func TestMediaService_DoesNotCachePendingVideoStatus(t *testing.T) {
	videos := &fakeVideos{status: media.VideoResult{Success: false, Model: "RunwayML Gen-4"}}
	svc := NewMediaService(&fakeImages{}, videos, nil, time.Minute)

	svc.CheckVideoStatus(context.Background(), "job-2", media.VideoModelRunway)
	svc.CheckVideoStatus(context.Background(), "job-2", media.VideoModelRunway)
	assert.Equal(t, 2, videos.statusCalls)
}

func TestExtensionOf(t *testing.T) {
	assert.Equal(t, ".png", extensionOf("https://x/y/a.png?sig=abc"))
	assert.Equal(t, ".mp4", extensionOf("https://x/v.mp4#t=1"))
	assert.Equal(t, "", extensionOf("https://x/no-ext"))
}
