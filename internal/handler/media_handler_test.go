package handler

import (
	"net/http"
	"testing"

	"smart-chat-go/pkg/media"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateImage(t *testing.T) {
	images := stubImages{result: media.ImageResult{Success: true, ImageURL: "https://img.example/a.png", Model: "DALL-E 3"}}
	s := newTestServer(t, &scriptedLLM{}, images, stubVideos{}, nil)

	w := s.do(t, http.MethodPost, "/api/generate-image", map[string]string{"prompt": "قطة", "size": "1792x1024"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"imageUrl":"https://img.example/a.png","model":"DALL-E 3"}`, w.Body.String())
}

func TestGenerateImage_FailureIsStructured(t *testing.T) {
	images := stubImages{result: media.ImageResult{Success: false, Error: "فشل في إنشاء الصورة", Model: "stable-diffusion"}}
	s := newTestServer(t, &scriptedLLM{}, images, stubVideos{}, nil)

	w := s.do(t, http.MethodPost, "/api/generate-image", map[string]string{"prompt": "x", "model": "stable-diffusion"})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[media.ImageResult](t, w)
	assert.False(t, res.Success)
	assert.Equal(t, "stable-diffusion", res.Model)
}

func TestGenerateImage_Validation(t *testing.T) {
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, stubVideos{}, nil)

	bodies := []interface{}{
		`{}`,
		map[string]string{"prompt": "   "},
		map[string]string{"prompt": "x", "model": "midjourney"},
		map[string]string{"prompt": "x", "size": "512x512"},
		map[string]string{"prompt": "x", "style": "noir"},
	}
	for _, body := range bodies {
		w := s.do(t, http.MethodPost, "/api/generate-image", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
	}
}

func TestGenerateVideo(t *testing.T) {
	videos := stubVideos{result: media.VideoResult{Success: true, JobID: "job-1", Model: "RunwayML Gen-4"}}
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, videos, nil)

	w := s.do(t, http.MethodPost, "/api/generate-video", `{"prompt":"sea","duration":6,"aspectRatio":"9:16"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"model":"RunwayML Gen-4","jobId":"job-1"}`, w.Body.String())
}

func TestGenerateVideo_Validation(t *testing.T) {
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, stubVideos{}, nil)

	bodies := []string{
		`{"prompt":"x","duration":1}`,
		`{"prompt":"x","duration":11}`,
		`{"prompt":"x","duration":0}`,
		`{"prompt":"x","aspectRatio":"4:3"}`,
		`{"prompt":"x","model":"sora"}`,
		`{"duration":4}`,
	}
	for _, body := range bodies {
		w := s.do(t, http.MethodPost, "/api/generate-video", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestVideoStatus(t *testing.T) {
	videos := stubVideos{status: media.VideoResult{Success: true, VideoURL: "https://v.example/done.mp4", Model: "Replicate Video"}}
	s := newTestServer(t, &scriptedLLM{}, stubImages{}, videos, nil)

	w := s.do(t, http.MethodGet, "/api/video-status/job-9?model=replicate-video", nil)
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[media.VideoResult](t, w)
	assert.True(t, res.Success)
	assert.Equal(t, "job-9", res.JobID)
	assert.Equal(t, "https://v.example/done.mp4", res.VideoURL)

	w = s.do(t, http.MethodGet, "/api/video-status/job-9?model=unknown", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
