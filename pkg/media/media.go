// Package media 封装图像与视频生成服务（OpenAI DALL-E、Replicate、Runway）的 HTTP 调用。
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// 图像模型与参数取值
const (
	ImageModelDallE           = "dall-e-3"
	ImageModelStableDiffusion = "stable-diffusion"

	ImageSizeSquare    = "1024x1024"
	ImageSizePortrait  = "1024x1792"
	ImageSizeLandscape = "1792x1024"

	ImageStyleVivid   = "vivid"
	ImageStyleNatural = "natural"
)

// 视频模型与参数取值
const (
	VideoModelRunway    = "runway-gen4"
	VideoModelReplicate = "replicate-video"

	AspectRatioWide     = "16:9"
	AspectRatioTall     = "9:16"
	AspectRatioSquare   = "1:1"
	DefaultVideoSeconds = 4
	MinVideoSeconds     = 2
	MaxVideoSeconds     = 10
)

// 返回给调用方的模型展示名
const (
	displayDallE           = "DALL-E 3"
	displayStableDiffusion = "Stable Diffusion"
	displayRunway          = "RunwayML Gen-4"
	displayReplicateVideo  = "Replicate Video"
)

const (
	errImageFailed       = "فشل في إنشاء الصورة"
	errVideoFailed       = "فشل في إنشاء الفيديو"
	errVideoStatusFailed = "فشل في التحقق من حالة الفيديو"
)

// ImageRequest 描述一次图像生成请求，空字段使用默认值。
type ImageRequest struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
	Size   string `json:"size,omitempty"`
	Style  string `json:"style,omitempty"`
}

// ImageResult 是图像生成结果。失败时 Success 为 false 且 Error 非空。
type ImageResult struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
	Model    string `json:"model"`
}

// VideoRequest 描述一次视频生成请求，Duration 为 0 时使用默认时长。
type VideoRequest struct {
	Prompt      string `json:"prompt"`
	Model       string `json:"model,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	AspectRatio string `json:"aspectRatio,omitempty"`
}

// VideoResult 是视频生成或状态查询结果。异步任务仅返回 JobID。
type VideoResult struct {
	Success  bool   `json:"success"`
	VideoURL string `json:"videoUrl,omitempty"`
	Error    string `json:"error,omitempty"`
	Model    string `json:"model"`
	JobID    string `json:"jobId,omitempty"`
}

// ImageGenerator 生成图像，从不返回 error，失败体现在结果中。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) ImageResult
}

// VideoGenerator 生成视频并查询异步任务状态。
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, req VideoRequest) VideoResult
	CheckVideoStatus(ctx context.Context, jobID, model string) VideoResult
}

// ApplyImageDefaults 填充缺省的模型、尺寸与风格。
func ApplyImageDefaults(req ImageRequest) ImageRequest {
	if req.Model == "" {
		req.Model = ImageModelDallE
	}
	if req.Size == "" {
		req.Size = ImageSizeSquare
	}
	if req.Style == "" {
		req.Style = ImageStyleVivid
	}
	return req
}

// ApplyVideoDefaults 填充缺省的模型、时长与画面比例。
func ApplyVideoDefaults(req VideoRequest) VideoRequest {
	if req.Model == "" {
		req.Model = VideoModelRunway
	}
	if req.Duration == 0 {
		req.Duration = DefaultVideoSeconds
	}
	if req.AspectRatio == "" {
		req.AspectRatio = AspectRatioWide
	}
	return req
}

// doJSON 发送 JSON 请求并把 2xx 响应解码到 out。
func doJSON(ctx context.Context, client *http.Client, method, url string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("non-2xx status: %s, body: %s", resp.Status, strings.TrimSpace(string(bodyBytes)))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
