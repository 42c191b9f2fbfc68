package media

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"smart-chat-go/internal/config"
	"smart-chat-go/pkg/log"
)

// VideoClient 根据模型把请求分发到 Runway 或 Replicate。
type VideoClient struct {
	cfg       config.VideoConfig
	client    *http.Client
	replicate *replicateClient
}

// NewVideoClient 创建一个新的 VideoClient。
func NewVideoClient(videoCfg config.VideoConfig, replicateCfg config.ReplicateConfig, httpClient *http.Client) *VideoClient {
	return &VideoClient{
		cfg:       videoCfg,
		client:    httpClient,
		replicate: &replicateClient{cfg: replicateCfg, client: httpClient},
	}
}

// GenerateVideo 提交视频生成任务。Runway 可能直接返回 URL；Replicate 总是返回任务 ID。
func (c *VideoClient) GenerateVideo(ctx context.Context, req VideoRequest) VideoResult {
	req = ApplyVideoDefaults(req)

	var (
		res VideoResult
		err error
	)
	switch req.Model {
	case VideoModelRunway:
		res, err = c.generateWithRunway(ctx, req)
	case VideoModelReplicate:
		res, err = c.generateWithReplicate(ctx, req)
	default:
		err = fmt.Errorf("unsupported video model %q", req.Model)
	}
	if err != nil {
		log.Errorf("[VideoClient] 视频生成失败, model: %s, error: %v", req.Model, err)
		return VideoResult{Success: false, Error: errorText(err, errVideoFailed), Model: req.Model}
	}
	return res
}

// CheckVideoStatus 查询一次任务状态，仅当后端报告完成时 Success 为 true。
func (c *VideoClient) CheckVideoStatus(ctx context.Context, jobID, model string) VideoResult {
	var (
		res VideoResult
		err error
	)
	switch model {
	case VideoModelReplicate:
		res, err = c.checkReplicateStatus(ctx, jobID)
	default:
		res, err = c.checkRunwayStatus(ctx, jobID)
	}
	if err != nil {
		log.Warnf("[VideoClient] 查询视频状态失败, jobId: %s, error: %v", jobID, err)
		return VideoResult{Success: false, Error: errorText(err, errVideoStatusFailed), Model: model, JobID: jobID}
	}
	return res
}

type runwayRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Duration       int    `json:"duration"`
	AspectRatio    string `json:"aspect_ratio"`
	MotionStrength string `json:"motion_strength"`
}

type runwayResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Output *struct {
		URL string `json:"url"`
	} `json:"output"`
}

func (r runwayResponse) url() string {
	if r.Output == nil {
		return ""
	}
	return r.Output.URL
}

func (c *VideoClient) runwayHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.cfg.RunwayAPIKey}
}

func (c *VideoClient) generateWithRunway(ctx context.Context, req VideoRequest) (VideoResult, error) {
	body := runwayRequest{
		Model:          c.cfg.RunwayModel,
		Prompt:         "Create a high-quality video: " + req.Prompt,
		Duration:       req.Duration,
		AspectRatio:    req.AspectRatio,
		MotionStrength: "medium",
	}
	var out runwayResponse
	if err := doJSON(ctx, c.client, http.MethodPost, joinURL(c.cfg.RunwayBaseURL, "/generate"), c.runwayHeaders(), body, &out); err != nil {
		return VideoResult{}, fmt.Errorf("Runway API error: %w", err)
	}
	if out.Status == "processing" {
		return VideoResult{Success: true, Model: displayRunway, JobID: out.ID}, nil
	}
	return VideoResult{Success: true, VideoURL: out.url(), Model: displayRunway}, nil
}

func (c *VideoClient) generateWithReplicate(ctx context.Context, req VideoRequest) (VideoResult, error) {
	input := map[string]interface{}{
		"prompt":     req.Prompt + ", high quality, cinematic, detailed",
		"fps":        24,
		"width":      1024,
		"height":     576,
		"num_frames": req.Duration * 24,
	}
	p, err := c.replicate.createPrediction(ctx, c.replicate.cfg.VideoVersion, input, false)
	if err != nil {
		return VideoResult{}, err
	}
	return VideoResult{Success: true, Model: displayReplicateVideo, JobID: p.ID}, nil
}

func (c *VideoClient) checkRunwayStatus(ctx context.Context, jobID string) (VideoResult, error) {
	var out runwayResponse
	if err := doJSON(ctx, c.client, http.MethodGet, joinURL(c.cfg.RunwayBaseURL, "/generate/"+url.PathEscape(jobID)), c.runwayHeaders(), nil, &out); err != nil {
		return VideoResult{}, fmt.Errorf("Runway status check error: %w", err)
	}
	return VideoResult{
		Success:  out.Status == "completed",
		VideoURL: out.url(),
		Model:    displayRunway,
		JobID:    jobID,
	}, nil
}

func (c *VideoClient) checkReplicateStatus(ctx context.Context, jobID string) (VideoResult, error) {
	p, err := c.replicate.getPrediction(ctx, jobID)
	if err != nil {
		return VideoResult{}, err
	}
	return VideoResult{
		Success:  p.Status == "succeeded",
		VideoURL: p.firstOutput(),
		Model:    displayReplicateVideo,
		JobID:    jobID,
	}, nil
}

func errorText(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
