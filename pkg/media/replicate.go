package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"smart-chat-go/internal/config"
)

// replicateClient 是 Replicate predictions API 的最小封装。
type replicateClient struct {
	cfg    config.ReplicateConfig
	client *http.Client
}

type replicatePrediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
}

// firstOutput 返回 output 的第一个 URL，兼容字符串与字符串数组两种形式。
func (p replicatePrediction) firstOutput() string {
	if len(p.Output) == 0 {
		return ""
	}
	var list []string
	if err := json.Unmarshal(p.Output, &list); err == nil {
		if len(list) > 0 {
			return list[0]
		}
		return ""
	}
	var single string
	if err := json.Unmarshal(p.Output, &single); err == nil {
		return single
	}
	return ""
}

func (c *replicateClient) headers(wait bool) map[string]string {
	h := map[string]string{"Authorization": "Token " + c.cfg.APIKey}
	if wait {
		h["Prefer"] = "wait"
	}
	return h
}

// createPrediction 创建一次预测。wait 为 true 时要求服务端同步等待结果。
func (c *replicateClient) createPrediction(ctx context.Context, version string, input map[string]interface{}, wait bool) (*replicatePrediction, error) {
	body := map[string]interface{}{
		"version": version,
		"input":   input,
	}
	var p replicatePrediction
	if err := doJSON(ctx, c.client, http.MethodPost, joinURL(c.cfg.BaseURL, "/predictions"), c.headers(wait), body, &p); err != nil {
		return nil, fmt.Errorf("Replicate API error: %w", err)
	}
	if p.Status == "failed" || p.Status == "canceled" {
		return nil, fmt.Errorf("Replicate prediction %s: %v", p.Status, p.Error)
	}
	return &p, nil
}

func (c *replicateClient) getPrediction(ctx context.Context, id string) (*replicatePrediction, error) {
	var p replicatePrediction
	if err := doJSON(ctx, c.client, http.MethodGet, joinURL(c.cfg.BaseURL, "/predictions/"+url.PathEscape(id)), c.headers(false), nil, &p); err != nil {
		return nil, fmt.Errorf("Replicate status check error: %w", err)
	}
	return &p, nil
}
