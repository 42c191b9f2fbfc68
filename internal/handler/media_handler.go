package handler

import (
	"net/http"
	"smart-chat-go/internal/service"
	"smart-chat-go/pkg/media"
	"strings"

	"github.com/gin-gonic/gin"
)

// MediaHandler 处理图像与视频生成相关的 API 请求。
type MediaHandler struct {
	service service.MediaService
}

// NewMediaHandler 创建一个新的 MediaHandler。
func NewMediaHandler(service service.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

type generateImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
	Model  string `json:"model" binding:"omitempty,oneof=dall-e-3 stable-diffusion"`
	Size   string `json:"size" binding:"omitempty,oneof=1024x1024 1024x1792 1792x1024"`
	Style  string `json:"style" binding:"omitempty,oneof=natural vivid"`
}

type generateVideoRequest struct {
	Prompt      string `json:"prompt" binding:"required"`
	Model       string `json:"model" binding:"omitempty,oneof=runway-gen4 replicate-video"`
	Duration    *int   `json:"duration" binding:"omitempty,min=2,max=10"`
	AspectRatio string `json:"aspectRatio" binding:"omitempty,oneof=16:9 9:16 1:1"`
}

// GenerateImage 生成图像。上游失败时仍返回 200，结果中 success=false。
func (h *MediaHandler) GenerateImage(c *gin.Context) {
	var req generateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		abortWithMessage(c, http.StatusBadRequest, "Invalid image generation request")
		return
	}
	res := h.service.GenerateImage(c.Request.Context(), media.ImageRequest{
		Prompt: req.Prompt,
		Model:  req.Model,
		Size:   req.Size,
		Style:  req.Style,
	})
	c.JSON(http.StatusOK, res)
}

// GenerateVideo 提交视频生成任务。
func (h *MediaHandler) GenerateVideo(c *gin.Context) {
	var req generateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		abortWithMessage(c, http.StatusBadRequest, "Invalid video generation request")
		return
	}
	vr := media.VideoRequest{
		Prompt:      req.Prompt,
		Model:       req.Model,
		AspectRatio: req.AspectRatio,
	}
	if req.Duration != nil {
		vr.Duration = *req.Duration
	}
	c.JSON(http.StatusOK, h.service.GenerateVideo(c.Request.Context(), vr))
}

// VideoStatus 查询异步视频任务状态，model 查询参数缺省为 runway-gen4。
func (h *MediaHandler) VideoStatus(c *gin.Context) {
	model := c.DefaultQuery("model", media.VideoModelRunway)
	if model != media.VideoModelRunway && model != media.VideoModelReplicate {
		abortWithMessage(c, http.StatusBadRequest, "Unknown video model")
		return
	}
	c.JSON(http.StatusOK, h.service.CheckVideoStatus(c.Request.Context(), c.Param("jobId"), model))
}
