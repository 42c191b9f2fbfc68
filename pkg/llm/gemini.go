package llm

import (
	"context"
	"fmt"
	"smart-chat-go/internal/config"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

type geminiClient struct {
	client    *genai.Client
	modelName string
	cfg       config.LLMConfig
}

// NewGeminiClient 创建一个基于 Gemini 的客户端。
func NewGeminiClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	name := cfg.Model
	if name == "" || strings.HasPrefix(name, "gpt-") {
		name = defaultGeminiModel
	}
	return &geminiClient{client: client, modelName: name, cfg: cfg}, nil
}

// ChatMessages 把 system 消息作为 SystemInstruction，其余消息作为对话历史，最后一条发送给模型。
func (c *geminiClient) ChatMessages(ctx context.Context, messages []Message, gen *GenerationParams) (string, error) {
	system, history, last, err := splitForGemini(messages)
	if err != nil {
		return "", err
	}

	// 每次调用创建独立的 model，避免并发请求互相覆盖 SystemInstruction
	model := c.client.GenerativeModel(c.modelName)
	if gen == nil {
		gen = ParamsFromConfig(c.cfg.Generation)
	}
	if gen != nil {
		if gen.Temperature != nil {
			model.SetTemperature(float32(*gen.Temperature))
		}
		if gen.TopP != nil {
			model.SetTopP(float32(*gen.TopP))
		}
		if gen.MaxTokens != nil {
			model.SetMaxOutputTokens(int32(*gen.MaxTokens))
		}
	}
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	cs := model.StartChat()
	cs.History = history
	resp, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func splitForGemini(messages []Message) (string, []*genai.Content, string, error) {
	var systemParts []string
	var turns []Message
	for _, m := range messages {
		if m.Role == "system" {
			systemParts = append(systemParts, m.Content)
			continue
		}
		turns = append(turns, m)
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return "", nil, "", fmt.Errorf("gemini chat requires a trailing user message")
	}

	history := make([]*genai.Content, 0, len(turns)-1)
	for _, m := range turns[:len(turns)-1] {
		history = append(history, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	return strings.Join(systemParts, "\n\n"), history, turns[len(turns)-1].Content, nil
}

func geminiRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
