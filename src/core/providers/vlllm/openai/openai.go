package openai

import (
	"context"
	"fmt"

	"object-recognition-server-go/src/core/image"
	"object-recognition-server-go/src/core/providers/vlllm"
	"object-recognition-server-go/src/core/utils"

	"github.com/sashabaranov/go-openai"
)

// Provider OpenAI兼容接口的VLLLM提供者
type Provider struct {
	*vlllm.Base
	client *openai.Client
}

// NewProvider 创建OpenAI VLLLM提供者实例
func NewProvider(config *vlllm.Config, logger *utils.Logger) (vlllm.Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Provider{
		Base:   vlllm.NewBase(config, logger),
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// ResponseWithImage 调用OpenAI Vision接口，同步返回完整回复文本
func (p *Provider) ResponseWithImage(ctx context.Context, prompt string, imageData image.ImageData) (string, error) {
	if _, err := p.PrepareImage(imageData); err != nil {
		return "", fmt.Errorf("%w: %v", vlllm.ErrUpstream, err)
	}

	// 构建包含图片的多模态消息
	visionMessage := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:image/%s;base64,%s", imageData.Format, imageData.Data),
				},
			},
		},
	}

	request := openai.ChatCompletionRequest{
		Model:       p.Config().ModelName,
		Messages:    []openai.ChatCompletionMessage{visionMessage},
		Temperature: float32(p.Config().Temperature),
		TopP:        float32(p.Config().TopP),
	}
	if p.Config().MaxTokens > 0 {
		request.MaxTokens = p.Config().MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	if err != nil {
		p.Logger().Error("OpenAI Vision API调用失败", map[string]interface{}{
			"model": p.Config().ModelName,
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", vlllm.ErrUpstream, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", vlllm.ErrUpstream)
	}

	return resp.Choices[0].Message.Content, nil
}

// Cleanup 清理资源
func (p *Provider) Cleanup() error {
	return nil
}

func init() {
	vlllm.Register("openai", NewProvider)
}
