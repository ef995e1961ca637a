package gemini

import (
	"context"
	"fmt"

	"object-recognition-server-go/src/core/image"
	"object-recognition-server-go/src/core/providers/vlllm"
	"object-recognition-server-go/src/core/utils"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Provider Google Gemini类型的VLLLM提供者
type Provider struct {
	*vlllm.Base
	client *genai.Client
}

// NewProvider 创建Gemini VLLLM提供者实例
func NewProvider(config *vlllm.Config, logger *utils.Logger) (vlllm.Provider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("创建Gemini客户端失败: %v", err)
	}

	return &Provider{
		Base:   vlllm.NewBase(config, logger),
		client: client,
	}, nil
}

// ResponseWithImage 调用Gemini多模态接口，同步返回完整回复文本
func (p *Provider) ResponseWithImage(ctx context.Context, prompt string, imageData image.ImageData) (string, error) {
	raw, err := p.PrepareImage(imageData)
	if err != nil {
		return "", fmt.Errorf("%w: %v", vlllm.ErrUpstream, err)
	}

	m := p.client.GenerativeModel(p.Config().ModelName)
	if p.Config().Temperature > 0 {
		m.GenerationConfig.Temperature = ptrFloat32(float32(p.Config().Temperature))
	}
	if p.Config().TopP > 0 {
		m.GenerationConfig.TopP = ptrFloat32(float32(p.Config().TopP))
	}
	if p.Config().MaxTokens > 0 {
		m.GenerationConfig.MaxOutputTokens = ptrInt32(int32(p.Config().MaxTokens))
	}

	parts := []genai.Part{
		genai.Text(prompt),
		&genai.Blob{MIMEType: "image/" + imageData.Format, Data: raw},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		p.Logger().Error("Gemini API调用失败", map[string]interface{}{
			"model": p.Config().ModelName,
			"error": err.Error(),
		})
		return "", fmt.Errorf("%w: %v", vlllm.ErrUpstream, err)
	}

	text := firstText(resp)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", vlllm.ErrUpstream)
	}

	return text, nil
}

// Cleanup 清理资源
func (p *Provider) Cleanup() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

// firstText 取第一个候选回复中的首个文本片段
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }

func init() {
	vlllm.Register("gemini", NewProvider)
}
