package vlllm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"object-recognition-server-go/src/configs"
	"object-recognition-server-go/src/core/image"
	"object-recognition-server-go/src/core/utils"
)

// ErrUpstream 上游模型调用失败，不再细分子类型
var ErrUpstream = errors.New("upstream model call failed")

// Config VLLLM配置结构
// API密钥在构造时随配置传入，不使用进程级全局变量
type Config struct {
	Type        string
	ModelName   string
	BaseURL     string
	APIKey      string
	Temperature float64
	MaxTokens   int
	TopP        float64
	Security    configs.SecurityConfig
}

// Provider 视觉语言模型提供者接口
// ResponseWithImage为同步阻塞调用，不配置重试
type Provider interface {
	// ResponseWithImage 将指令与图片发给上游模型，返回原始文本回复
	ResponseWithImage(ctx context.Context, prompt string, imageData image.ImageData) (string, error)
	// ModelName 当前使用的模型名称
	ModelName() string
	// Cleanup 清理资源
	Cleanup() error
}

// Base 各Provider共享的基础结构：配置、图片安全验证、日志
type Base struct {
	config    *Config
	validator *image.SecurityValidator
	logger    *utils.TaggedLogger
}

// NewBase 创建Provider基础结构
func NewBase(config *Config, logger *utils.Logger) *Base {
	return &Base{
		config:    config,
		validator: image.NewSecurityValidator(&config.Security, logger),
		logger:    logger.WithTag("VLLLM"),
	}
}

// Config 获取配置信息
func (b *Base) Config() *Config {
	return b.config
}

// Logger 获取带标签的日志记录器
func (b *Base) Logger() *utils.TaggedLogger {
	return b.logger
}

// ModelName 当前使用的模型名称
func (b *Base) ModelName() string {
	return b.config.ModelName
}

// PrepareImage 解码base64图片并执行安全验证，返回原始字节
func (b *Base) PrepareImage(imageData image.ImageData) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(imageData.Data)
	if err != nil {
		return nil, fmt.Errorf("图片base64解码失败: %v", err)
	}

	result := b.validator.Validate(raw, imageData.Format)
	if !result.IsValid {
		return nil, fmt.Errorf("图片安全验证失败: %v", result.Error)
	}

	return raw, nil
}

// Factory VLLLM工厂函数类型
type Factory func(config *Config, logger *utils.Logger) (Provider, error)

var factories = make(map[string]Factory)

// Register 注册VLLLM提供者工厂
func Register(name string, factory Factory) {
	factories[name] = factory
}

// Create 创建VLLLM提供者实例
func Create(name string, vlllmConfig *configs.VLLMConfig, logger *utils.Logger) (Provider, error) {
	factory, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("未知的VLLLM提供者: %s", name)
	}

	// 转换配置格式
	config := &Config{
		Type:        vlllmConfig.Type,
		ModelName:   vlllmConfig.ModelName,
		BaseURL:     vlllmConfig.BaseURL,
		APIKey:      vlllmConfig.APIKey,
		Temperature: vlllmConfig.Temperature,
		MaxTokens:   vlllmConfig.MaxTokens,
		TopP:        vlllmConfig.TopP,
		Security:    vlllmConfig.Security,
	}

	provider, err := factory(config, logger)
	if err != nil {
		return nil, fmt.Errorf("创建VLLLM提供者失败: %v", err)
	}

	logger.Debug("VLLLM提供者创建成功", map[string]interface{}{
		"name":       name,
		"type":       config.Type,
		"model_name": config.ModelName,
	})

	return provider, nil
}

// GetRegisteredProviders 获取已注册的提供者列表
func GetRegisteredProviders() []string {
	var providers []string
	for name := range factories {
		providers = append(providers, name)
	}
	return providers
}
