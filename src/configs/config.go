package configs

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PlaceholderAPIKey 配置文件中的API密钥占位符，未替换时视为未配置
const PlaceholderAPIKey = "Your-API-Key"

// Config 主配置结构
type Config struct {
	Server struct {
		IP   string `yaml:"ip"`
		Port int    `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		LogLevel string `yaml:"log_level"`
		LogDir   string `yaml:"log_dir"`
		LogFile  string `yaml:"log_file"`
	} `yaml:"log"`

	SelectedModule map[string]string `yaml:"selected_module"`

	VLLLM map[string]VLLMConfig `yaml:"VLLLM"`
}

// SecurityConfig 图片安全配置结构
type SecurityConfig struct {
	MaxFileSize    int64    `yaml:"max_file_size"`    // 最大文件大小（字节）
	MaxPixels      int64    `yaml:"max_pixels"`       // 最大像素数量
	MaxWidth       int      `yaml:"max_width"`        // 最大宽度
	MaxHeight      int      `yaml:"max_height"`       // 最大高度
	AllowedFormats []string `yaml:"allowed_formats"`  // 允许的图片格式
	EnableDeepScan bool     `yaml:"enable_deep_scan"` // 启用深度安全扫描
}

// VLLMConfig VLLLM配置结构（视觉语言大模型）
type VLLMConfig struct {
	Type        string         `yaml:"type"`        // API类型：gemini / openai
	ModelName   string         `yaml:"model_name"`  // 模型名称，使用支持视觉的模型
	BaseURL     string         `yaml:"url"`         // API地址（openai类型可选）
	APIKey      string         `yaml:"api_key"`     // API密钥
	Temperature float64        `yaml:"temperature"` // 温度参数
	MaxTokens   int            `yaml:"max_tokens"`  // 最大令牌数
	TopP        float64        `yaml:"top_p"`       // TopP参数
	Security    SecurityConfig `yaml:"security"`    // 图片安全配置
}

// IsAPIKeyConfigured 判断API密钥是否已替换为真实值
func (c *VLLMConfig) IsAPIKeyConfigured() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// LoadConfig 从文件加载配置
func LoadConfig() (*Config, string, error) {
	path := ".config.yaml"
	if _, err := os.Stat(path); os.IsNotExist(err) {
		path = "config.yaml"
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, err
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, path, err
	}

	config.applyEnvOverrides()

	return config, path, nil
}

// applyEnvOverrides 配置文件中未填写API密钥时，按类型回退到环境变量
func (c *Config) applyEnvOverrides() {
	for name, vlllm := range c.VLLLM {
		if vlllm.IsAPIKeyConfigured() {
			continue
		}
		var envKey string
		switch strings.ToLower(vlllm.Type) {
		case "gemini":
			envKey = "GEMINI_API_KEY"
		case "openai":
			envKey = "OPENAI_API_KEY"
		default:
			continue
		}
		if v := os.Getenv(envKey); v != "" {
			vlllm.APIKey = v
			c.VLLLM[name] = vlllm
		}
	}
}
