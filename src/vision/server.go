package vision

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"object-recognition-server-go/src/configs"
	"object-recognition-server-go/src/core/analyzer"
	"object-recognition-server-go/src/core/image"
	"object-recognition-server-go/src/core/providers/vlllm"
	"object-recognition-server-go/src/core/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// APIVersion 对外报告的服务版本号
	APIVersion = "1.0"

	statusMessage = "Object Recognition API is running"
)

// DefaultVisionService Vision 服务默认实现
type DefaultVisionService struct {
	logger      *utils.TaggedLogger
	config      *configs.Config
	modelConfig configs.VLLMConfig
	client      ModelClient
}

// NewDefaultVisionService 构造函数
func NewDefaultVisionService(config *configs.Config, logger *utils.Logger) (*DefaultVisionService, error) {
	service := &DefaultVisionService{
		logger: logger.WithTag("VISION"),
		config: config,
	}

	if err := service.initProvider(logger); err != nil {
		return nil, fmt.Errorf("初始化VLLLM provider失败: %v", err)
	}

	return service, nil
}

// initProvider 根据配置选择并创建VLLLM provider
func (s *DefaultVisionService) initProvider(logger *utils.Logger) error {
	selected := s.config.SelectedModule["VLLLM"]
	if selected == "" {
		return fmt.Errorf("请设置好VLLLM provider配置")
	}

	modelConfig, ok := s.config.VLLLM[selected]
	if !ok {
		return fmt.Errorf("找不到名为 %s 的VLLLM配置", selected)
	}

	provider, err := vlllm.Create(modelConfig.Type, &modelConfig, logger)
	if err != nil {
		return err
	}

	s.modelConfig = modelConfig
	s.client = provider
	s.logger.Info(fmt.Sprintf("VLLLM provider %s 初始化成功", selected))
	return nil
}

// Start 实现 VisionService 接口，注册所有路由
func (s *DefaultVisionService) Start(ctx context.Context, engine *gin.Engine, apiGroup *gin.RouterGroup) error {
	engine.GET("/", s.handleIndex)
	apiGroup.GET("/health", s.handleHealth)
	apiGroup.POST("/analyze", s.handleAnalyze)
	apiGroup.OPTIONS("/analyze", s.handleOptions)

	s.logger.Info("Vision HTTP服务路由注册完成")
	return nil
}

// handleIndex 根路径状态检查
func (s *DefaultVisionService) handleIndex(c *gin.Context) {
	s.addCORSHeaders(c)
	c.JSON(http.StatusOK, StatusResponse{
		Status:  "online",
		Message: statusMessage,
		Version: APIVersion,
	})
}

// handleHealth 健康检查，报告API密钥是否已配置
func (s *DefaultVisionService) handleHealth(c *gin.Context) {
	s.addCORSHeaders(c)
	c.JSON(http.StatusOK, HealthResponse{
		Status:        "healthy",
		APIConfigured: s.modelConfig.IsAPIKeyConfigured(),
		Model:         s.modelConfig.ModelName,
	})
}

// handleOptions 处理OPTIONS请求（CORS预检）
func (s *DefaultVisionService) handleOptions(c *gin.Context) {
	s.addCORSHeaders(c)
	c.Status(http.StatusOK)
}

// handleAnalyze 图片分析主接口
// 流程：校验请求 → 解码图片 → 构造指令 → 调用模型 → 规整结果
func (s *DefaultVisionService) handleAnalyze(c *gin.Context) {
	s.addCORSHeaders(c)

	requestID := uuid.NewString()

	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" || req.ObjectName == "" {
		s.respondError(c, http.StatusBadRequest, "Missing required fields: image and object_name")
		s.logger.Warn(fmt.Sprintf("[%s] 请求字段缺失", requestID))
		return
	}

	imageData, _, err := image.Decode(req.Image)
	if err != nil {
		switch {
		case errors.Is(err, image.ErrDecode):
			s.respondError(c, http.StatusBadRequest, "Invalid base64 image data")
		case errors.Is(err, image.ErrFormat):
			s.respondError(c, http.StatusBadRequest, "Invalid image format")
		default:
			s.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Server error: %v", err))
		}
		s.logger.Warn(fmt.Sprintf("[%s] 图片解码失败: %v", requestID, err))
		return
	}

	s.logger.Debug("收到图片分析请求", map[string]interface{}{
		"request_id":  requestID,
		"object_name": req.ObjectName,
		"format":      imageData.Format,
		"width":       imageData.Width,
		"height":      imageData.Height,
	})

	prompt := analyzer.BuildPrompt(req.ObjectName)

	rawText, err := s.client.ResponseWithImage(c.Request.Context(), prompt, imageData)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, fmt.Sprintf("Server error: %v", err))
		s.logger.Warn(fmt.Sprintf("[%s] 模型调用失败: %v", requestID, err))
		return
	}

	// 规整没有失败路径，解析不了的回复走关键词兜底
	result := analyzer.Normalize(rawText)

	s.logger.Info(fmt.Sprintf("[%s] 分析完成 found=%t confidence=%s", requestID, result.Found, result.Confidence))

	c.JSON(http.StatusOK, AnalyzeResponse{
		Success: true,
		Result:  &result,
	})
}

// addCORSHeaders 添加CORS头
func (s *DefaultVisionService) addCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Headers", "content-type, authorization")
	c.Header("Access-Control-Allow-Credentials", "true")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
}

// respondError 返回错误响应
func (s *DefaultVisionService) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, AnalyzeResponse{
		Success: false,
		Error:   message,
	})
}

// Cleanup 清理资源
func (s *DefaultVisionService) Cleanup() error {
	if s.client != nil {
		if err := s.client.Cleanup(); err != nil {
			s.logger.Warn(fmt.Sprintf("清理VLLLM provider失败: %v", err))
			return err
		}
	}
	s.logger.Info("Vision服务清理完成")
	return nil
}
