package vision

import (
	"context"

	"object-recognition-server-go/src/core/image"

	"github.com/gin-gonic/gin"
)

// VisionService 定义 Vision 服务接口
type VisionService interface {
	// 将 Vision 的路由注册到 engine 与 apiGroup
	Start(ctx context.Context, engine *gin.Engine, apiGroup *gin.RouterGroup) error
}

// ModelClient 上游视觉模型客户端，由 vlllm.Provider 实现
type ModelClient interface {
	ResponseWithImage(ctx context.Context, prompt string, imageData image.ImageData) (string, error)
	ModelName() string
	Cleanup() error
}
