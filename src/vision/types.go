package vision

import "object-recognition-server-go/src/core/analyzer"

// AnalyzeRequest 图片分析请求结构
type AnalyzeRequest struct {
	Image      string `json:"image"`       // base64编码的图片数据，允许带data URL前缀
	ObjectName string `json:"object_name"` // 要查找的目标物体名称
}

// AnalyzeResponse 图片分析标准响应结构
type AnalyzeResponse struct {
	Success bool                     `json:"success"`          // 是否成功
	Result  *analyzer.AnalysisResult `json:"result,omitempty"` // 分析结果（成功时）
	Error   string                   `json:"error,omitempty"`  // 错误信息（失败时）
}

// StatusResponse 根路径状态响应结构
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// HealthResponse 健康检查响应结构
type HealthResponse struct {
	Status        string `json:"status"`
	APIConfigured bool   `json:"api_configured"` // API密钥占位符是否已替换为真实值
	Model         string `json:"model"`
}
