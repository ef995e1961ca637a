package image

import "errors"

// ErrDecode base64解码失败
var ErrDecode = errors.New("invalid base64 image data")

// ErrFormat 字节流不是可加载的图片
var ErrFormat = errors.New("invalid image format")

// ImageData 图片数据结构
type ImageData struct {
	Data   string `json:"data,omitempty"`   // 图片数据，已规整为标准base64（无data URL前缀）
	Format string `json:"format,omitempty"` // 图片格式：jpeg, png, gif, bmp, webp
	Width  int    `json:"width,omitempty"`  // 图片宽度（解码后填充）
	Height int    `json:"height,omitempty"` // 图片高度（解码后填充）
}

// ValidationResult 图片验证结果
type ValidationResult struct {
	IsValid      bool   // 是否有效
	Format       string // 实际格式
	Width        int    // 图片宽度
	Height       int    // 图片高度
	FileSize     int64  // 文件大小
	Error        error  // 错误信息
	SecurityRisk string // 安全风险描述
}
