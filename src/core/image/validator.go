package image

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"object-recognition-server-go/src/configs"
	"object-recognition-server-go/src/core/utils"
)

// SecurityValidator 图片安全验证器
type SecurityValidator struct {
	config *configs.SecurityConfig
	logger *utils.TaggedLogger
}

// NewSecurityValidator 创建新的图片安全验证器
func NewSecurityValidator(config *configs.SecurityConfig, logger *utils.Logger) *SecurityValidator {
	return &SecurityValidator{
		config: config,
		logger: logger.WithTag("IMAGE"),
	}
}

// Validate 验证图片字节流：大小限制、格式白名单、恶意内容、尺寸限制
func (v *SecurityValidator) Validate(data []byte, declaredFormat string) ValidationResult {
	result := ValidationResult{IsValid: false, Format: declaredFormat}

	// 1. 基础大小检查
	if v.config.MaxFileSize > 0 && int64(len(data)) > v.config.MaxFileSize {
		result.Error = fmt.Errorf("文件大小超限: %d bytes，最大允许: %d bytes", len(data), v.config.MaxFileSize)
		result.SecurityRisk = "文件过大"
		v.logger.Warn("检测到超大文件", map[string]interface{}{
			"size":     len(data),
			"max_size": v.config.MaxFileSize,
			"format":   declaredFormat,
		})
		return result
	}

	// 2. 格式白名单检查
	if declaredFormat != "" && !v.isFormatAllowed(declaredFormat) {
		result.Error = fmt.Errorf("不支持的格式: %s", declaredFormat)
		result.SecurityRisk = "使用了不被允许的格式"
		return result
	}

	// 3. 恶意内容检测
	if v.config.EnableDeepScan && v.scanForMaliciousContent(data) {
		result.Error = fmt.Errorf("检测到潜在恶意内容")
		result.SecurityRisk = "可能包含恶意载荷"
		return result
	}

	// 4. 解码验证与尺寸限制
	config, actualFormat, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		result.Error = fmt.Errorf("图片解码失败: %v", err)
		result.SecurityRisk = "可能包含恶意载荷或损坏的图片数据"
		return result
	}
	if actualFormat != "" {
		result.Format = actualFormat
	}

	if v.config.MaxWidth > 0 && v.config.MaxHeight > 0 &&
		(config.Width > v.config.MaxWidth || config.Height > v.config.MaxHeight) {
		result.Error = fmt.Errorf("图片尺寸超限: %dx%d，最大允许: %dx%d",
			config.Width, config.Height, v.config.MaxWidth, v.config.MaxHeight)
		result.SecurityRisk = "图片过大，可能消耗过多资源"
		return result
	}

	totalPixels := int64(config.Width) * int64(config.Height)
	if v.config.MaxPixels > 0 && totalPixels > v.config.MaxPixels {
		result.Error = fmt.Errorf("像素总数超限: %d，最大允许: %d", totalPixels, v.config.MaxPixels)
		result.SecurityRisk = "像素过多，可能导致内存耗尽"
		return result
	}

	result.IsValid = true
	result.Width = config.Width
	result.Height = config.Height
	result.FileSize = int64(len(data))

	v.logger.Debug("图片验证成功", map[string]interface{}{
		"format": result.Format,
		"width":  result.Width,
		"height": result.Height,
		"size":   result.FileSize,
	})

	return result
}

// isFormatAllowed 检查格式是否在白名单中，白名单为空时全部允许
func (v *SecurityValidator) isFormatAllowed(format string) bool {
	if len(v.config.AllowedFormats) == 0 {
		return true
	}
	formatLower := strings.ToLower(format)
	for _, allowed := range v.config.AllowedFormats {
		if strings.ToLower(allowed) == formatLower {
			return true
		}
	}
	return false
}

// scanForMaliciousContent 扫描明显的恶意载荷：文件开头的可执行文件签名、SVG中的脚本
func (v *SecurityValidator) scanForMaliciousContent(data []byte) bool {
	executableSignatures := [][]byte{
		{0x4D, 0x5A},             // PE文件头 (MZ)
		{0x7F, 0x45, 0x4C, 0x46}, // ELF文件头
		{0xCA, 0xFE, 0xBA, 0xBE}, // Mach-O文件头
	}
	signatureNames := []string{"PE", "ELF", "Mach-O"}

	for i, signature := range executableSignatures {
		if bytes.HasPrefix(data, signature) {
			v.logger.Warn("文件开头检测到可执行文件签名", map[string]interface{}{
				"signature_type": signatureNames[i],
			})
			return true
		}
	}

	dataStr := strings.ToLower(string(data))
	if strings.Contains(dataStr, "<svg") {
		return v.checkSVGScripts(dataStr)
	}

	return false
}

// checkSVGScripts 检查SVG内容中的脚本
func (v *SecurityValidator) checkSVGScripts(dataStrLower string) bool {
	suspiciousStrings := []string{
		"<script",
		"javascript:",
		"vbscript:",
		"onload=",
		"onerror=",
		"<iframe",
		"<object",
		"<embed",
	}

	for _, suspicious := range suspiciousStrings {
		if strings.Contains(dataStrLower, suspicious) {
			v.logger.Warn("在SVG中检测到可疑脚本内容", map[string]interface{}{
				"suspicious_content": suspicious,
			})
			return true
		}
	}

	return false
}
