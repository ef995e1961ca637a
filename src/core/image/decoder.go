package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/gif"  // 注册GIF解码器
	_ "image/jpeg" // 注册JPEG解码器
	_ "image/png"  // 注册PNG解码器

	_ "golang.org/x/image/bmp"  // 注册BMP解码器
	_ "golang.org/x/image/webp" // 注册WEBP解码器
)

// StripDataURLPrefix 去除data URL前缀（data:<mime>;base64,）
// 返回纯base64载荷和前缀中携带的MIME提示（没有前缀时为空）
func StripDataURLPrefix(s string) (payload string, mimeHint string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return s, ""
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return s, ""
	}
	meta := s[len("data:"):idx] // "<mime>;base64"
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		mimeHint = meta[:semi]
	} else {
		mimeHint = meta
	}
	return s[idx+1:], mimeHint
}

// Decode 解码base64图片字符串并验证其可加载性
// 失败时返回的错误分别包装ErrDecode（base64无效）和ErrFormat（不是图片）
// 返回的Data统一规整为标准base64，与输入使用的变体无关
func Decode(s string) (ImageData, []byte, error) {
	payload, mimeHint := StripDataURLPrefix(s)

	// 标准base64，失败后再尝试URL-safe变体
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.URLEncoding.DecodeString(payload)
	}
	if err != nil {
		return ImageData{}, nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	config, actualFormat, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return ImageData{}, nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	// 格式判定：文件头魔数优先，其次data URL前缀中的MIME提示，最后是解码器报告的格式
	format := DetectFormat(raw)
	if format == "" {
		format = formatFromMIME(mimeHint)
	}
	if format == "" {
		format = actualFormat
	}

	return ImageData{
		Data:   base64.StdEncoding.EncodeToString(raw),
		Format: format,
		Width:  config.Width,
		Height: config.Height,
	}, raw, nil
}

// DetectFormat 根据文件头魔数检测图片格式，无法识别时返回空字符串
func DetectFormat(data []byte) string {
	switch {
	case hasJPEGHeader(data):
		return "jpeg"
	case hasPNGHeader(data):
		return "png"
	case hasGIFHeader(data):
		return "gif"
	case hasBMPHeader(data):
		return "bmp"
	case hasWebPHeader(data):
		return "webp"
	}
	return ""
}

// formatFromMIME 取出image/* MIME类型的子类型，如 image/png → png
func formatFromMIME(mime string) string {
	const prefix = "image/"
	if !strings.HasPrefix(strings.ToLower(mime), prefix) {
		return ""
	}
	return strings.ToLower(mime[len(prefix):])
}

func hasJPEGHeader(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8
}

func hasPNGHeader(data []byte) bool {
	return len(data) >= 8 &&
		data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 &&
		data[4] == 0x0D && data[5] == 0x0A && data[6] == 0x1A && data[7] == 0x0A
}

func hasGIFHeader(data []byte) bool {
	return len(data) >= 6 &&
		data[0] == 'G' && data[1] == 'I' && data[2] == 'F' && data[3] == '8' &&
		(data[4] == '7' || data[4] == '9') && data[5] == 'a'
}

func hasBMPHeader(data []byte) bool {
	return len(data) >= 2 && data[0] == 'B' && data[1] == 'M'
}

func hasWebPHeader(data []byte) bool {
	return len(data) >= 12 &&
		bytes.Equal(data[0:4], []byte("RIFF")) &&
		bytes.Equal(data[8:12], []byte("WEBP"))
}
