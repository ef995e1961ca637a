package image

import (
	"bytes"
	"encoding/base64"
	stdimage "image"
	"image/png"
	"testing"

	"object-recognition-server-go/src/configs"
	"object-recognition-server-go/src/core/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *utils.Logger {
	t.Helper()
	cfg := &configs.Config{}
	cfg.Log.LogLevel = "error"
	cfg.Log.LogDir = t.TempDir()
	cfg.Log.LogFile = "test.log"

	logger, err := utils.NewLogger(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { logger.Close() })
	return logger
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func testSecurityConfig() *configs.SecurityConfig {
	return &configs.SecurityConfig{
		MaxFileSize:    1024 * 1024,
		MaxPixels:      1000000,
		MaxWidth:       2048,
		MaxHeight:      2048,
		AllowedFormats: []string{"jpeg", "png", "gif"},
		EnableDeepScan: true,
	}
}

func TestSecurityValidator_ValidImage(t *testing.T) {
	v := NewSecurityValidator(testSecurityConfig(), newTestLogger(t))

	result := v.Validate(pngBytes(t), "png")

	require.True(t, result.IsValid)
	assert.Equal(t, "png", result.Format)
	assert.Equal(t, 1, result.Width)
	assert.Equal(t, 1, result.Height)
}

func TestSecurityValidator_FileTooLarge(t *testing.T) {
	cfg := testSecurityConfig()
	cfg.MaxFileSize = 8
	v := NewSecurityValidator(cfg, newTestLogger(t))

	result := v.Validate(pngBytes(t), "png")

	assert.False(t, result.IsValid)
	assert.Error(t, result.Error)
}

func TestSecurityValidator_FormatNotAllowed(t *testing.T) {
	v := NewSecurityValidator(testSecurityConfig(), newTestLogger(t))

	result := v.Validate(pngBytes(t), "webp")

	assert.False(t, result.IsValid)
	assert.Error(t, result.Error)
}

func TestSecurityValidator_ExecutablePayloadRejected(t *testing.T) {
	v := NewSecurityValidator(testSecurityConfig(), newTestLogger(t))

	// PE文件头伪装的载荷
	payload := append([]byte{0x4D, 0x5A}, bytes.Repeat([]byte{0x00}, 64)...)
	result := v.Validate(payload, "png")

	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.SecurityRisk)
}

func TestSecurityValidator_GarbageRejected(t *testing.T) {
	v := NewSecurityValidator(testSecurityConfig(), newTestLogger(t))

	garbage, err := base64.StdEncoding.DecodeString("aGVsbG8gd29ybGQ=")
	require.NoError(t, err)

	result := v.Validate(garbage, "png")

	assert.False(t, result.IsValid)
	assert.Error(t, result.Error)
}
