package analyzer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		ok       bool
	}{
		{
			name:     "纯JSON对象",
			input:    `{"found": true}`,
			expected: `{"found": true}`,
			ok:       true,
		},
		{
			name:     "前后有说明文字",
			input:    "Here is my analysis:\n{\"found\": false}\nHope this helps!",
			expected: `{"found": false}`,
			ok:       true,
		},
		{
			name:     "markdown代码块包裹",
			input:    "```json\n{\"found\": true, \"confidence\": \"high\"}\n```",
			expected: `{"found": true, "confidence": "high"}`,
			ok:       true,
		},
		{
			name:     "嵌套对象取最外层",
			input:    `prefix {"a": {"b": {"c": 1}}, "d": 2} suffix`,
			expected: `{"a": {"b": {"c": 1}}, "d": 2}`,
			ok:       true,
		},
		{
			name:     "字符串值中的大括号不计入深度",
			input:    `{"description": "a } inside a string {", "found": true}`,
			expected: `{"description": "a } inside a string {", "found": true}`,
			ok:       true,
		},
		{
			name:     "字符串中的转义引号",
			input:    `{"description": "he said \"}\"", "found": false}`,
			expected: `{"description": "he said \"}\"", "found": false}`,
			ok:       true,
		},
		{
			name:     "多个对象取第一个",
			input:    `{"first": 1} and then {"second": 2}`,
			expected: `{"first": 1}`,
			ok:       true,
		},
		{
			name:  "没有大括号",
			input: "I cannot see anything in this image.",
			ok:    false,
		},
		{
			name:  "大括号不闭合",
			input: `{"found": true, "description": "trunc`,
			ok:    false,
		},
		{
			name:  "空字符串",
			input: "",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := ExtractJSONObject(tt.input)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, span)
		})
	}
}

func TestNormalize_ParsesEmbeddedJSON(t *testing.T) {
	raw := `Sure! Here is the result:
{
    "found": true,
    "confidence": "high",
    "description": "A red bicycle leaning against a wall",
    "location": "bottom left corner",
    "additional_objects": ["wall", "street sign"]
}
Let me know if you need anything else.`

	result := Normalize(raw)

	assert.True(t, result.Found)
	assert.Equal(t, ConfidenceHigh, result.Confidence)
	assert.Equal(t, "A red bicycle leaning against a wall", result.Description)
	assert.Equal(t, "bottom left corner", result.Location)
	assert.Equal(t, []string{"wall", "street sign"}, result.AdditionalObjects)
}

func TestNormalize_CoercesPartialJSON(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected AnalysisResult
	}{
		{
			name: "缺失字段全部补默认值",
			raw:  `{"found": true}`,
			expected: AnalysisResult{
				Found:             true,
				Confidence:        ConfidenceMedium,
				Description:       "No description available",
				Location:          "Unknown",
				AdditionalObjects: []string{},
			},
		},
		{
			name: "非法置信度钳制为medium",
			raw:  `{"found": false, "confidence": "very high", "description": "d", "location": "l"}`,
			expected: AnalysisResult{
				Found:             false,
				Confidence:        ConfidenceMedium,
				Description:       "d",
				Location:          "l",
				AdditionalObjects: []string{},
			},
		},
		{
			name: "additional_objects缺失时为空数组",
			raw:  `{"found": true, "confidence": "low", "description": "d", "location": "l"}`,
			expected: AnalysisResult{
				Found:             true,
				Confidence:        ConfidenceLow,
				Description:       "d",
				Location:          "l",
				AdditionalObjects: []string{},
			},
		},
		{
			name: "additional_objects含非字符串元素时置空",
			raw:  `{"found": true, "confidence": "high", "description": "d", "location": "l", "additional_objects": ["ok", 42]}`,
			expected: AnalysisResult{
				Found:             true,
				Confidence:        ConfidenceHigh,
				Description:       "d",
				Location:          "l",
				AdditionalObjects: []string{},
			},
		},
		{
			name: "additional_objects不是数组时置空",
			raw:  `{"found": true, "confidence": "high", "description": "d", "location": "l", "additional_objects": "none"}`,
			expected: AnalysisResult{
				Found:             true,
				Confidence:        ConfidenceHigh,
				Description:       "d",
				Location:          "l",
				AdditionalObjects: []string{},
			},
		},
		{
			name: "found为null时为false",
			raw:  `{"found": null, "confidence": "high", "description": "d", "location": "l"}`,
			expected: AnalysisResult{
				Found:             false,
				Confidence:        ConfidenceHigh,
				Description:       "d",
				Location:          "l",
				AdditionalObjects: []string{},
			},
		},
		{
			name: "found为数字0时为false",
			raw:  `{"found": 0, "confidence": "low", "description": "d", "location": "l"}`,
			expected: AnalysisResult{
				Found:             false,
				Confidence:        ConfidenceLow,
				Description:       "d",
				Location:          "l",
				AdditionalObjects: []string{},
			},
		},
		{
			name: "found为非空字符串时按真值处理",
			raw:  `{"found": "false", "confidence": "low", "description": "d", "location": "l"}`,
			expected: AnalysisResult{
				Found:             true,
				Confidence:        ConfidenceLow,
				Description:       "d",
				Location:          "l",
				AdditionalObjects: []string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw))
		})
	}
}

func TestNormalize_Fallback(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		expectedFound bool
		expectedLoc   string
	}{
		{
			name:          "只有否定线索",
			raw:           "The object was not found in the image.",
			expectedFound: false,
			expectedLoc:   "Not applicable",
		},
		{
			name:          "肯定线索",
			raw:           "yes, it is visible",
			expectedFound: true,
			expectedLoc:   "See description",
		},
		{
			name:          "否定覆盖肯定",
			raw:           "It might be present, but I cannot confirm it.",
			expectedFound: false,
			expectedLoc:   "Not applicable",
		},
		{
			name:          "没有任何线索",
			raw:           "This is a blurry picture.",
			expectedFound: false,
			expectedLoc:   "Not applicable",
		},
		{
			name:          "大小写不敏感",
			raw:           "YES! The object is clearly VISIBLE.",
			expectedFound: true,
			expectedLoc:   "See description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.raw)

			assert.Equal(t, tt.expectedFound, result.Found)
			assert.Equal(t, tt.expectedLoc, result.Location)
			assert.Equal(t, ConfidenceMedium, result.Confidence)
			assert.Equal(t, []string{}, result.AdditionalObjects)
		})
	}
}

func TestNormalize_FallbackTruncatesDescription(t *testing.T) {
	raw := "yes " + strings.Repeat("a", 600)
	result := Normalize(raw)

	require.True(t, result.Found)
	assert.Len(t, []rune(result.Description), 500)
	assert.Equal(t, raw[:500], result.Description)
}

func TestNormalize_BrokenJSONFallsBack(t *testing.T) {
	// 提取到的片段不是合法JSON时走兜底，解析错误不向外暴露
	raw := `{"found": true, "confidence": high}`
	result := Normalize(raw)

	// 兜底扫描：原文含"true"，found为真
	assert.True(t, result.Found)
	assert.Equal(t, ConfidenceMedium, result.Confidence)
	assert.Equal(t, "See description", result.Location)
	assert.Equal(t, raw, result.Description)
}

func TestValidated_Idempotent(t *testing.T) {
	inputs := []string{
		`{"found": true, "confidence": "high", "description": "d", "location": "l", "additional_objects": ["a"]}`,
		`{"found": 1}`,
		"nothing to see here",
		"yes, clearly visible",
		"",
	}

	for _, raw := range inputs {
		result := Normalize(raw)

		// 任何输出都已满足不变式
		assert.Contains(t, []string{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}, result.Confidence)
		assert.NotNil(t, result.AdditionalObjects)
		assert.NotEmpty(t, result.Description)
		assert.NotEmpty(t, result.Location)

		// 对合法结果再校验一次是空操作
		assert.Equal(t, result, result.Validated())
	}
}
