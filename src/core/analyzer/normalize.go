package analyzer

import (
	"encoding/json"
	"strings"
)

// 兜底关键词列表，否定词永远覆盖肯定词，顺序固定
var (
	foundKeywords    = []string{"yes", "found", "present", "visible", "see", "true"}
	notFoundKeywords = []string{"no", "not found", "absent", "cannot", "false"}
)

const maxFallbackDescription = 500

// Normalize 将模型的自由文本回复规整为固定结构
// 先尝试提取并解析文本中的JSON对象，失败时退回关键词启发式
// 该函数没有失败路径，任何输入都会产出合法结果
func Normalize(raw string) AnalysisResult {
	if span, ok := ExtractJSONObject(raw); ok {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(span), &m); err == nil {
			return resultFromMap(m)
		}
	}
	return fallbackResult(raw)
}

// ExtractJSONObject 返回文本中第一个平衡的{...}片段
// 逐字符扫描括号深度并跳过字符串字面量，不使用贪婪正则
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// fallbackResult 关键词启发式兜底结果
func fallbackResult(text string) AnalysisResult {
	textLower := strings.ToLower(text)

	found := false
	for _, keyword := range foundKeywords {
		if strings.Contains(textLower, keyword) {
			found = true
			break
		}
	}
	for _, keyword := range notFoundKeywords {
		if strings.Contains(textLower, keyword) {
			found = false
			break
		}
	}

	location := "Not applicable"
	if found {
		location = "See description"
	}

	return AnalysisResult{
		Found:             found,
		Confidence:        ConfidenceMedium,
		Description:       truncate(text, maxFallbackDescription),
		Location:          location,
		AdditionalObjects: []string{},
	}.Validated()
}

// truncate 按字符数截断
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
