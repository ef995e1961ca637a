package analyzer

// 置信度枚举值
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

const (
	defaultDescription = "No description available"
	defaultLocation    = "Unknown"
)

// AnalysisResult 识别结果的固定输出结构
// 返回给调用方的结果五个字段必定全部存在，confidence必定在枚举范围内
type AnalysisResult struct {
	Found             bool     `json:"found"`              // 目标物体是否存在
	Confidence        string   `json:"confidence"`         // 置信度：high/medium/low
	Description       string   `json:"description"`        // 描述文本
	Location          string   `json:"location"`           // 物体位置，未找到时为"Not applicable"
	AdditionalObjects []string `json:"additional_objects"` // 图中其他值得注意的物体
}

// Validated 对结果做一次校验修正，已合法的结果原样返回（幂等）
func (r AnalysisResult) Validated() AnalysisResult {
	if !isValidConfidence(r.Confidence) {
		r.Confidence = ConfidenceMedium
	}
	if r.Description == "" {
		r.Description = defaultDescription
	}
	if r.Location == "" {
		r.Location = defaultLocation
	}
	if r.AdditionalObjects == nil {
		r.AdditionalObjects = []string{}
	}
	return r
}

func isValidConfidence(c string) bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// resultFromMap 将模型返回的JSON映射强制转换为合法的AnalysisResult
func resultFromMap(m map[string]interface{}) AnalysisResult {
	result := AnalysisResult{
		Found:             truthy(m["found"]),
		AdditionalObjects: []string{},
	}

	if s, ok := m["confidence"].(string); ok {
		result.Confidence = s
	}
	if s, ok := m["description"].(string); ok {
		result.Description = s
	}
	if s, ok := m["location"].(string); ok {
		result.Location = s
	}

	// additional_objects 必须是纯字符串数组，否则置空
	if arr, ok := m["additional_objects"].([]interface{}); ok {
		objects := make([]string, 0, len(arr))
		valid := true
		for _, item := range arr {
			s, ok := item.(string)
			if !ok {
				valid = false
				break
			}
			objects = append(objects, s)
		}
		if valid {
			result.AdditionalObjects = objects
		}
	}

	return result.Validated()
}

// truthy 按原始实现的真值语义强制转换为布尔
// false/0/空字符串/null/空数组/空对象为假，其余为真
func truthy(v interface{}) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case float64:
		return x != 0
	case []interface{}:
		return len(x) > 0
	case map[string]interface{}:
		return len(x) > 0
	default:
		return true
	}
}
