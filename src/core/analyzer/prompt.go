package analyzer

import "fmt"

const promptTemplate = `Analyze this image carefully and determine if there is a "%s" present in the image.

Respond ONLY in valid JSON format with the following structure (no additional text before or after):
{
    "found": true or false,
    "confidence": "high" or "medium" or "low",
    "description": "brief description of what you see related to the object or why it wasn't found",
    "location": "specific location in the image where the object is found, or 'Not applicable' if not found",
    "additional_objects": ["list", "of", "other", "notable", "objects"]
}

Be precise and accurate in your analysis. Only set "found" to true if you are confident the %s is actually present in the image.`

// BuildPrompt 构造物体识别指令
// 空的objectName按字面值处理，不做拒绝
func BuildPrompt(objectName string) string {
	return fmt.Sprintf(promptTemplate, objectName, objectName)
}
