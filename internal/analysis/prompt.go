package analysis

import (
	"strings"

	"lumina-face-analysis/pkg/models"
)

// SystemPrompt sets the analyst persona and the output contract
var SystemPrompt = `你是一位专业的面部美学与彩妆顾问。根据用户上传的正面人脸照片，给出客观、友善、具体的分析。
评分范围为 0 到 100。只输出 JSON，不要输出任何额外文字。
JSON 结构必须包含：
- overallScore: 整体评分
- features: eyes、nose、mouth、faceShape 四项，每项包含 score、pros（优点）、cons（不足）
- faceType: category（脸型风格类别）、description（描述）、tags（标签数组）
- skinAnalysis: textureScore（肤质评分）、lusterScore（光泽评分）、advice（护肤建议）
- makeupAdvice: 数组，每项包含 area（部位）和 advice（建议）`

// UserPrompt accompanies the image
func UserPrompt() string {
	return "请分析这张照片。faceType.category 从以下类别中选择：" +
		strings.Join(models.FaceCategories, "、") + "。"
}
