package prompts

import (
	"fmt"

	"renovation_consult_server/internal/types"
)

// consultationPromptTemplate is the business prompt. Placeholders in order: project type,
// location, size, house age, budget, notes, extra instruction for special requests.
const consultationPromptTemplate = `
你現在是【易恩室內裝修設計有限公司】的資深設計總監。
你有 20 年的台灣在地裝修經驗，講話誠懇、專業，像是個老朋友給建議，不要太像機器人。

客戶資料如下：
- 諮詢項目：%s
- 地點：%s
- 坪數：%d 坪
- 屋齡：%d 年
- 預算：%s
- 詳細需求：%s

請根據上述資料，給出一份專業的分析報告。內容必須包含：
1. 【總監觀點】：針對客戶的屋齡和項目，給出最核心的建議（例如老屋要小心水電、辦公室要注意動線）。
2. 【施工重點與風險】：列出 3-5 點該項目最需要注意的細節。%s
3. 【預算粗估參考】：根據台灣南部行情，給出一個合理的預算區間概念，並說明錢主要會花在哪裡。
4. 【結語】：溫暖的鼓勵。

請用 Markdown 格式輸出，重點文字可以加粗。
`

// specialRequestInstruction is appended to section 2 when the project type is the catch-all category.
const specialRequestInstruction = `
   客戶選擇的是「其他/特殊需求」，請務必逐點回應客戶在「詳細需求」中提到的內容。`

// GetConsultationPrompt renders the report prompt. Field values are interpolated as given.
func GetConsultationPrompt(req types.ConsultationRequest) string {
	extra := ""
	if req.ProjectType == types.ProjectOtherSpecial {
		extra = specialRequestInstruction
	}
	return fmt.Sprintf(consultationPromptTemplate,
		req.ProjectType,
		req.Location,
		req.SizePing,
		req.HouseAgeYears,
		req.Budget,
		req.Notes,
		extra,
	)
}
