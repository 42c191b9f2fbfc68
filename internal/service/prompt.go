package service

import (
	"smart-chat-go/internal/model"
	"smart-chat-go/pkg/llm"
	"strings"
)

// BasePersona 是所有系统提示词的开头。
const BasePersona = "أنت مساعد ذكي مفيد ومتعاون. تجيب باللغة العربية بشكل واضح ومفصل. كن مهذباً ومساعداً في جميع الأوقات."

var personaTemplates = map[model.Persona]string{
	model.PersonaDefault:    "",
	model.PersonaTeacher:    "تصرف كمعلم صبور: اشرح المفاهيم خطوة بخطوة، واستخدم أمثلة بسيطة، وتأكد من فهم المستخدم قبل الانتقال إلى الفكرة التالية.",
	model.PersonaProgrammer: "تصرف كمبرمج خبير: قدم حلولاً برمجية دقيقة، واكتب الكود داخل كتل منسقة، واشرح سبب اختيار كل حل وأفضل الممارسات المتعلقة به.",
	model.PersonaCreative:   "تصرف ككاتب مبدع: استخدم لغة غنية بالصور والتشبيهات، واقترح أفكاراً غير تقليدية، ولا تخف من الخيال.",
	model.PersonaConsultant: "تصرف كمستشار محترف: حلل الموقف بموضوعية، واعرض الخيارات مع مزايا وعيوب كل منها، ثم قدم توصية واضحة.",
}

var toneTemplates = map[model.Tone]string{
	model.ToneFriendly:     "استخدم نبرة ودودة ومرحة وقريبة من المستخدم.",
	model.ToneProfessional: "استخدم نبرة مهنية ورسمية ولغة عربية فصحى.",
	model.ToneCasual:       "استخدم نبرة عادية ومريحة كأنك تتحدث مع صديق.",
	model.ToneDetailed:     "قدم إجابات مفصلة وعلمية وشاملة مع ذكر الخلفية اللازمة.",
	model.ToneConcise:      "اجعل إجاباتك مختصرة ومباشرة دون إطالة.",
}

// BuildSystemPrompt 按 基础人设 + 人设模板(或自定义人设) + 语气模板 拼接系统提示词。
// persona 与 tone 必须已经通过 model.ParsePersona / model.ParseTone 校验。
func BuildSystemPrompt(persona model.Persona, customPrompt string, tone model.Tone) string {
	parts := []string{BasePersona}
	if persona == model.PersonaCustom {
		if p := strings.TrimSpace(customPrompt); p != "" {
			parts = append(parts, p)
		}
	} else if t := personaTemplates[persona]; t != "" {
		parts = append(parts, t)
	}
	if t := toneTemplates[tone]; t != "" {
		parts = append(parts, t)
	}
	return strings.Join(parts, "\n\n")
}

// BuildChatMessages 组装发送给 LLM 的完整消息列表：系统提示词、按时间排序的历史、当前用户消息。
func BuildChatMessages(systemPrompt string, history []model.Message, userMessage string) []llm.Message {
	msgs := make([]llm.Message, 0, len(history)+2)
	msgs = append(msgs, llm.Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		msgs = append(msgs, llm.Message{Role: string(m.Role), Content: m.Content})
	}
	msgs = append(msgs, llm.Message{Role: "user", Content: userMessage})
	return msgs
}
