package service

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

type fallbackBucket struct {
	keywords []string
	reply    func(now time.Time) string
}

func fixedReply(s string) func(time.Time) string {
	return func(time.Time) string { return s }
}

// 按顺序匹配，第一个命中的分组生效
var fallbackBuckets = []fallbackBucket{
	{
		keywords: []string{"مرحبا", "أهلا", "السلام"},
		reply:    fixedReply("مرحباً بك! أهلاً وسهلاً، كيف يمكنني مساعدتك اليوم؟"),
	},
	{
		keywords: []string{"الوقت", "الساعة", "التاريخ"},
		reply: func(now time.Time) string {
			return fmt.Sprintf("الوقت الحالي هو %s والتاريخ هو %s", now.Format("15:04:05"), now.Format("2006/01/02"))
		},
	},
	{
		keywords: []string{"الطقس", "الجو", "المطر"},
		reply:    fixedReply("آسف، لا أستطيع الوصول لمعلومات الطقس حالياً، ولكن يمكنك مراجعة تطبيق الطقس في هاتفك أو موقع الأرصاد الجوية."),
	},
	{
		keywords: []string{"ساعد", "مساعدة", "كيف"},
		reply:    fixedReply("أنا هنا لمساعدتك! يمكنني الإجابة على أسئلتك، إجراء محادثات، وتقديم المعلومات. ما الذي تحتاج مساعدة فيه تحديداً؟"),
	},
	{
		keywords: []string{"شكر", "أشكرك", "متشكر"},
		reply:    fixedReply("عفواً! أسعدني أن أساعدك. هل تحتاج أي شيء آخر؟"),
	},
	{
		keywords: []string{"+", "-", "×", "÷", "حساب"},
		reply:    fixedReply("يمكنني مساعدتك في العمليات الحسابية البسيطة. اكتب المسألة الرياضية بوضوح وسأحاول حلها لك."),
	},
	{
		keywords: []string{"برمجة", "كود", "python", "javascript"},
		reply:    fixedReply("أحب مساعدتك في البرمجة! يمكنني شرح المفاهيم، مراجعة الكود، واقتراح حلول للمشاكل البرمجية. ما السؤال تحديداً؟"),
	},
	{
		keywords: []string{"وداع", "إلى اللقاء", "باي"},
		reply:    fixedReply("إلى اللقاء! كان من دواعي سروري التحدث معك. أتمنى لك يوماً سعيداً!"),
	},
}

var defaultFallbackReplies = []string{
	"هذا سؤال مثير للاهتمام! بحكم أنني أعمل حالياً في وضع محدود، قد تكون إجابتي بسيطة. يمكنك إعادة صياغة السؤال أو طرح شيء آخر؟",
	"أقدر سؤالك! أعمل حالياً بإمكانيات محدودة، لكنني سأبذل قصارى جهدي لمساعدتك. هل يمكنك توضيح المطلوب أكثر؟",
	"سؤال رائع! أحاول فهم ما تقصده بشكل أفضل. هل يمكنك إعطائي تفاصيل أكثر أو إعادة صياغة السؤال؟",
	"شكراً لك على سؤالك! أعمل حالياً في وضع أساسي، لكنني موجود لمساعدتك قدر الإمكان. ما الذي تحتاج المساعدة فيه تحديداً؟",
}

// FallbackReply 在 LLM 不可用时按关键词返回预设回复，永远返回非空文本。
// rnd 为 nil 时使用全局随机源。
func FallbackReply(message string, now time.Time, rnd *rand.Rand) string {
	lower := strings.ToLower(message)
	for _, b := range fallbackBuckets {
		if containsAny(lower, b.keywords) {
			return b.reply(now)
		}
	}
	if rnd != nil {
		return defaultFallbackReplies[rnd.Intn(len(defaultFallbackReplies))]
	}
	return defaultFallbackReplies[rand.Intn(len(defaultFallbackReplies))]
}
