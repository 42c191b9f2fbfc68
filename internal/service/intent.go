// Package service 包含了应用的业务逻辑层。
package service

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Intent 表示一条用户消息被路由到的处理分支。
type Intent string

const (
	IntentChat  Intent = "chat"
	IntentImage Intent = "image"
	IntentVideo Intent = "video"
)

var imageKeywords = []string{
	"صورة", "اعمل صورة", "ارسم", "صمم", "إنشاء صورة", "اعمل لي صورة",
	"generate image", "create image", "draw", "make picture", "design",
	"صور", "رسمة", "تصميم", "اطلع صورة", "عاوز صورة",
}

var videoKeywords = []string{
	"فيديو", "اعمل فيديو", "عاوز فيديو", "إنشاء فيديو", "اطلع فيديو",
	"generate video", "create video", "make video", "video generation",
	"حرك", "متحرك", "animation", "animate", "فيلم قصير",
}

// 提取 prompt 时整词删除的介词
var promptFillers = map[string]struct{}{
	"عن": {}, "of": {}, "for": {}, "من": {}, "بـ": {}, "ل": {}, "للـ": {},
}

// ClassifyIntent 通过关键词子串匹配判断消息意图，图片优先于视频。
func ClassifyIntent(text string) Intent {
	lower := strings.ToLower(text)
	if containsAny(lower, imageKeywords) {
		return IntentImage
	}
	if containsAny(lower, videoKeywords) {
		return IntentVideo
	}
	return IntentChat
}

// ExtractImagePrompt 去掉图片触发词与填充介词，剩余为空时返回原文。
func ExtractImagePrompt(message string) string {
	return extractPrompt(message, imageKeywords)
}

// ExtractVideoPrompt 去掉视频触发词与填充介词，剩余为空时返回原文。
func ExtractVideoPrompt(message string) string {
	return extractPrompt(message, videoKeywords)
}

func containsAny(lower string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func extractPrompt(message string, keywords []string) string {
	// 长词优先，避免 "صورة" 先于 "اعمل صورة" 被删掉后残留 "اعمل"
	sorted := append([]string(nil), keywords...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len([]rune(sorted[i])) > len([]rune(sorted[j]))
	})

	cleaned := message
	for _, k := range sorted {
		cleaned = removeFold(cleaned, k)
	}

	words := strings.FieldsFunc(cleaned, unicode.IsSpace)
	kept := words[:0]
	for _, w := range words {
		if _, filler := promptFillers[strings.ToLower(w)]; filler {
			continue
		}
		kept = append(kept, w)
	}

	out := strings.Join(kept, " ")
	if out == "" {
		return message
	}
	return out
}

// removeFold 大小写不敏感地删除 s 中所有的 sub，用空格占位。
func removeFold(s, sub string) string {
	lowerSub := []rune(strings.ToLower(sub))
	if len(lowerSub) == 0 {
		return s
	}
	var b strings.Builder
	rest := s
	for {
		start, end := indexFold(rest, lowerSub)
		if start < 0 {
			b.WriteString(rest)
			break
		}
		b.WriteString(rest[:start])
		b.WriteByte(' ')
		rest = rest[end:]
	}
	return b.String()
}

// indexFold 返回 s 中第一个与 sub 大小写无关匹配的字节区间，未找到时 start 为 -1。
func indexFold(s string, sub []rune) (int, int) {
	for start := range s {
		pos := start
		matched := true
		for _, want := range sub {
			if pos >= len(s) {
				matched = false
				break
			}
			r, size := utf8.DecodeRuneInString(s[pos:])
			if unicode.ToLower(r) != want {
				matched = false
				break
			}
			pos += size
		}
		if matched {
			return start, pos
		}
	}
	return -1, -1
}
