package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidPersona        = errors.New("unknown personality")
	ErrInvalidTone           = errors.New("unknown tone")
	ErrCustomPersonaRequired = errors.New("customPersonality is required when personality is custom")
)

// Persona 是影响助手口吻和专长的命名人格模板，取值是封闭集合。
type Persona string

const (
	PersonaDefault    Persona = "default"
	PersonaTeacher    Persona = "teacher"
	PersonaProgrammer Persona = "programmer"
	PersonaCreative   Persona = "creative"
	PersonaConsultant Persona = "consultant"
	// PersonaCustom 使用请求方提供的自定义人格提示词。
	PersonaCustom Persona = "custom"
)

// ParsePersona 解析人格名称。空字符串视为默认人格，未知名称返回 ErrInvalidPersona。
func ParsePersona(s string) (Persona, error) {
	switch p := Persona(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PersonaDefault, nil
	case PersonaDefault, PersonaTeacher, PersonaProgrammer, PersonaCreative, PersonaConsultant, PersonaCustom:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPersona, s)
	}
}

// Tone 是独立于人格的措辞风格模板。空值表示不附加语气模板。
type Tone string

const (
	ToneNone         Tone = ""
	ToneFriendly     Tone = "friendly"
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneDetailed     Tone = "detailed"
	ToneConcise      Tone = "concise"
)

// ParseTone 解析语气名称，未知名称返回 ErrInvalidTone。
func ParseTone(s string) (Tone, error) {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case ToneNone, ToneFriendly, ToneProfessional, ToneCasual, ToneDetailed, ToneConcise:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTone, s)
	}
}
