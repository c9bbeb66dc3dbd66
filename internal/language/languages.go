package language

import "sort"

// Option is one selectable target language for translation.
type Option struct {
	Code   string `json:"code"`
	Label  string `json:"label"`
	Native string `json:"native,omitempty"`
}

type languageLabel struct {
	english string
	native  string
}

var translationLanguageLabels = map[string]languageLabel{
	"de":    {english: "German", native: "Deutsch"},
	"en":    {english: "English", native: "English"},
	"es":    {english: "Spanish", native: "Español"},
	"fr":    {english: "French", native: "Français"},
	"it":    {english: "Italian", native: "Italiano"},
	"ja":    {english: "Japanese", native: "日本語"},
	"ko":    {english: "Korean", native: "한국어"},
	"zh-cn": {english: "Chinese (Simplified)", native: "简体中文"},
	"zh-tw": {english: "Chinese (Traditional)", native: "繁體中文"},
}

// SupportedCodes returns the sorted set of translation target codes.
func SupportedCodes() []string {
	codes := make([]string, 0, len(translationLanguageLabels))
	for code := range translationLanguageLabels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// IsSupported reports whether the code (after normalization) is a valid
// translation target.
func IsSupported(code string) bool {
	_, ok := translationLanguageLabels[NormalizeTag(code)]
	return ok
}

// Describe resolves a code to its English display name. Unknown codes come
// back unchanged so the caller always has something to render.
func Describe(code string) string {
	if labels, ok := translationLanguageLabels[NormalizeTag(code)]; ok {
		return labels.english
	}
	return code
}

// Options returns the selectable target languages sorted by code.
func Options() []Option {
	codes := SupportedCodes()
	options := make([]Option, 0, len(codes))
	for _, code := range codes {
		labels := translationLanguageLabels[code]
		options = append(options, Option{
			Code:   code,
			Label:  labels.english,
			Native: labels.native,
		})
	}
	return options
}
