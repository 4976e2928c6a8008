package nlp

import (
	"strings"
	"unicode"
)

// categoryNames maps YouTube category IDs to the Korean category names used
// as classification prefixes. IDs not listed here fall back to "기타".
var categoryNames = map[string]string{
	"1":  "영화 및 애니메이션",
	"2":  "자동차 및 차량",
	"10": "음악",
	"15": "애완동물 및 동물",
	"17": "스포츠",
	"20": "게임",
	"22": "인물 및 블로그",
	"23": "코미디",
	"24": "엔터테인먼트",
	"26": "하는 방법 및 스타일",
	"28": "과학 및 기술",
}

const fallbackCategoryName = "기타"

// Clean strips a comment down to the character set the classifiers were
// trained on: Hangul syllables, compatibility jamo (ㅋ, ㅠ and friends),
// ASCII digits, whitespace and the punctuation set ".,?!". Whitespace runs
// collapse to a single space and the result is trimmed. Clean is idempotent.
func Clean(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= '가' && r <= '힣':
			b.WriteRune(r)
		case r >= 'ㄱ' && r <= 'ㅣ': // U+3131..U+3163, jamo block
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '.' || r == ',' || r == '?' || r == '!':
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ContainsKorean reports whether the text contains at least one Hangul
// syllable or isolated consonant/vowel. Comments without any Korean are not
// classified; the models are Korean-specific.
func ContainsKorean(text string) bool {
	for _, r := range text {
		if (r >= '가' && r <= '힣') || (r >= 'ㄱ' && r <= 'ㅣ') {
			return true
		}
	}
	return false
}

// PrefixedContent builds the exact string fed to both classifiers:
// "<category name>: <cleaned text>". The category name biases the models
// with video context; unknown or empty category IDs use the fallback name.
func PrefixedContent(categoryID, text string) string {
	name, ok := categoryNames[categoryID]
	if !ok {
		name = fallbackCategoryName
	}
	return name + ": " + Clean(text)
}
