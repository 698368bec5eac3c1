// Package lang canonicalizes language identifiers to ISO 639-1 codes and
// carries the script metadata the render stage needs to pick a typeface.
package lang

import "strings"

type entry struct {
	code    string // ISO 639-1 (2-letter)
	display string
	words   []string // full word forms, e.g. "english"
}

var languages = []entry{
	{"en", "English", []string{"english"}},
	{"he", "Hebrew", []string{"hebrew"}},
	{"ar", "Arabic", []string{"arabic"}},
	{"zh", "Chinese", []string{"chinese", "mandarin"}},
	{"ja", "Japanese", []string{"japanese"}},
	{"ko", "Korean", []string{"korean"}},
	{"fr", "French", []string{"french"}},
	{"es", "Spanish", []string{"spanish"}},
	{"de", "German", []string{"german"}},
	{"ru", "Russian", []string{"russian"}},
	{"hi", "Hindi", []string{"hindi"}},
	{"pt", "Portuguese", []string{"portuguese"}},
	{"it", "Italian", []string{"italian"}},
	{"fa", "Persian", []string{"persian", "farsi"}},
	{"ur", "Urdu", []string{"urdu"}},
	{"tr", "Turkish", []string{"turkish"}},
	{"nl", "Dutch", []string{"dutch"}},
	{"pl", "Polish", []string{"polish"}},
}

// Right-to-left and CJK scripts need dedicated typefaces when burning
// subtitles; everything else renders with the universal default face.
var (
	rtl = map[string]struct{}{"ar": {}, "he": {}, "fa": {}, "ur": {}}
	cjk = map[string]struct{}{"zh": {}, "ja": {}, "ko": {}}
)

var (
	byCode map[string]*entry
	byWord map[string]*entry
)

func init() {
	byCode = make(map[string]*entry, len(languages))
	byWord = make(map[string]*entry, len(languages))
	for i := range languages {
		e := &languages[i]
		byCode[e.code] = e
		for _, w := range e.words {
			byWord[w] = e
		}
	}
}

// Normalize canonicalizes a language name, 2-letter code, or locale tag
// (e.g. "en-US") to a 2-letter code. Unrecognized input passes through
// verbatim so downstream stages can still attempt best-effort handling;
// this function never fails.
func Normalize(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return code
	}
	if _, ok := byCode[code]; ok {
		return code
	}
	if i := strings.IndexAny(code, "-_"); i >= 0 {
		return Normalize(code[:i])
	}
	if e, ok := byWord[code]; ok {
		return e.code
	}
	return code
}

// IsRTL reports whether the language is written right to left.
func IsRTL(code string) bool {
	_, ok := rtl[Normalize(code)]
	return ok
}

// IsCJK reports whether the language uses a CJK script.
func IsCJK(code string) bool {
	_, ok := cjk[Normalize(code)]
	return ok
}

// DisplayName returns a human-readable name for a recognized code, or the
// uppercased code itself for unrecognized input.
func DisplayName(code string) string {
	if e, ok := byCode[Normalize(code)]; ok {
		return e.display
	}
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// DefaultFontFile is the universal fallback typeface.
const DefaultFontFile = "NotoSans-Regular.ttf"

var fontFiles = map[string]string{
	"he": "NotoSansHebrew-Regular.ttf",
	"ar": "NotoSansArabic-Regular.ttf",
	"zh": "NotoSansSC-Regular.otf",
	"ja": "NotoSansJP-Regular.otf",
	"ko": "NotoSansKR-Regular.otf",
}

// FontFile returns the typeface file name for the language's script.
func FontFile(code string) string {
	if f, ok := fontFiles[Normalize(code)]; ok {
		return f
	}
	return DefaultFontFile
}
