package speech

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
	models "github.com/CodeAndHammer/tradukilo/internal/models"
)

// voiceTable maps lower-cased language codes to the speech provider's voice codes.
var voiceTable = map[string]string{
	"en":    "en",
	"ta":    "ta",
	"hi":    "hi",
	"te":    "te",
	"ml":    "ml",
	"kn":    "kn",
	"bn":    "bn",
	"mr":    "mr",
	"gu":    "gu",
	"ur":    "ur",
	"fr":    "fr",
	"de":    "de",
	"es":    "es",
	"it":    "it",
	"pt":    "pt",
	"nl":    "nl",
	"ru":    "ru",
	"pl":    "pl",
	"sv":    "sv",
	"tr":    "tr",
	"ar":    "ar",
	"ja":    "ja",
	"ko":    "ko",
	"zh":    "zh-CN",
	"zh-cn": "zh-CN",
	"zh-tw": "zh-TW",
	"id":    "id",
	"th":    "th",
	"vi":    "vi",
}

// VoiceFor returns the voice code for lang, falling back to the default
// voice for codes the table does not know.
func VoiceFor(lang string) string {
	if voice, ok := voiceTable[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return voice
	}
	return constants.DefaultVoiceLang
}

// IsSupported reports whether lang has its own entry in the voice table.
func IsSupported(lang string) bool {
	_, ok := voiceTable[strings.ToLower(strings.TrimSpace(lang))]
	return ok
}

// Languages lists the voice table sorted by code.
func Languages() []models.Language {
	codes := lo.Keys(voiceTable)
	sort.Strings(codes)
	return lo.Map(codes, func(code string, _ int) models.Language {
		return models.Language{Code: code, Voice: voiceTable[code]}
	})
}
