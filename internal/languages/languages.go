package languages

// subtitleLanguageMap maps BCP 47 primary tags to the label shown in the
// player's subtitle menu.
var subtitleLanguageMap = map[string]string{
	"ar": "Arabic",
	"az": "Azerbaijani",
	"de": "German",
	"en": "English",
	"es": "Spanish",
	"fa": "Persian",
	"fr": "French",
	"he": "Hebrew",
	"hi": "Hindi",
	"hy": "Armenian",
	"it": "Italian",
	"ja": "Japanese",
	"ka": "Georgian",
	"kk": "Kazakh",
	"ko": "Korean",
	"ku": "Kurdish",
	"nl": "Dutch",
	"pl": "Polish",
	"ps": "Pashto",
	"pt": "Portuguese",
	"ru": "Russian",
	"sv": "Swedish",
	"tg": "Tajik",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"ur": "Urdu",
	"uz": "Uzbek",
	"zh": "Chinese",
}

// Label returns the display name for code, or code itself when it is unknown.
func Label(code string) string {
	if name, ok := subtitleLanguageMap[code]; ok {
		return name
	}
	return code
}
