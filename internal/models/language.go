package models

// Language is a UI language option. Static reference data seeded at migration
// time.
type Language struct {
	Code       string `gorm:"primaryKey;size:10" json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
}

// DefaultLanguage is the language assistant replies are generated in before
// any translation step.
const DefaultLanguage = "en"

// SupportedLanguages lists the languages offered in the UI selector.
var SupportedLanguages = []Language{
	{Code: "en", Name: "English", NativeName: "English"},
	{Code: "hi", Name: "Hindi", NativeName: "हिन्दी"},
	{Code: "ta", Name: "Tamil", NativeName: "தமிழ்"},
	{Code: "te", Name: "Telugu", NativeName: "తెలుగు"},
	{Code: "ml", Name: "Malayalam", NativeName: "മലയാളം"},
	{Code: "kn", Name: "Kannada", NativeName: "ಕನ್ನಡ"},
	{Code: "bn", Name: "Bengali", NativeName: "বাংলা"},
	{Code: "gu", Name: "Gujarati", NativeName: "ગુજરાતી"},
	{Code: "mr", Name: "Marathi", NativeName: "मराठी"},
	{Code: "pa", Name: "Punjabi", NativeName: "ਪੰਜਾਬੀ"},
}

// LanguageName resolves a language code to its English display name, falling
// back to the code itself for unknown values.
func LanguageName(code string) string {
	for _, lang := range SupportedLanguages {
		if lang.Code == code {
			return lang.Name
		}
	}
	return code
}
