package model

// Language is the tag of a supported compiled language. The judge knows
// exactly two; anything else fails fast at compile stage.
type Language string

const (
	LanguageC   Language = "c"
	LanguageCpp Language = "cpp"
)

func (l Language) Valid() bool {
	return l == LanguageC || l == LanguageCpp
}

// SourceFilename returns the filename a submission's source is stored under.
func (l Language) SourceFilename() string {
	if l == LanguageC {
		return "code.c"
	}
	return "code.cpp"
}
