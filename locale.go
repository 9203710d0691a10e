package auraxis

import "golang.org/x/text/language"

// LocaleData holds a localised string in every locale the API serves.
// Some collections omit Italian or Turkish; absent locales are empty.
type LocaleData struct {
	De string `json:"de,omitempty"`
	En string `json:"en,omitempty"`
	Es string `json:"es,omitempty"`
	Fr string `json:"fr,omitempty"`
	It string `json:"it,omitempty"`
}

var localeMatcher = language.NewMatcher([]language.Tag{
	language.English, // first entry is the fallback
	language.German,
	language.Spanish,
	language.French,
	language.Italian,
})

// Get returns the string for the closest supported locale to tag,
// falling back to English.
func (l LocaleData) Get(tag language.Tag) string {
	_, index, _ := localeMatcher.Match(tag)
	switch index {
	case 1:
		return l.De
	case 2:
		return l.Es
	case 3:
		return l.Fr
	case 4:
		return l.It
	default:
		return l.En
	}
}

// String returns the English value, satisfying fmt.Stringer.
func (l LocaleData) String() string { return l.En }
