package i18n

import "fmt"

// languagePrefKey is the preference key holding the chosen language.
const languagePrefKey = "language"

// PrefStore is the key-value capability used to persist preferences.
type PrefStore interface {
	GetPref(key string) (value string, ok bool, err error)
	SetPref(key, value string) error
}

// LoadLanguage returns the stored language preference, or fallback when none
// is stored or the stored value is not a supported language.
func LoadLanguage(store PrefStore, fallback Language) (Language, error) {
	if store == nil {
		return fallback, nil
	}
	v, ok, err := store.GetPref(languagePrefKey)
	if err != nil {
		return fallback, fmt.Errorf("reading language preference: %w", err)
	}
	if !ok {
		return fallback, nil
	}
	lang, err := ParseLanguage(v)
	if err != nil {
		return fallback, nil
	}
	return lang, nil
}

// SaveLanguage persists lang as the language preference.
func SaveLanguage(store PrefStore, lang Language) error {
	if _, err := ParseLanguage(string(lang)); err != nil {
		return err
	}
	if err := store.SetPref(languagePrefKey, string(lang)); err != nil {
		return fmt.Errorf("saving language preference: %w", err)
	}
	return nil
}
