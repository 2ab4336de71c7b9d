package android

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const defaultValueFolder = "values"

// Locale of a value folder. The folder without suffix holds the english base strings.
type Locale struct {
	Folder string
	Tag    language.Tag
}

// LocaleOf derives the locale from a value folder name, e.g. values-fr or values-pt-rBR.
func LocaleOf(folder string) (Locale, error) {
	if folder == defaultValueFolder {
		return Locale{Folder: folder, Tag: language.English}, nil
	}

	suffix, ok := strings.CutPrefix(folder, defaultValueFolder+"-")
	if !ok || suffix == "" {
		return Locale{}, fmt.Errorf("'%s' is not a value folder", folder)
	}

	// Android writes regions as -rXX
	if lang, region, found := strings.Cut(suffix, "-r"); found {
		suffix = lang + "-" + region
	}

	tag, err := language.Parse(suffix)
	if err != nil {
		return Locale{}, fmt.Errorf("value folder '%s' has no valid locale: %w", folder, err)
	}

	return Locale{Folder: folder, Tag: tag}, nil
}

// Acronym is the short name shown in reports, e.g. en or fr.
func (l Locale) Acronym() string {
	return l.Tag.String()
}

func (l Locale) String() string {
	return l.Acronym()
}
