package validation

import (
	"fmt"
	"io"

	"github.com/konstantinfoerster/loco-importer-go/internal/android"
	"github.com/konstantinfoerster/loco-importer-go/internal/config"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
)

// Validator applies global rules to every locale and language rules to the matching locale only.
// Each match counts as one error and is reported to the output.
type Validator struct {
	global     []Rule
	byLanguage map[string][]Rule
	exceptions map[string]bool
	out        io.Writer
}

func NewValidator(out io.Writer) *Validator {
	return &Validator{
		byLanguage: make(map[string][]Rule),
		exceptions: make(map[string]bool),
		out:        out,
	}
}

// FromConfig registers the forbidden sequences, the french e-mail rule and the exempted ids.
func FromConfig(cfg config.Validation, out io.Writer) *Validator {
	v := NewValidator(out)
	for _, seq := range cfg.ForbiddenSequencesOrDefault() {
		v.AddGlobal(NewSequenceRule(seq))
	}
	v.AddForLanguage("fr", FrenchEmailRule{})
	v.AddExceptions(cfg.Exceptions...)

	return v
}

func (v *Validator) AddGlobal(r Rule) {
	v.global = append(v.global, r)
}

// AddForLanguage registers a rule for a base language like "fr", regardless of region.
func (v *Validator) AddForLanguage(lang string, r Rule) {
	v.byLanguage[lang] = append(v.byLanguage[lang], r)
}

// AddExceptions exempts string ids from validation. Plural items are exempted by their plural name.
func (v *Validator) AddExceptions(ids ...string) {
	for _, id := range ids {
		v.exceptions[id] = true
	}
}

func (v *Validator) ValidateString(locale android.Locale, name, value string) int {
	if v.exceptions[name] {
		return 0
	}

	base, _ := locale.Tag.Base()
	text := cases.Lower(locale.Tag).String(value)

	count := 0
	for _, rules := range [][]Rule{v.global, v.byLanguage[base.String()]} {
		for _, r := range rules {
			if r.Matches(text) {
				count++
				_, _ = fmt.Fprintf(v.out, "[%s] %s: %s\n", locale.Acronym(), name, r.Explain(text))
			}
		}
	}

	return count
}

// ValidateFile checks every string and every plural item of the file.
func (v *Validator) ValidateFile(locale android.Locale, f *android.File) int {
	count := 0
	for _, e := range f.Entries {
		switch {
		case e.Kind == android.KindString && e.Tag == "string":
			count += v.ValidateString(locale, e.Name, e.Value)
		case e.Kind == android.KindPlurals:
			if v.exceptions[e.Name] {
				continue
			}
			for _, it := range e.Items {
				count += v.ValidateString(locale, e.Name+"-"+it.Quantity(), it.Value)
			}
		}
	}

	return count
}

// ValidateTree checks the strings.xml of every value folder below resDir.
func (v *Validator) ValidateTree(resDir string, folders []string) (int, error) {
	count := 0
	for _, folder := range folders {
		locale, err := android.LocaleOf(folder)
		if err != nil {
			return count, err
		}

		f, err := android.ParseFile(android.Path(resDir, folder))
		if err != nil {
			return count, err
		}

		errs := v.ValidateFile(locale, f)
		log.Debug().Str("locale", locale.Acronym()).Int("errors", errs).Msg("validated strings")
		count += errs
	}

	return count, nil
}
