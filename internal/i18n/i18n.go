// Package i18n renders user-facing messages in the configured language.
//
// Catalogs are embedded YAML files, one per locale, registered into an
// x/text message catalog with English as the fallback.
package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rituals/internal/model"
)

// BaseLocale is the fallback locale.
const BaseLocale = "en"

//go:embed locales/*.yaml
var localesFS embed.FS

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Translator formats messages for a set of supported locales.
type Translator struct {
	catalog *catalog.Builder
	matcher language.Matcher
	tags    []language.Tag
}

// New loads the embedded catalogs.
func New() (*Translator, error) {
	return LoadFromFS(localesFS)
}

// LoadFromFS loads locales/*.yaml from fsys.
func LoadFromFS(fsys fs.FS) (*Translator, error) {
	paths, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	sort.Strings(paths)

	base := language.Make(BaseLocale)
	b := catalog.NewBuilder(catalog.Fallback(base))
	tags := []language.Tag{}
	hasBase := false

	for _, path := range paths {
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		tag, err := language.Parse(strings.TrimSpace(file.Locale))
		if err != nil {
			return nil, fmt.Errorf("catalog %s: parse locale %q: %w", path, file.Locale, err)
		}
		for key, value := range file.Messages {
			if err := b.SetString(tag, key, value); err != nil {
				return nil, fmt.Errorf("catalog %s: key %q: %w", path, key, err)
			}
		}
		if tag == base {
			hasBase = true
			// The matcher falls back to its first tag
			tags = append([]language.Tag{tag}, tags...)
		} else {
			tags = append(tags, tag)
		}
	}

	if !hasBase {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}

	return &Translator{
		catalog: b,
		matcher: language.NewMatcher(tags),
		tags:    tags,
	}, nil
}

// Locales returns the supported locale tags, base locale first.
func (t *Translator) Locales() []string {
	out := make([]string, len(t.tags))
	for i, tag := range t.tags {
		out[i] = tag.String()
	}
	return out
}

// Printer returns a printer for the closest supported match of lang.
func (t *Translator) Printer(lang string) *message.Printer {
	desired, _, _ := language.ParseAcceptLanguage(lang)
	_, idx, _ := t.matcher.Match(desired...)
	return message.NewPrinter(t.tags[idx], message.Catalog(t.catalog))
}

// T formats the message registered under key.
func (t *Translator) T(lang, key string, args ...any) string {
	return t.Printer(lang).Sprintf(key, args...)
}

// Error renders err for display. Coded errors get a localized message;
// anything else falls back to err.Error().
func (t *Translator) Error(lang string, err error) string {
	if err == nil {
		return ""
	}

	var me *model.Error
	if !errors.As(err, &me) {
		return err.Error()
	}

	detail := me.Message
	switch me.Code {
	case model.ErrCodeRitualNotFound, model.ErrCodeMalformedResponseKey:
		detail = me.ID
	}
	return t.T(lang, "error."+string(me.Code), detail)
}

// DueLabel translates a model due label.
func (t *Translator) DueLabel(lang, label string) string {
	switch label {
	case model.DueLabelNew:
		return t.T(lang, "due.new")
	case model.DueLabelDue:
		return t.T(lang, "due.due")
	case model.DueLabelUpToDate:
		return t.T(lang, "due.up_to_date")
	}
	return label
}
