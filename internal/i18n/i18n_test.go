package i18n

import (
	"errors"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rituals/internal/model"
)

func newTranslator(t *testing.T) *Translator {
	t.Helper()
	tr, err := New()
	require.NoError(t, err)
	return tr
}

func TestNew_BaseLocaleFirst(t *testing.T) {
	tr := newTranslator(t)
	assert.Equal(t, []string{"en", "fr"}, tr.Locales())
}

func TestT(t *testing.T) {
	tr := newTranslator(t)

	assert.Equal(t, "Average", tr.T("en", "stats.average"))
	assert.Equal(t, "Moyenne", tr.T("fr", "stats.average"))
	assert.Equal(t, "Moyenne", tr.T("fr-CA", "stats.average"))
	// Unsupported languages use the base locale
	assert.Equal(t, "Average", tr.T("de", "stats.average"))
	assert.Equal(t, "Average", tr.T("", "stats.average"))
}

func TestT_FormatsArguments(t *testing.T) {
	tr := newTranslator(t)

	assert.Equal(t,
		"Imported 1 new rituals, 2 participants, 3 questions, 4 entries",
		tr.T("en", "import.summary", 1, 2, 3, 4))
	assert.Equal(t, "Rituel R1 créé", tr.T("fr", "ritual.created", "R1"))
}

func TestError(t *testing.T) {
	tr := newTranslator(t)

	wrapped := fmt.Errorf("add entry: %w", model.NewRitualNotFoundError("R1"))
	assert.Equal(t, "Ritual not found: R1", tr.Error("en", wrapped))
	assert.Equal(t, "Rituel non trouvé : R1", tr.Error("fr", wrapped))

	storage := model.NewStorageUnavailableError("store is closed", nil)
	assert.Equal(t, "Storage is unavailable (store is closed)", tr.Error("en", storage))

	plain := errors.New("boom")
	assert.Equal(t, "boom", tr.Error("en", plain))
	assert.Equal(t, "", tr.Error("en", nil))
}

func TestDueLabel(t *testing.T) {
	tr := newTranslator(t)

	assert.Equal(t, "up to date", tr.DueLabel("en", model.DueLabelUpToDate))
	assert.Equal(t, "à faire", tr.DueLabel("fr", model.DueLabelDue))
	assert.Equal(t, "nouveau", tr.DueLabel("fr", model.DueLabelNew))
}

func TestLoadFromFS_RequiresBaseLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/fr.yaml": &fstest.MapFile{Data: []byte("locale: fr\nmessages:\n  a: b\n")},
	}
	_, err := LoadFromFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base locale")
}

func TestLoadFromFS_InvalidLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"locales/en.yaml": &fstest.MapFile{Data: []byte("locale: \"??\"\nmessages:\n  a: b\n")},
	}
	_, err := LoadFromFS(fsys)
	assert.Error(t, err)
}

func TestCatalogsDefineSameKeys(t *testing.T) {
	en := readCatalog(t, "locales/en.yaml")
	fr := readCatalog(t, "locales/fr.yaml")

	for key := range en.Messages {
		assert.Contains(t, fr.Messages, key, "fr is missing %q", key)
	}
	for _, code := range []model.ErrorCode{
		model.ErrCodeStorageUnavailable,
		model.ErrCodeRitualNotFound,
		model.ErrCodeInvalidTransferFormat,
		model.ErrCodeMalformedResponseKey,
		model.ErrCodeInvalidRitual,
	} {
		assert.Contains(t, en.Messages, "error."+string(code))
	}
}
