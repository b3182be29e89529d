package i18n

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func readCatalog(t *testing.T, path string) catalogFile {
	t.Helper()
	data, err := fs.ReadFile(localesFS, path)
	require.NoError(t, err)
	var file catalogFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	return file
}
