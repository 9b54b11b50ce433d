package web

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetsStripPrefix(t *testing.T) {
	assets, err := Assets()
	require.NoError(t, err)

	for _, name := range []string{"css/app.css", "js/forms.js"} {
		_, err := fs.Stat(assets, name)
		assert.NoError(t, err, name)
	}
}

func TestTemplatePatternsMatchFiles(t *testing.T) {
	for _, pattern := range TemplatePatterns {
		matches, err := fs.Glob(Templates(), pattern)
		require.NoError(t, err)
		assert.NotEmpty(t, matches, pattern)
	}
}
