package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/storefront/internal/lib/email"
)

func TestRenderPreview(t *testing.T) {
	for _, name := range email.Templates {
		t.Run(string(name), func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, renderPreview(&out, name))
			assert.Contains(t, out.String(), "Storefront")
		})
	}

	var out bytes.Buffer
	assert.Error(t, renderPreview(&out, email.Template("missing")))
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd()
	for _, use := range []string{"serve", "worker", "migrate", "email-preview"} {
		cmd, _, err := root.Find([]string{use})
		require.NoError(t, err)
		assert.Equal(t, use, cmd.Name())
	}

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("with-worker"))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"email-preview", "welcome"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Valentina")
}
