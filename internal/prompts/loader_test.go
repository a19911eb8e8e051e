package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_KnownPrompts(t *testing.T) {
	for _, key := range []string{"batch-augment", "single-augment"} {
		prompt, err := Get("augment.json", key)
		require.NoError(t, err, key)
		assert.NotEmpty(t, prompt)
	}

	for _, key := range []string{"validate-privacy-policy", "validate-manifest", "validate-readme", "validate-config"} {
		prompt, err := Get("validate.json", key)
		require.NoError(t, err, key)
		assert.Contains(t, prompt, "{{.Content}}")
	}
}

func TestGet_MissingKey(t *testing.T) {
	_, err := Get("augment.json", "no-such-prompt")
	assert.Error(t, err)
}

func TestGet_MissingFile(t *testing.T) {
	_, err := Get("missing.json", "anything")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	out := Format("check {{.Path}} for {{.Platform}}", map[string]string{
		"Path":     "README.md",
		"Platform": "apple-app-store",
	})
	assert.Equal(t, "check README.md for apple-app-store", out)
	assert.False(t, strings.Contains(out, "{{."))
}
