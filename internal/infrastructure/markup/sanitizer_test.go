package markup

import (
	"strings"
	"testing"

	"signup-e2e/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
)

func clean(raw string) string {
	return NewSanitizer(DefaultConfig(), logger.NewNop()).Clean(raw)
}

func TestClean_RemovesScriptStyleAndComments(t *testing.T) {
	out := clean(`<html><head><title>Sign up</title><style>.x{}</style></head>
<body>
	<!-- tracking -->
	<div id="main">Hello</div>
	<script>alert("hi")</script>
	<noscript>enable js</noscript>
</body></html>`)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.NotContains(t, out, "tracking")
	assert.NotContains(t, out, "enable js")
	assert.Contains(t, out, `<div id="main">Hello</div>`)
	assert.Contains(t, out, "<title>Sign up</title>")
}

func TestClean_KeepsSelectorAttributes(t *testing.T) {
	out := clean(`<body>
	<button id="create" class="btn" data-testid="create-account" aria-label="Create" style="color:red" onclick="go()">Create</button>
	<a href="javascript:void(0)">x</a>
</body>`)

	assert.Contains(t, out, `id="create"`)
	assert.Contains(t, out, `class="btn"`)
	assert.Contains(t, out, `data-testid="create-account"`)
	assert.Contains(t, out, `aria-label="Create"`)
	assert.NotContains(t, out, "style=")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
}

func TestClean_RedactsPasswordValues(t *testing.T) {
	out := clean(`<body>
	<input type="email" name="email" value="qa@example.com">
	<input type="PASSWORD" name="password" value="Secret123!">
</body>`)

	assert.Contains(t, out, `value="qa@example.com"`)
	assert.NotContains(t, out, "Secret123!")
	assert.Contains(t, out, `value="[redacted]"`)
}

func TestClean_Truncates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOutputSize = 100
	out := NewSanitizer(cfg, nil).Clean("<body><p>" + strings.Repeat("a", 500) + "</p></body>")

	assert.True(t, strings.HasSuffix(out, "<!-- markup truncated -->"))
	assert.Less(t, len(out), 200)
}

func TestDefaultConfig_ReturnsIndependentCopies(t *testing.T) {
	a := DefaultConfig()
	a.RedactInputTypes[0] = "text"

	assert.Equal(t, []string{"password"}, DefaultConfig().RedactInputTypes)
}

func TestClean_EmptyInput(t *testing.T) {
	assert.Equal(t, "", clean(""))
	assert.Equal(t, "  ", clean("  "))
}
