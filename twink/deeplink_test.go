package twink

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOpenLink(t *testing.T) {
	link, ok := ParseOpenLink(url.Values{"open": {"personal_1_2"}, "label": {"Alice A"}})
	require.True(t, ok)
	assert.Equal(t, "personal_1_2", link.Room)
	assert.Equal(t, "Alice A", link.Label)
}

func TestParseOpenLinkDefaultLabel(t *testing.T) {
	link, ok := ParseOpenLink(url.Values{"open": {"r1"}})
	require.True(t, ok)
	assert.Equal(t, "Chat", link.Label)
}

func TestParseOpenLinkAbsent(t *testing.T) {
	_, ok := ParseOpenLink(url.Values{"label": {"Alice A"}})
	assert.False(t, ok)
}

func TestStripOpenLink(t *testing.T) {
	u, err := url.Parse("https://example.com/chat/?open=r1&label=Alice&theme=dark")
	require.NoError(t, err)

	StripOpenLink(u)

	q := u.Query()
	assert.False(t, q.Has("open"))
	assert.False(t, q.Has("label"))
	assert.Equal(t, "dark", q.Get("theme"), "unrelated parameters survive")
}
