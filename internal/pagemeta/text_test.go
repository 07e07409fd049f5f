package pagemeta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountWords(t *testing.T) {
	tests := []struct {
		name string
		html string
		want int
	}{
		{"english", "<p>Hello, world! It's fine.</p>", 4},
		{"chinese", "<p>项目规划，很重要。</p>", 7},
		{"mixed", "<h1>Go 语言</h1><p>v1.2 release</p>", 6},
		{"script ignored", "<p>one</p><script>var a = 1;</script><style>p{}</style>", 1},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountWords([]byte(tt.html)))
		})
	}
}

func TestReadingTimeFor(t *testing.T) {
	assert.Equal(t, ReadingTime{Minutes: 1, Words: 300}, ReadingTimeFor(300, 300))
	assert.Equal(t, ReadingTime{Minutes: 0.1, Words: 1}, ReadingTimeFor(1, 300))
	assert.Equal(t, ReadingTime{Minutes: 1.1, Words: 301}, ReadingTimeFor(301, 300))
	assert.Equal(t, ReadingTime{}, ReadingTimeFor(0, 300))
	assert.Equal(t, ReadingTime{Words: 5}, ReadingTimeFor(5, 0))
}

func TestExcerpt(t *testing.T) {
	html := []byte("<h1>Title</h1><p>First   paragraph\nwraps.</p><ul><li>skip</li></ul><p>第二段</p>")

	got, err := Excerpt(html, 100)
	require.NoError(t, err)
	assert.Equal(t, "First paragraph wraps. 第二段", got)

	got, err = Excerpt(html, 6)
	require.NoError(t, err)
	assert.Equal(t, "First...", got)

	got, err = Excerpt(html, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}
