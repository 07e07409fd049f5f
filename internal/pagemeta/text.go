package pagemeta

import (
	"bytes"
	"math"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// CountWords counts the words of rendered HTML. Every Han, Hiragana, Katakana
// or Hangul rune is one word; other words are runs of letters and digits.
// Text inside <script> and <style> is ignored.
func CountWords(rendered []byte) int {
	z := html.NewTokenizer(bytes.NewReader(rendered))
	words := 0
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or malformed input; either way the count so far stands.
			return words
		case html.StartTagToken:
			if name, _ := z.TagName(); isSkippedTag(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isSkippedTag(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				words += countText(string(z.Text()))
			}
		}
	}
}

func isSkippedTag(name []byte) bool {
	return string(name) == "script" || string(name) == "style"
}

func countText(s string) int {
	n := 0
	inWord := false
	for _, r := range s {
		switch {
		case isCJK(r):
			n++
			inWord = false
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if !inWord {
				n++
				inWord = true
			}
		case r == '\'' || r == '’':
			// Apostrophes keep English contractions one word.
		default:
			inWord = false
		}
	}
	return n
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

// ReadingTimeFor converts a word count into minutes, rounded up to one decimal.
func ReadingTimeFor(words, wordsPerMinute int) ReadingTime {
	if wordsPerMinute <= 0 || words <= 0 {
		return ReadingTime{Words: max(words, 0)}
	}
	minutes := math.Ceil(float64(words)*10/float64(wordsPerMinute)) / 10
	return ReadingTime{Minutes: minutes, Words: words}
}

// Excerpt returns the paragraph text of rendered HTML with whitespace
// collapsed, cut to limit runes with "..." appended when shortened.
func Excerpt(rendered []byte, limit int) (string, error) {
	if limit <= 0 {
		return "", nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(rendered))
	if err != nil {
		return "", err
	}
	var parts []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		if t := strings.Join(strings.Fields(s.Text()), " "); t != "" {
			parts = append(parts, t)
		}
	})
	text := strings.Join(parts, " ")
	runes := []rune(text)
	if len(runes) <= limit {
		return text, nil
	}
	return strings.TrimRightFunc(string(runes[:limit]), unicode.IsSpace) + "...", nil
}
