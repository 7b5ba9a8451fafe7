package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// Ellipsis 截断后缀
const Ellipsis = "…"

// WrapText 将文本按指定宽度按词换行，单词本身超宽时按字符断开
func WrapText(textStr string, font *text.GoTextFace, maxWidth float64) []string {
	if textStr == "" || font == nil || maxWidth <= 0 {
		return []string{textStr}
	}
	if MeasureWidth(textStr, font) <= maxWidth {
		return []string{textStr}
	}

	var lines []string
	line := ""
	for _, word := range strings.Fields(textStr) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if MeasureWidth(candidate, font) <= maxWidth {
			line = candidate
			continue
		}
		if line != "" {
			lines = append(lines, line)
		}
		// 单词本身超宽：逐字符断开
		line = ""
		for len(word) > 0 {
			r, size := utf8.DecodeRuneInString(word)
			next := line + string(r)
			if line != "" && MeasureWidth(next, font) > maxWidth {
				lines = append(lines, line)
				next = string(r)
			}
			line = next
			word = word[size:]
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// EllipsizeText 文本超宽时截断并加上省略号
func EllipsizeText(textStr string, font *text.GoTextFace, maxWidth float64) string {
	if font == nil || MeasureWidth(textStr, font) <= maxWidth {
		return textStr
	}
	runes := []rune(textStr)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := strings.TrimRight(string(runes[:n]), " ") + Ellipsis
		if MeasureWidth(candidate, font) <= maxWidth {
			return candidate
		}
	}
	return Ellipsis
}

// MeasureWidth 测量单行文本宽度
func MeasureWidth(textStr string, font *text.GoTextFace) float64 {
	if textStr == "" || font == nil {
		return 0
	}
	width, _ := text.Measure(textStr, font, 0)
	return width
}
