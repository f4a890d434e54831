package compose

import (
	"image"
	"strings"
	"unicode"

	"golang.org/x/image/font"
)

// HAlign is the horizontal alignment of a text block inside its box.
type HAlign int

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

// VAlign is the vertical alignment of a text block inside its box.
type VAlign int

const (
	AlignTop VAlign = iota
	AlignMiddle
	AlignBottom
)

// Line is one wrapped line of text. Dot is the baseline origin passed to font.Drawer.
type Line struct {
	Text  string
	Dot   image.Point
	Width int
}

// TextBlock is a laid out, wrapped piece of text.
type TextBlock struct {
	Lines  []Line
	Bounds image.Rectangle
}

// InsetBox is the area text is laid out in: margin px from the left, right and
// bottom edges, flush with the top edge.
func InsetBox(width, height, margin int) image.Rectangle {
	return image.Rect(margin, 0, width-margin, height-margin)
}

// Anchor returns the point a block aligned with h and v is pinned to.
// Right/bottom alignment pins to the bottom-right corner, center/middle to the box center.
func Anchor(box image.Rectangle, h HAlign, v VAlign) image.Point {
	var p image.Point
	switch h {
	case AlignLeft:
		p.X = box.Min.X
	case AlignCenter:
		p.X = box.Min.X + box.Dx()/2
	case AlignRight:
		p.X = box.Max.X
	}
	switch v {
	case AlignTop:
		p.Y = box.Min.Y
	case AlignMiddle:
		p.Y = box.Min.Y + box.Dy()/2
	case AlignBottom:
		p.Y = box.Max.Y
	}
	return p
}

// Layout wraps text to the width of box and positions every line according to h and v.
// Blocks taller than the box overflow it; they are never clipped.
func Layout(face font.Face, text string, box image.Rectangle, h HAlign, v VAlign) TextBlock {
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	ascent := metrics.Ascent.Ceil()

	wrapped := wrap(face, text, box.Dx())
	blockHeight := lineHeight * len(wrapped)

	var top int
	switch v {
	case AlignTop:
		top = box.Min.Y
	case AlignMiddle:
		top = box.Min.Y + (box.Dy()-blockHeight)/2
	case AlignBottom:
		top = box.Max.Y - blockHeight
	}

	block := TextBlock{Lines: make([]Line, 0, len(wrapped))}
	minX, maxX := box.Max.X, box.Min.X
	for i, text := range wrapped {
		width := font.MeasureString(face, text).Ceil()

		var x int
		switch h {
		case AlignLeft:
			x = box.Min.X
		case AlignCenter:
			x = box.Min.X + (box.Dx()-width)/2
		case AlignRight:
			x = box.Max.X - width
		}

		minX = min(minX, x)
		maxX = max(maxX, x+width)
		block.Lines = append(block.Lines, Line{
			Text:  text,
			Dot:   image.Pt(x, top+i*lineHeight+ascent),
			Width: width,
		})
	}

	if len(block.Lines) > 0 {
		block.Bounds = image.Rect(minX, top, maxX, top+blockHeight)
	}
	return block
}

// wrap greedily breaks text into lines no wider than maxWidth.
// Explicit newlines are kept and words wider than a line are split by rune.
// Spacing between words on the same line is kept as typed; a run of spaces
// at a line break is dropped.
func wrap(face font.Face, text string, maxWidth int) []string {
	maxWidth = max(maxWidth, 1)

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		words := splitWords(paragraph)
		if len(words) == 0 {
			continue
		}

		current := ""
		for _, w := range words {
			candidate := w.text
			if current != "" {
				candidate = current + w.sep + w.text
			}
			if fits(face, candidate, maxWidth) {
				current = candidate
				continue
			}
			if current != "" {
				lines = append(lines, current)
			}
			current = w.text
			for !fits(face, current, maxWidth) {
				head, tail := splitToWidth(face, current, maxWidth)
				lines = append(lines, head)
				current = tail
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

type word struct {
	sep  string // spacing typed before the word, tabs turned into spaces
	text string
}

func splitWords(paragraph string) []word {
	var (
		words []word
		sep   strings.Builder
		text  strings.Builder
	)
	flush := func() {
		if text.Len() > 0 {
			words = append(words, word{sep: sep.String(), text: text.String()})
			sep.Reset()
			text.Reset()
		}
	}
	for _, r := range paragraph {
		if unicode.IsSpace(r) {
			flush()
			sep.WriteByte(' ')
			continue
		}
		text.WriteRune(r)
	}
	flush()
	return words
}

func fits(face font.Face, s string, maxWidth int) bool {
	return font.MeasureString(face, s).Ceil() <= maxWidth
}

// splitToWidth cuts the longest prefix of s that fits maxWidth, keeping at least one rune.
func splitToWidth(face font.Face, s string, maxWidth int) (string, string) {
	runes := []rune(s)
	n := 1
	for n < len(runes) && fits(face, string(runes[:n+1]), maxWidth) {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}
