package compose

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/domain"
	"golang.org/x/image/font/basicfont"
)

func writeBackground(t *testing.T, dir, name string, w, h int, fill color.Color) domain.ImageEntry {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, imaging.Save(imaging.New(w, h, fill), path))
	title, format := catalog.ParseFileName(name)
	return domain.ImageEntry{Title: title, Format: format, Location: path}
}

func newComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := New(nil, catalog.DirOpener{})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCompose(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, "anne-frank.png", 1000, 600, color.White)
	c := newComposer(t)

	out, err := c.Compose(context.Background(), domain.RenderSpec{
		Background: bg,
		Sentence:   `"Life is short."`,
		Author:     "anne frank",
	})
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MimeType)
	require.NotEmpty(t, out.Payload)

	data, err := out.Bytes()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 500, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy(), "height keeps the aspect ratio")

	// Untouched corner shows the shaded background.
	r, g, b, _ := img.At(2, 2).RGBA()
	for _, v := range []uint32{r >> 8, g >> 8, b >> 8} {
		assert.InDelta(t, 229, int(v), 6)
	}
}

func TestComposeDrawsText(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, "night.png", 500, 500, color.Black)
	c := newComposer(t)

	out, err := c.Compose(context.Background(), domain.RenderSpec{
		Background: bg,
		Sentence:   `"Life is short."`,
		Author:     "night",
	})
	require.NoError(t, err)

	data, err := out.Bytes()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	box := InsetBox(500, 500, 20)
	brightIn := func(rect image.Rectangle) int {
		n := 0
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			for x := rect.Min.X; x < rect.Max.X; x++ {
				if r, _, _, _ := img.At(x, y).RGBA(); r>>8 > 200 {
					n++
				}
			}
		}
		return n
	}

	center := Anchor(box, AlignCenter, AlignMiddle)
	assert.Positive(t, brightIn(image.Rect(center.X-100, center.Y-30, center.X+100, center.Y+30)), "sentence near the center")
	assert.Positive(t, brightIn(image.Rect(box.Max.X-120, box.Max.Y-45, box.Max.X, box.Max.Y)), "caption in the bottom-right corner")
	assert.Zero(t, brightIn(image.Rect(0, 0, 60, 60)), "top-left stays dark")
}

func TestDrawTextSentenceOverCaption(t *testing.T) {
	// Box width is exactly the 8-glyph width of the 7x13 face, so the right
	// aligned caption and the centered sentence land on the same pixels.
	c := NewWithFace(&Config{Margin: 20}, catalog.DirOpener{}, basicfont.Face7x13)
	c.captionInk = image.NewUniform(color.RGBA{R: 255, A: 255})
	c.sentenceInk = image.NewUniform(color.RGBA{G: 255, A: 255})

	canvas := image.NewNRGBA(image.Rect(0, 0, 20+56+20, 13+20))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	text := "- MMMMMM"
	box := InsetBox(canvas.Bounds().Dx(), canvas.Bounds().Dy(), 20)
	caption := Layout(c.face, text, box, AlignRight, AlignBottom)
	sentence := Layout(c.face, text, box, AlignCenter, AlignMiddle)
	require.Len(t, caption.Lines, 1)
	require.Len(t, sentence.Lines, 1)
	require.Equal(t, caption.Lines[0].Dot, sentence.Lines[0].Dot)

	require.NoError(t, c.drawText(canvas, domain.RenderSpec{Sentence: text, Author: "MMMMMM"}))

	var red, green int
	for y := 0; y < canvas.Bounds().Dy(); y++ {
		for x := 0; x < canvas.Bounds().Dx(); x++ {
			px := canvas.NRGBAAt(x, y)
			if px.R > 0 {
				red++
			}
			if px.G > 0 {
				green++
			}
		}
	}
	assert.Positive(t, green, "sentence ink visible")
	assert.Zero(t, red, "caption ink covered by the sentence")
}

func TestComposeErrors(t *testing.T) {
	dir := t.TempDir()
	c := newComposer(t)

	t.Run("missing background", func(t *testing.T) {
		_, err := c.Compose(context.Background(), domain.RenderSpec{
			Background: domain.ImageEntry{Title: "ghost", Location: filepath.Join(dir, "ghost.png")},
		})
		var renderErr *RenderError
		require.True(t, errors.As(err, &renderErr))
		assert.Equal(t, "open", renderErr.Op)
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

		_, err := c.Compose(context.Background(), domain.RenderSpec{
			Background: domain.ImageEntry{Title: "notes", Format: "txt", Location: path},
		})
		var renderErr *RenderError
		require.True(t, errors.As(err, &renderErr))
		assert.Equal(t, "decode", renderErr.Op)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Compose(ctx, domain.RenderSpec{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestComposeAfterClose(t *testing.T) {
	dir := t.TempDir()
	bg := writeBackground(t, dir, "a.png", 100, 100, color.White)

	c, err := New(nil, catalog.DirOpener{})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err = c.Compose(context.Background(), domain.RenderSpec{Background: bg, Sentence: `"x"`})
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, "font", renderErr.Op)
}

func TestLoadFace(t *testing.T) {
	face, err := LoadFace("", 32)
	require.NoError(t, err)
	assert.Positive(t, face.Metrics().Height.Ceil())
	require.NoError(t, face.Close())

	_, err = LoadFace(filepath.Join(t.TempDir(), "missing.ttf"), 32)
	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, "font", renderErr.Op)

	bad := filepath.Join(t.TempDir(), "bad.ttf")
	require.NoError(t, os.WriteFile(bad, []byte("garbage"), 0o644))
	_, err = LoadFace(bad, 32)
	assert.True(t, errors.As(err, &renderErr))
}

func TestNormalizeConfig(t *testing.T) {
	c := normalize(&Config{Width: -1, JPEGQuality: 500, Shade: 2, Margin: -3})
	def := DefaultConfig()
	assert.Equal(t, def.Width, c.Width)
	assert.Equal(t, def.JPEGQuality, c.JPEGQuality)
	assert.Equal(t, def.Shade, c.Shade)
	assert.Equal(t, def.Margin, c.Margin)
	assert.Equal(t, def.FontSize, c.FontSize)
}
