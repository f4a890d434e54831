// Package compose renders a quoted sentence and its caption onto a background picture.
package compose

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/domain"
	"github.com/timmy/sentencebot/internal/quote"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp"
)

// Config holds rendering parameters.
type Config struct {
	FontPath    string  // TTF/OTF typeface; empty uses the bundled Go sans-serif
	FontSize    float64 // points at 72 DPI
	Width       int     // output width, height follows the aspect ratio
	Margin      int     // inset from the left, right and bottom edges
	JPEGQuality int     // 1-100, background detail kept before text is drawn
	Shade       float64 // 0-1, darkening applied so white text stays legible
}

// DefaultConfig returns the rendering parameters replies are produced with.
// Parameters: none.
// Returns:
//   - *Config: default composer configuration.
func DefaultConfig() *Config {
	return &Config{
		FontSize:    32,
		Width:       500,
		Margin:      20,
		JPEGQuality: 50,
		Shade:       0.10,
	}
}

// Composer turns a RenderSpec into a PNG. The typeface is loaded once and held
// until Close; a Composer is safe for concurrent use.
type Composer struct {
	cfg    Config
	opener catalog.Opener
	face   font.Face
	faceMu sync.Mutex // font.Face implementations cache glyphs and are not goroutine safe

	captionInk  image.Image
	sentenceInk image.Image
}

// New loads the configured typeface and returns a Composer reading backgrounds through opener.
// Parameters:
//   - cfg: rendering configuration; nil uses DefaultConfig.
//   - opener: resolves ImageEntry locations.
// Returns:
//   - *Composer: ready composer.
//   - error: *RenderError if the typeface cannot be loaded.
func New(cfg *Config, opener catalog.Opener) (*Composer, error) {
	c := normalize(cfg)

	face, err := LoadFace(c.FontPath, c.FontSize)
	if err != nil {
		return nil, err
	}

	return NewWithFace(&c, opener, face), nil
}

// NewWithFace builds a Composer around an already loaded face.
func NewWithFace(cfg *Config, opener catalog.Opener, face font.Face) *Composer {
	return &Composer{
		cfg:    normalize(cfg),
		opener:      opener,
		face:        face,
		captionInk:  image.NewUniform(color.White),
		sentenceInk: image.NewUniform(color.White),
	}
}

func normalize(cfg *Config) Config {
	def := DefaultConfig()
	if cfg == nil {
		return *def
	}
	c := *cfg
	if c.FontSize <= 0 {
		c.FontSize = def.FontSize
	}
	if c.Width <= 0 {
		c.Width = def.Width
	}
	if c.Margin < 0 {
		c.Margin = def.Margin
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = def.JPEGQuality
	}
	if c.Shade < 0 || c.Shade > 1 {
		c.Shade = def.Shade
	}
	return c
}

// LoadFace parses the typeface at path, or the bundled Go sans-serif when path is empty.
// Parameters:
//   - path: TTF/OTF file path, may be empty.
//   - size: face size in points.
// Returns:
//   - font.Face: face to draw with; release it with Close.
//   - error: *RenderError if the file cannot be read or parsed.
func LoadFace(path string, size float64) (font.Face, error) {
	data := goregular.TTF
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, renderErr("font", err)
		}
	}

	f, err := opentype.Parse(data)
	if err != nil {
		return nil, renderErr("font", fmt.Errorf("failed to parse typeface: %w", err))
	}

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, renderErr("font", fmt.Errorf("failed to create face: %w", err))
	}
	return face, nil
}

// Close releases the typeface.
func (c *Composer) Close() error {
	c.faceMu.Lock()
	defer c.faceMu.Unlock()
	if c.face == nil {
		return nil
	}
	err := c.face.Close()
	c.face = nil
	return err
}

// Config returns the effective rendering configuration.
func (c *Composer) Config() Config {
	return c.cfg
}

// Compose renders spec into a base64 PNG.
// The background is resized to the configured width, degraded to the configured
// JPEG quality and shaded; then the caption ("- author") is drawn right/bottom
// aligned and the sentence centered, in that order so the sentence stays on top.
// Parameters:
//   - ctx: context for cancellation of the background read.
//   - spec: background, sentence and author to render.
// Returns:
//   - domain.EncodedImage: PNG payload.
//   - error: *RenderError when any step fails.
func (c *Composer) Compose(ctx context.Context, spec domain.RenderSpec) (domain.EncodedImage, error) {
	if err := ctx.Err(); err != nil {
		return domain.EncodedImage{}, renderErr("open", err)
	}

	rc, err := c.opener.Open(ctx, spec.Background.Location)
	if err != nil {
		return domain.EncodedImage{}, renderErr("open", err)
	}
	defer rc.Close()

	src, err := imaging.Decode(rc, imaging.AutoOrientation(true))
	if err != nil {
		return domain.EncodedImage{}, renderErr("decode", fmt.Errorf("%s: %w", spec.Background.Title, err))
	}

	canvas, err := c.prepareBackground(src)
	if err != nil {
		return domain.EncodedImage{}, err
	}

	if err := c.drawText(canvas, spec); err != nil {
		return domain.EncodedImage{}, err
	}

	var out bytes.Buffer
	if err := imaging.Encode(&out, canvas, imaging.PNG); err != nil {
		return domain.EncodedImage{}, renderErr("encode", err)
	}

	return domain.NewEncodedImage(domain.MimeTypePNG, out.Bytes()), nil
}

// prepareBackground resizes, degrades and shades the background.
func (c *Composer) prepareBackground(src image.Image) (*image.NRGBA, error) {
	resized := imaging.Resize(src, c.cfg.Width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(c.cfg.JPEGQuality)); err != nil {
		return nil, renderErr("quality", err)
	}
	degraded, err := imaging.Decode(&buf)
	if err != nil {
		return nil, renderErr("quality", err)
	}

	bounds := degraded.Bounds()
	shade := imaging.New(bounds.Dx(), bounds.Dy(), color.Black)
	return imaging.Overlay(degraded, shade, image.Pt(0, 0), c.cfg.Shade), nil
}

func (c *Composer) drawText(canvas draw.Image, spec domain.RenderSpec) error {
	c.faceMu.Lock()
	defer c.faceMu.Unlock()

	if c.face == nil {
		return renderErr("font", fmt.Errorf("composer is closed"))
	}

	bounds := canvas.Bounds()
	box := InsetBox(bounds.Dx(), bounds.Dy(), c.cfg.Margin)

	caption := Layout(c.face, quote.Caption(spec.Author), box, AlignRight, AlignBottom)
	sentence := Layout(c.face, spec.Sentence, box, AlignCenter, AlignMiddle)

	// The sentence is drawn last so it stays on top where the two overlap.
	c.drawBlock(canvas, caption, c.captionInk)
	c.drawBlock(canvas, sentence, c.sentenceInk)
	return nil
}

func (c *Composer) drawBlock(canvas draw.Image, block TextBlock, ink image.Image) {
	d := &font.Drawer{
		Dst:  canvas,
		Src:  ink,
		Face: c.face,
	}
	for _, line := range block.Lines {
		d.Dot = fixed.P(line.Dot.X, line.Dot.Y)
		d.DrawString(line.Text)
	}
}
