// Package captcha renders image challenges for the anonymous signup flow.
package captcha

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand/v2"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
)

var background = color.RGBA{R: 0xf0, G: 0xf3, B: 0xf8, A: 0xff}

type Options struct {
	Width      int
	Height     int
	Length     int
	Dots       int
	Arcs       int
	Lines      int
	GlyphScale int
}

func DefaultOptions() Options {
	return Options{Width: 120, Height: 30, Length: 5, Dots: 30, Arcs: 20, Lines: 5, GlyphScale: 2}
}

// Generator draws captchas from its own random source; a Generator is not safe for concurrent use.
type Generator struct {
	opts Options
	rnd  *rand.Rand
}

func New(opts Options) *Generator {
	return &Generator{opts: opts, rnd: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded is deterministic; tests use it.
func NewSeeded(opts Options, seed uint64) *Generator {
	return &Generator{opts: opts, rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Generate returns the PNG bytes and the uppercase answer.
func (g *Generator) Generate() ([]byte, string, error) {
	img, code := g.Render()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), code, nil
}

// Render draws the challenge without encoding it.
func (g *Generator) Render() (*image.RGBA, string) {
	o := g.opts
	canvas := image.NewRGBA(image.Rect(0, 0, o.Width, o.Height))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	code := make([]byte, o.Length)
	slot := o.Width / o.Length
	for i := range code {
		code[i] = byte('A' + g.rnd.IntN(26))
		g.drawGlyph(canvas, code[i], i*slot+g.rnd.IntN(3), g.rnd.IntN(5)-2)
	}

	for range o.Dots {
		canvas.Set(g.rnd.IntN(o.Width+1), g.rnd.IntN(o.Height+1), g.color())
	}
	for range o.Arcs {
		x, y := g.rnd.IntN(o.Width+1), g.rnd.IntN(o.Height+1)
		canvas.Set(x, y, g.color())
		drawArc(canvas, x+2, y+2, 2, g.color())
	}
	for range o.Lines {
		drawLine(canvas, g.rnd.IntN(o.Width+1), g.rnd.IntN(o.Height+1),
			g.rnd.IntN(o.Width+1), g.rnd.IntN(o.Height+1), background)
	}

	return g.distort(canvas), string(code)
}

func (g *Generator) color() color.RGBA {
	return color.RGBA{
		R: uint8(g.rnd.IntN(256)),
		G: uint8(10 + g.rnd.IntN(246)),
		B: uint8(64 + g.rnd.IntN(192)),
		A: 0xff,
	}
}

// drawGlyph renders ch with the 7x13 bitmap face and scales it up onto dst at (x, dy).
func (g *Generator) drawGlyph(dst *image.RGBA, ch byte, x, dy int) {
	face := basicfont.Face7x13
	glyph := image.NewRGBA(image.Rect(0, 0, face.Advance, face.Height))
	d := &font.Drawer{
		Dst:  glyph,
		Src:  image.NewUniform(g.color()),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(string(ch))

	s := g.opts.GlyphScale
	top := (g.opts.Height-face.Height*s)/2 + dy
	target := image.Rect(x, top, x+face.Advance*s, top+face.Height*s)
	draw.NearestNeighbor.Scale(dst, target, glyph, glyph.Bounds(), draw.Over, nil)
}

// distort applies a slight random affine transform (scale +/-2%, shear +/-1%) with bilinear sampling.
func (g *Generator) distort(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	m := f64.Aff3{
		1 + g.uniform(0.02), g.uniform(0.01), 0,
		g.uniform(0.01), 1 + g.uniform(0.02), 0,
	}
	draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Over, nil)
	return dst
}

func (g *Generator) uniform(span float64) float64 {
	return (g.rnd.Float64()*2 - 1) * span
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.Color) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawArc plots the first quadrant of a circle centred at (cx, cy).
func drawArc(img *image.RGBA, cx, cy, r int, c color.Color) {
	for deg := 0; deg <= 90; deg += 10 {
		rad := float64(deg) * math.Pi / 180
		img.Set(cx+int(math.Round(float64(r)*math.Cos(rad))), cy+int(math.Round(float64(r)*math.Sin(rad))), c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
