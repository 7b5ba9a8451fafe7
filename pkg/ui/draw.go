package ui

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// FillRect 绘制实心矩形
func FillRect(dst *ebiten.Image, r Rect, clr color.Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), clr, true)
}

// FillRoundRect 绘制圆角矩形（四角为圆，中间两块矩形）
func FillRoundRect(dst *ebiten.Image, r Rect, radius float64, clr color.Color) {
	radius = math.Min(radius, math.Min(r.W, r.H)/2)
	if radius <= 0 {
		FillRect(dst, r, clr)
		return
	}
	FillRect(dst, Rect{X: r.X + radius, Y: r.Y, W: r.W - 2*radius, H: r.H}, clr)
	FillRect(dst, Rect{X: r.X, Y: r.Y + radius, W: r.W, H: r.H - 2*radius}, clr)
	rr := float32(radius)
	for _, c := range [][2]float64{
		{r.X + radius, r.Y + radius},
		{r.X + r.W - radius, r.Y + radius},
		{r.X + radius, r.Y + r.H - radius},
		{r.X + r.W - radius, r.Y + r.H - radius},
	} {
		vector.DrawFilledCircle(dst, float32(c[0]), float32(c[1]), rr, clr, true)
	}
}

// FillTriangle 绘制实心三角形
func FillTriangle(dst *ebiten.Image, x0, y0, x1, y1, x2, y2 float64, clr color.Color) {
	r, g, b, a := clr.RGBA()
	cr, cg, cb, ca := float32(r)/0xffff, float32(g)/0xffff, float32(b)/0xffff, float32(a)/0xffff
	vs := []ebiten.Vertex{
		{DstX: float32(x0), DstY: float32(y0), SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		{DstX: float32(x1), DstY: float32(y1), SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
		{DstX: float32(x2), DstY: float32(y2), SrcX: 1, SrcY: 1, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: ca},
	}
	dst.DrawTriangles(vs, []uint16{0, 1, 2}, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// DrawText 以 (x, y) 为锚点绘制文本
func DrawText(dst *ebiten.Image, s string, face *text.GoTextFace, x, y float64, clr color.Color, align text.Align) {
	if face == nil || s == "" {
		return
	}
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.PrimaryAlign = align
	op.SecondaryAlign = text.AlignCenter
	text.Draw(dst, s, face, op)
}

// DrawImageFit 把 img 等比缩放居中绘制到 r 内，alpha 为不透明度
func DrawImageFit(dst, img *ebiten.Image, r Rect, alpha float32) {
	if img == nil || alpha <= 0 {
		return
	}
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	if w == 0 || h == 0 {
		return
	}
	scale := math.Min(r.W/w, r.H/h)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(r.X+(r.W-w*scale)/2, r.Y+(r.H-h*scale)/2)
	op.ColorScale.ScaleAlpha(alpha)
	op.Filter = ebiten.FilterLinear
	dst.DrawImage(img, op)
}

// DrawImageFill 把 img 拉伸铺满 r（用于 1x1 占位图）
func DrawImageFill(dst, img *ebiten.Image, r Rect, alpha float32) {
	if img == nil || alpha <= 0 {
		return
	}
	w, h := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(r.W/w, r.H/h)
	op.GeoM.Translate(r.X, r.Y)
	op.ColorScale.ScaleAlpha(alpha)
	dst.DrawImage(img, op)
}

// WithAlpha 返回乘上 alpha 的颜色
func WithAlpha(clr color.Color, alpha float64) color.Color {
	r, g, b, a := clr.RGBA()
	k := math.Max(0, math.Min(1, alpha))
	return color.RGBA64{
		R: uint16(float64(r) * k),
		G: uint16(float64(g) * k),
		B: uint16(float64(b) * k),
		A: uint16(float64(a) * k),
	}
}
