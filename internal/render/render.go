// Package render draws detection boxes and kart labels onto view images
// for manual inspection of generated captions.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/intelligrit/stk-captions/internal/extractor"
	"github.com/intelligrit/stk-captions/internal/model"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	EgoColor   = color.NRGBA{R: 255, A: 255}
	LabelColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

	classColors = map[model.ObjectType]color.NRGBA{
		model.ObjectKart:            {G: 255, A: 255},
		model.ObjectTrackBoundary:   {R: 255, A: 255},
		model.ObjectTrackElement:    {B: 255, A: 255},
		model.ObjectSpecialElement1: {R: 255, G: 255, A: 255},
		model.ObjectSpecialElement2: {R: 255, B: 255, A: 255},
		model.ObjectSpecialElement3: {G: 255, B: 255, A: 255},
	}
)

// ClassColor returns the box color for a detection class. Unknown classes are white.
func ClassColor(t model.ObjectType) color.NRGBA {
	if c, ok := classColors[t]; ok {
		return c
	}
	return LabelColor
}

// Annotate returns a copy of img with every detection outlined and each kart
// labelled by name. The ego kart is outlined in EgoColor. A non-empty title is
// drawn in the top-left corner.
func Annotate(img image.Image, dets []model.Detection, karts []model.KartObservation, title string) *image.NRGBA {
	dst := imaging.Clone(img)

	egoID, hasEgo := 0, false
	for _, k := range karts {
		if k.IsEgo {
			egoID, hasEgo = k.InstanceID, true
			break
		}
	}

	for _, d := range dets {
		c := ClassColor(d.ClassID)
		if d.ClassID == model.ObjectKart && hasEgo && d.TrackID == egoID {
			c = EgoColor
		}
		drawRect(dst, d.Box, c)
	}

	for _, k := range karts {
		drawLabel(dst, k.KartName, int(k.Box.X1), int(k.Box.Y1)-2, LabelColor)
	}

	if title != "" {
		drawLabel(dst, title, 2, basicfont.Face7x13.Ascent+1, LabelColor)
	}

	return dst
}

// AnnotateFile renders one view of an info record onto its image and saves it
// to outPath. The output format follows the outPath extension.
func AnnotateFile(imagePath string, info *model.FrameInfo, viewIndex int, outPath string) error {
	img, err := imaging.Open(imagePath)
	if err != nil {
		return fmt.Errorf("opening image: %w", err)
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	dets, err := extractor.ExtractDetections(info, viewIndex, w, h)
	if err != nil {
		return err
	}
	karts, err := extractor.KartsForView(info, viewIndex, w, h)
	if err != nil {
		return err
	}

	frameID, _ := extractor.ExtractFrameInfo(imagePath)
	out := Annotate(img, dets, karts, fmt.Sprintf("Frame %d, View %d", frameID, viewIndex))

	if err := imaging.Save(out, outPath); err != nil {
		return fmt.Errorf("saving annotated image: %w", err)
	}
	return nil
}

func drawRect(dst *image.NRGBA, b model.Box, c color.NRGBA) {
	bounds := dst.Bounds()
	if b.X2 < float64(bounds.Min.X) || b.X1 >= float64(bounds.Max.X) ||
		b.Y2 < float64(bounds.Min.Y) || b.Y1 >= float64(bounds.Max.Y) {
		return
	}
	x1 := clamp(int(math.Round(b.X1)), bounds.Min.X, bounds.Max.X-1)
	x2 := clamp(int(math.Round(b.X2)), bounds.Min.X, bounds.Max.X-1)
	y1 := clamp(int(math.Round(b.Y1)), bounds.Min.Y, bounds.Max.Y-1)
	y2 := clamp(int(math.Round(b.Y2)), bounds.Min.Y, bounds.Max.Y-1)
	if x1 > x2 || y1 > y2 {
		return
	}

	for x := x1; x <= x2; x++ {
		dst.SetNRGBA(x, y1, c)
		dst.SetNRGBA(x, y2, c)
	}
	for y := y1; y <= y2; y++ {
		dst.SetNRGBA(x1, y, c)
		dst.SetNRGBA(x2, y, c)
	}
}

func drawLabel(dst *image.NRGBA, text string, x, y int, c color.NRGBA) {
	if y < basicfont.Face7x13.Ascent {
		y = basicfont.Face7x13.Ascent
	}
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
