package render

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/intelligrit/stk-captions/internal/model"
)

func blank(w, h int) *image.NRGBA {
	return imaging.New(w, h, color.NRGBA{A: 255})
}

func TestAnnotate(t *testing.T) {
	src := blank(100, 100)
	dets := []model.Detection{
		{ClassID: model.ObjectKart, TrackID: 0, Box: model.Box{X1: 10, Y1: 10, X2: 30, Y2: 30}},
		{ClassID: model.ObjectKart, TrackID: 1, Box: model.Box{X1: 50, Y1: 50, X2: 70, Y2: 70}},
		{ClassID: model.ObjectTrackElement, TrackID: 0, Box: model.Box{X1: 0, Y1: 80, X2: 99, Y2: 99}},
		{ClassID: model.ObjectKart, TrackID: 2, Box: model.Box{X1: -50, Y1: 0, X2: -10, Y2: 20}},
	}
	karts := []model.KartObservation{
		{InstanceID: 0, KartName: "tux", IsEgo: true, Box: dets[0].Box},
		{InstanceID: 1, KartName: "gnu", Box: dets[1].Box},
	}

	out := Annotate(src, dets, karts, "Frame 1, View 0")

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{10, 25, EgoColor},
		{30, 25, EgoColor},
		{50, 60, ClassColor(model.ObjectKart)},
		{0, 90, ClassColor(model.ObjectTrackElement)},
		{20, 20, color.NRGBA{A: 255}},
		{0, 30, color.NRGBA{A: 255}},
	}
	for _, tt := range tests {
		if got := out.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}

	if got := src.NRGBAAt(10, 25); got != (color.NRGBA{A: 255}) {
		t.Error("source image was modified")
	}
}

func TestAnnotateNoEgoUsesClassColor(t *testing.T) {
	dets := []model.Detection{
		{ClassID: model.ObjectKart, TrackID: 0, Box: model.Box{X1: 10, Y1: 20, X2: 30, Y2: 40}},
	}

	out := Annotate(blank(50, 50), dets, nil, "")

	if got := out.NRGBAAt(10, 30); got != ClassColor(model.ObjectKart) {
		t.Errorf("expected kart color without ego, got %v", got)
	}
}

func TestClassColorUnknown(t *testing.T) {
	if got := ClassColor(model.ObjectType(42)); got != LabelColor {
		t.Errorf("expected fallback color, got %v", got)
	}
}

func TestAnnotateFile(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "0000a_00_im.png")
	if err := imaging.Save(blank(150, 100), imagePath); err != nil {
		t.Fatalf("saving source image: %v", err)
	}

	info := &model.FrameInfo{
		Track: "snowmountain",
		Karts: []string{"tux", "hexley"},
		Detections: [][][]float64{{
			{1, 0, 270, 170, 330, 230},
			{1, 1, 100, 100, 160, 150},
		}},
	}

	outPath := filepath.Join(dir, "annotated.png")
	if err := AnnotateFile(imagePath, info, 0, outPath); err != nil {
		t.Fatalf("AnnotateFile: %v", err)
	}

	out, err := imaging.Open(outPath)
	if err != nil {
		t.Fatalf("opening output: %v", err)
	}
	if b := out.Bounds(); b.Dx() != 150 || b.Dy() != 100 {
		t.Errorf("expected 150x100 output, got %dx%d", b.Dx(), b.Dy())
	}

	// ego box spans (67.5,42.5)-(82.5,57.5) at this size; its right edge rounds to x=83
	r, g, b, _ := out.At(83, 50).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected red ego edge at (83,50), got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestAnnotateFileMissingImage(t *testing.T) {
	info := &model.FrameInfo{Detections: [][][]float64{{}}}
	err := AnnotateFile(filepath.Join(t.TempDir(), "missing.jpg"), info, 0, filepath.Join(t.TempDir(), "out.png"))
	if err == nil {
		t.Fatal("expected error for missing image")
	}
}
