package extractor

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/intelligrit/stk-captions/internal/model"
)

const (
	// OriginalWidth and OriginalHeight are the pixel dimensions detections are recorded in.
	OriginalWidth  = 600
	OriginalHeight = 400

	// MinBoxSize is the smallest scaled box edge, in pixels, that still counts as visible.
	MinBoxSize = 5
)

// ErrViewOutOfRange is returned when a view index has no detections entry.
var ErrViewOutOfRange = errors.New("view index out of range")

// ExtractTrackInfo returns the track display name recorded in an info file.
func ExtractTrackInfo(infoPath string) (string, error) {
	info, err := LoadFrameInfo(infoPath)
	if err != nil {
		return "", err
	}
	return info.Track, nil
}

// ExtractKartObjects returns the karts visible in one view of an info file,
// with coordinates scaled to an imgWidth x imgHeight image.
func ExtractKartObjects(infoPath string, viewIndex, imgWidth, imgHeight int) ([]model.KartObservation, error) {
	info, err := LoadFrameInfo(infoPath)
	if err != nil {
		return nil, err
	}
	return KartsForView(info, viewIndex, imgWidth, imgHeight)
}

// ExtractDetections returns every detection in a view, scaled to the image size.
// Rows of all classes are kept; no visibility filtering is applied.
func ExtractDetections(info *model.FrameInfo, viewIndex, imgWidth, imgHeight int) ([]model.Detection, error) {
	if viewIndex < 0 || viewIndex >= info.ViewCount() {
		return nil, fmt.Errorf("view %d of %d: %w", viewIndex, info.ViewCount(), ErrViewOutOfRange)
	}

	scaleX := float64(imgWidth) / OriginalWidth
	scaleY := float64(imgHeight) / OriginalHeight

	rows := info.Detections[viewIndex]
	dets := make([]model.Detection, 0, len(rows))
	for i, row := range rows {
		if len(row) < 6 {
			return nil, fmt.Errorf("view %d detection %d: expected 6 fields, got %d", viewIndex, i, len(row))
		}
		dets = append(dets, model.Detection{
			ClassID: model.ObjectType(int(row[0])),
			TrackID: int(row[1]),
			Box: model.Box{
				X1: row[2] * scaleX,
				Y1: row[3] * scaleY,
				X2: row[4] * scaleX,
				Y2: row[5] * scaleY,
			},
		})
	}
	return dets, nil
}

// KartsForView converts a view's detections into kart observations.
// Non-kart rows, boxes under MinBoxSize and boxes entirely off-screen are dropped.
// The kart nearest the image center is flagged as ego; the camera follows it.
func KartsForView(info *model.FrameInfo, viewIndex, imgWidth, imgHeight int) ([]model.KartObservation, error) {
	dets, err := ExtractDetections(info, viewIndex, imgWidth, imgHeight)
	if err != nil {
		return nil, err
	}

	var karts []model.KartObservation
	for _, d := range dets {
		if d.ClassID != model.ObjectKart {
			continue
		}
		if !visible(d.Box, imgWidth, imgHeight) {
			continue
		}
		karts = append(karts, model.KartObservation{
			InstanceID: d.TrackID,
			KartName:   kartName(info, d.TrackID),
			Center:     d.Box.Center(),
			Box:        d.Box,
		})
	}

	if len(karts) == 0 {
		return karts, nil
	}

	cx, cy := float64(imgWidth)/2, float64(imgHeight)/2
	ego, best := 0, math.Inf(1)
	for i, k := range karts {
		d := math.Hypot(k.Center.X-cx, k.Center.Y-cy)
		if d < best {
			ego, best = i, d
		}
	}
	karts[ego].IsEgo = true

	return karts, nil
}

func visible(b model.Box, imgWidth, imgHeight int) bool {
	if b.Width() < MinBoxSize || b.Height() < MinBoxSize {
		return false
	}
	if b.X2 < 0 || b.X1 > float64(imgWidth) || b.Y2 < 0 || b.Y1 > float64(imgHeight) {
		return false
	}
	return true
}

func kartName(info *model.FrameInfo, trackID int) string {
	if trackID >= 0 && trackID < len(info.Karts) && info.Karts[trackID] != "" {
		return info.Karts[trackID]
	}
	return "kart_" + strconv.Itoa(trackID)
}

// ExtractFrameInfo parses "<hex frame id>_<view>_im.jpg" into its frame id and view index.
// Unparseable names yield (0, 0).
func ExtractFrameInfo(imagePath string) (frameID, viewIndex int) {
	parts := strings.Split(filepath.Base(imagePath), "_")
	if len(parts) < 2 {
		return 0, 0
	}
	f, err := strconv.ParseInt(parts[0], 16, 64)
	if err != nil {
		return 0, 0
	}
	v, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0
	}
	return int(f), v
}

// BaseName strips the directory, extension and "_info" suffix from an info path.
func BaseName(infoPath string) string {
	stem := strings.TrimSuffix(filepath.Base(infoPath), filepath.Ext(infoPath))
	return strings.TrimSuffix(stem, "_info")
}

// ImageName returns the file name of a view's image, e.g. "00000_03_im.jpg".
func ImageName(baseName string, viewIndex int) string {
	return fmt.Sprintf("%s_%02d_im.jpg", baseName, viewIndex)
}
