// Package caption derives fixed-template scene captions from the karts
// visible in a single camera view.
package caption

import (
	"fmt"

	"github.com/intelligrit/stk-captions/internal/extractor"
	"github.com/intelligrit/stk-captions/internal/model"
)

const (
	// DefaultImageWidth and DefaultImageHeight are the image dimensions
	// kart coordinates are scaled to when the caller has no preference.
	DefaultImageWidth  = 150
	DefaultImageHeight = 100

	// MaxRelativeCaptions caps how many non-ego karts get a position caption.
	MaxRelativeCaptions = 2
)

// Horizontal and vertical relation words used in position captions.
const (
	Left    = "left"
	Right   = "right"
	InFront = "in front of"
	Behind  = "behind"
)

// ForView generates the captions for one view of an info file.
func ForView(infoPath string, viewIndex, imgWidth, imgHeight int) ([]string, error) {
	karts, err := extractor.ExtractKartObjects(infoPath, viewIndex, imgWidth, imgHeight)
	if err != nil {
		return nil, fmt.Errorf("extracting karts: %w", err)
	}
	track, err := extractor.ExtractTrackInfo(infoPath)
	if err != nil {
		return nil, fmt.Errorf("extracting track: %w", err)
	}
	return Generate(karts, track), nil
}

// Generate returns the captions for a view: a single empty-scene caption when
// no karts are visible, otherwise a summary caption followed by up to
// MaxRelativeCaptions position captions in input order.
func Generate(karts []model.KartObservation, track string) []string {
	if len(karts) == 0 {
		return []string{fmt.Sprintf("A scene on the %s track with no visible karts.", track)}
	}

	ego, _ := SelectEgo(karts)

	captions := make([]string, 0, 1+MaxRelativeCaptions)
	captions = append(captions, fmt.Sprintf("%s is the ego car on the %s track. There are %d karts visible.",
		ego.KartName, track, len(karts)))

	for _, other := range Others(karts, ego, MaxRelativeCaptions) {
		captions = append(captions, fmt.Sprintf("%s is %s and %s the ego car.",
			other.KartName, HorizontalRelation(ego, other), VerticalRelation(ego, other)))
	}

	return captions
}

// SelectEgo returns the first kart flagged as ego. When none is flagged the
// first kart is used and fallback is true. karts must be non-empty.
func SelectEgo(karts []model.KartObservation) (ego model.KartObservation, fallback bool) {
	for _, k := range karts {
		if k.IsEgo {
			return k, false
		}
	}
	return karts[0], true
}

// Others returns at most limit karts whose instance id differs from ego's, in input order.
func Others(karts []model.KartObservation, ego model.KartObservation, limit int) []model.KartObservation {
	var out []model.KartObservation
	for _, k := range karts {
		if len(out) == limit {
			break
		}
		if k.InstanceID == ego.InstanceID {
			continue
		}
		out = append(out, k)
	}
	return out
}

// HorizontalRelation reports whether other is left or right of ego. Ties are right.
func HorizontalRelation(ego, other model.KartObservation) string {
	if other.Center.X < ego.Center.X {
		return Left
	}
	return Right
}

// VerticalRelation reports whether other is in front of or behind ego.
// Smaller y is higher on screen, which is farther from the camera. Ties are behind.
func VerticalRelation(ego, other model.KartObservation) string {
	if other.Center.Y < ego.Center.Y {
		return InFront
	}
	return Behind
}
