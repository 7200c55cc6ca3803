package model

// ObjectType classifies a detection row by its class id.
type ObjectType int

const (
	ObjectKart            ObjectType = 1
	ObjectTrackBoundary   ObjectType = 2
	ObjectTrackElement    ObjectType = 3
	ObjectSpecialElement1 ObjectType = 4
	ObjectSpecialElement2 ObjectType = 5
	ObjectSpecialElement3 ObjectType = 6
)

// String returns the display name of the object type.
func (t ObjectType) String() string {
	switch t {
	case ObjectKart:
		return "Kart"
	case ObjectTrackBoundary:
		return "Track Boundary"
	case ObjectTrackElement:
		return "Track Element"
	case ObjectSpecialElement1:
		return "Special Element 1"
	case ObjectSpecialElement2:
		return "Special Element 2"
	case ObjectSpecialElement3:
		return "Special Element 3"
	default:
		return "Unknown"
	}
}

// Point is a screen-space position. X grows rightward, Y grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned bounding box in screen space.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float64 { return b.X2 - b.X1 }

// Height returns the vertical extent of the box.
func (b Box) Height() float64 { return b.Y2 - b.Y1 }

// Center returns the midpoint of the box.
func (b Box) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Detection is one decoded detection row for a single view.
type Detection struct {
	ClassID ObjectType `json:"class_id"`
	TrackID int        `json:"track_id"`
	Box     Box        `json:"box"`
}

// KartObservation is a kart visible in one view.
type KartObservation struct {
	InstanceID int    `json:"instance_id"`
	KartName   string `json:"kart_name"`
	Center     Point  `json:"center"`
	IsEgo      bool   `json:"is_ego"`
	Box        Box    `json:"box"`
}

// FrameInfo is the per-frame annotation record stored in a *_info.json file.
// Detections are indexed by view, then by row; each row is
// [class_id, track_id, x1, y1, x2, y2] in original image pixels.
type FrameInfo struct {
	Track             string        `json:"track"`
	Karts             []string      `json:"karts"`
	Detections        [][][]float64 `json:"detections"`
	DistanceDownTrack []float64     `json:"distance_down_track,omitempty"`
	Velocity          [][]float64   `json:"velocity,omitempty"`
}

// ViewCount returns the number of camera views recorded for the frame.
func (f *FrameInfo) ViewCount() int {
	return len(f.Detections)
}

// CaptionRecord pairs an image reference with one caption.
type CaptionRecord struct {
	ImageFile string `json:"image_file"`
	Caption   string `json:"caption"`
}

// FrameSummary describes one info file processed by a corpus build.
type FrameSummary struct {
	BaseName  string `json:"base_name"`
	Track     string `json:"track"`
	ViewCount int    `json:"view_count"`
	KartCount int    `json:"kart_count"`
}

// BuildRun records a single corpus rebuild of a split.
type BuildRun struct {
	ID         string `json:"id"`
	Split      string `json:"split"`
	OutputPath string `json:"output_path"`
	Frames     int    `json:"frames"`
	Views      int    `json:"views"`
	Records    int    `json:"records"`
	BuiltAt    string `json:"built_at"`
}
