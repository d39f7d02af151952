package model

// GapPosition tags where a gap sits relative to the track's occupied range.
type GapPosition string

const (
	GapStart  GapPosition = "start"
	GapMiddle GapPosition = "middle"
	GapEnd    GapPosition = "end"
)

// Gap is a derived value describing a maximal sub-interval [StartTime,
// EndTime) on one track with no active clip. Gaps are never persisted;
// the playback layer uses them to decide when to render black/silence.
type Gap struct {
	TrackID   string      `json:"trackId"`
	StartTime int64       `json:"startTime"`
	EndTime   int64       `json:"endTime"`
	Duration  int64       `json:"duration"`
	Position  GapPosition `json:"position"`
}

// Contains reports whether t falls inside the gap, inclusive of the
// start and exclusive of the end.
func (g *Gap) Contains(t int64) bool {
	return t >= g.StartTime && t < g.EndTime
}

// GapReport is the whole-timeline gap analysis result.
type GapReport struct {
	Gaps           []Gap    `json:"gaps"`
	TotalGaps      int      `json:"totalGaps"`
	HasGaps        bool     `json:"hasGaps"`
	TracksWithGaps []string `json:"tracksWithGaps"`
}
