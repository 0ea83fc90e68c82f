// Package animation samples keyframed node animations imported from glTF.
package animation

import (
	"sort"
	"strings"

	"github.com/spaghettifunk/bolt/engine/scene"
)

type Interpolation int

const (
	InterpolationLinear Interpolation = iota
	InterpolationStep
	InterpolationCubicSpline
)

// ParseInterpolation maps the glTF sampler names. Unknown names are linear.
func ParseInterpolation(name string) Interpolation {
	switch strings.ToUpper(name) {
	case "STEP":
		return InterpolationStep
	case "CUBICSPLINE":
		return InterpolationCubicSpline
	}
	return InterpolationLinear
}

func (i Interpolation) String() string {
	switch i {
	case InterpolationLinear:
		return "LINEAR"
	case InterpolationStep:
		return "STEP"
	case InterpolationCubicSpline:
		return "CUBICSPLINE"
	}
	return "unknown"
}

/** @brief The transform property a track animates. */
type Path int

const (
	PathTranslation Path = iota
	PathRotation
	PathScale
)

func ParsePath(name string) (Path, bool) {
	switch name {
	case "translation":
		return PathTranslation, true
	case "rotation":
		return PathRotation, true
	case "scale":
		return PathScale, true
	}
	return 0, false
}

func (p Path) components() int {
	if p == PathRotation {
		return 4
	}
	return 3
}

/**
 * @brief A single sample of a track. Translation and scale use the first
 * three components of Value, rotations are x, y, z, w quaternions. Tangents
 * are only used by cubic spline tracks.
 */
type Keyframe struct {
	Time       float32
	Value      [4]float32
	InTangent  [4]float32
	OutTangent [4]float32
}

type Track struct {
	Path          Path
	Interpolation Interpolation
	Keyframes     []Keyframe
}

// SortKeyframes orders keyframes by time keeping equal times stable.
// It reports whether the track was out of order.
func (t *Track) SortKeyframes() bool {
	sorted := sort.SliceIsSorted(t.Keyframes, func(i, j int) bool {
		return t.Keyframes[i].Time < t.Keyframes[j].Time
	})
	if sorted {
		return false
	}
	sort.SliceStable(t.Keyframes, func(i, j int) bool {
		return t.Keyframes[i].Time < t.Keyframes[j].Time
	})
	return true
}

/** @brief The tracks animating one node. */
type Channel struct {
	Target      *scene.Node
	Translation *Track
	Rotation    *Track
	Scale       *Track
}

func (c *Channel) tracks() []*Track {
	tracks := make([]*Track, 0, 3)
	for _, t := range []*Track{c.Translation, c.Rotation, c.Scale} {
		if t != nil && len(t.Keyframes) > 0 {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

type Clip struct {
	Name     string
	Channels []*Channel
}

func NewClip(name string) *Clip {
	return &Clip{Name: name}
}

// AddTrack attaches track to the channel of target, creating the channel on first use.
func (c *Clip) AddTrack(target *scene.Node, track *Track) {
	var channel *Channel
	for _, ch := range c.Channels {
		if ch.Target == target {
			channel = ch
			break
		}
	}
	if channel == nil {
		channel = &Channel{Target: target}
		c.Channels = append(c.Channels, channel)
	}
	switch track.Path {
	case PathTranslation:
		channel.Translation = track
	case PathRotation:
		channel.Rotation = track
	case PathScale:
		channel.Scale = track
	}
}

// TimeRange returns the earliest and latest keyframe time over all tracks.
func (c *Clip) TimeRange() (float32, float32) {
	first := true
	var min, max float32
	for _, ch := range c.Channels {
		for _, t := range ch.tracks() {
			start, end := t.Keyframes[0].Time, t.Keyframes[len(t.Keyframes)-1].Time
			if first || start < min {
				min = start
			}
			if first || end > max {
				max = end
			}
			first = false
		}
	}
	return min, max
}
