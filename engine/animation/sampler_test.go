package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
	"github.com/spaghettifunk/bolt/engine/scene"
)

func translationClip(target *scene.Node, interpolation Interpolation) *Clip {
	clip := NewClip("move")
	clip.AddTrack(target, &Track{
		Path:          PathTranslation,
		Interpolation: interpolation,
		Keyframes: []Keyframe{
			{Time: 0, Value: [4]float32{0, 0, 0}},
			{Time: 1, Value: [4]float32{10, 0, 0}},
		},
	})
	return clip
}

func TestSelectClip(t *testing.T) {
	node := scene.NewNode("n")
	sampler := NewSampler([]*Clip{translationClip(node, InterpolationLinear)})

	assert.ErrorIs(t, sampler.SelectClip("missing"), core.ErrClipNotFound)
	require.NoError(t, sampler.SelectClip("move"))
	sampler.Advance(0.25)
	require.NoError(t, sampler.SelectClip("move"))
	assert.Zero(t, sampler.Elapsed())
	assert.Equal(t, []string{"move"}, sampler.ClipNames())
}

func TestAdvanceLinearAndWrap(t *testing.T) {
	node := scene.NewNode("n")
	sampler := NewSampler([]*Clip{translationClip(node, InterpolationLinear)})
	require.NoError(t, sampler.SelectClip("move"))

	sampler.Advance(0.5)
	assert.InDelta(t, 5, node.Transform.Position.X, 1e-5)
	assert.True(t, node.Transform.IsDirty)

	sampler.Advance(0.6)
	assert.Zero(t, sampler.Elapsed())
	assert.InDelta(t, 0, node.Transform.Position.X, 1e-5)
}

func TestAdvanceStep(t *testing.T) {
	node := scene.NewNode("n")
	sampler := NewSampler([]*Clip{translationClip(node, InterpolationStep)})
	require.NoError(t, sampler.SelectClip("move"))

	sampler.Advance(0.5)
	assert.Zero(t, node.Transform.Position.X)
	sampler.Advance(0.5)
	assert.InDelta(t, 10, node.Transform.Position.X, 1e-5)
}

func TestAdvanceRespectsSpeedAndPlaying(t *testing.T) {
	node := scene.NewNode("n")
	sampler := NewSampler([]*Clip{translationClip(node, InterpolationLinear)})
	require.NoError(t, sampler.SelectClip("move"))

	sampler.Speed = 2
	sampler.Advance(0.25)
	assert.InDelta(t, 0.5, sampler.Elapsed(), 1e-6)

	sampler.Playing = false
	sampler.Advance(0.25)
	assert.InDelta(t, 0.5, sampler.Elapsed(), 1e-6)
}

func TestAdvanceBackwardWraps(t *testing.T) {
	node := scene.NewNode("n")
	sampler := NewSampler([]*Clip{translationClip(node, InterpolationLinear)})
	require.NoError(t, sampler.SelectClip("move"))

	sampler.Speed = -1
	sampler.Advance(0.25)
	assert.Equal(t, float32(1), sampler.Elapsed())
	assert.InDelta(t, 10, node.Transform.Position.X, 1e-5)

	sampler.Advance(0.25)
	assert.InDelta(t, 0.75, sampler.Elapsed(), 1e-6)
	assert.InDelta(t, 7.5, node.Transform.Position.X, 1e-5)

	sampler.Speed = 1
	sampler.Advance(-0.5)
	assert.InDelta(t, 0.25, sampler.Elapsed(), 1e-6)
	sampler.Advance(-0.5)
	assert.Equal(t, float32(1), sampler.Elapsed())
}

func TestAdvanceForwardFromBeforeFirstKeyframe(t *testing.T) {
	node := scene.NewNode("n")
	clip := NewClip("late")
	clip.AddTrack(node, &Track{
		Path: PathTranslation,
		Keyframes: []Keyframe{
			{Time: 1, Value: [4]float32{0, 0, 0}},
			{Time: 2, Value: [4]float32{4, 0, 0}},
		},
	})
	sampler := NewSampler([]*Clip{clip})
	require.NoError(t, sampler.SelectClip("late"))

	sampler.Advance(0.5)
	assert.InDelta(t, 0.5, sampler.Elapsed(), 1e-6)
	sampler.Advance(1)
	assert.InDelta(t, 1.5, sampler.Elapsed(), 1e-6)
	assert.InDelta(t, 2, node.Transform.Position.X, 1e-5)
}

func TestRotationSlerp(t *testing.T) {
	node := scene.NewNode("n")
	quarter := math.NewQuatFromAxisAngle(math.NewVec3Up(), math.K_HALF_PI, true)
	clip := NewClip("turn")
	clip.AddTrack(node, &Track{
		Path: PathRotation,
		Keyframes: []Keyframe{
			{Time: 0, Value: [4]float32{0, 0, 0, 1}},
			{Time: 2, Value: [4]float32{quarter.X, quarter.Y, quarter.Z, quarter.W}},
		},
	})
	sampler := NewSampler([]*Clip{clip})
	require.NoError(t, sampler.SelectClip("turn"))

	sampler.Advance(1)
	want := math.NewQuatFromAxisAngle(math.NewVec3Up(), math.K_HALF_PI/2, true)
	got := node.Transform.Rotation
	assert.InDelta(t, want.Y, got.Y, 1e-5)
	assert.InDelta(t, want.W, got.W, 1e-5)
}

func TestCubicSpline(t *testing.T) {
	track := &Track{
		Path:          PathTranslation,
		Interpolation: InterpolationCubicSpline,
		Keyframes: []Keyframe{
			{Time: 0, Value: [4]float32{0, 0, 0}, OutTangent: [4]float32{1, 0, 0}},
			{Time: 2, Value: [4]float32{4, 0, 0}, InTangent: [4]float32{-1, 0, 0}},
		},
	}

	// t = 0.5: h00 = h01 = 0.5, h10 = 0.125, h11 = -0.125, dt = 2
	got := track.Sample(1)
	assert.InDelta(t, 0.5*0+0.125*2*1+0.5*4+(-0.125)*2*(-1), got[0], 1e-5)

	assert.Equal(t, float32(4), track.Sample(2)[0])
}

func TestBracket(t *testing.T) {
	track := &Track{Keyframes: []Keyframe{{Time: 0}, {Time: 1}, {Time: 2}}}

	previous, next := track.Bracket(1)
	assert.Equal(t, float32(1), previous.Time)
	assert.Equal(t, float32(1), next.Time)

	previous, next = track.Bracket(1.5)
	assert.Equal(t, float32(1), previous.Time)
	assert.Equal(t, float32(2), next.Time)
}

func TestSortKeyframes(t *testing.T) {
	track := &Track{Keyframes: []Keyframe{{Time: 1, Value: [4]float32{1}}, {Time: 0}, {Time: 1, Value: [4]float32{2}}}}

	assert.True(t, track.SortKeyframes())
	assert.Equal(t, float32(0), track.Keyframes[0].Time)
	assert.Equal(t, float32(1), track.Keyframes[1].Value[0])
	assert.Equal(t, float32(2), track.Keyframes[2].Value[0])
	assert.False(t, track.SortKeyframes())
}

func TestClipTimeRange(t *testing.T) {
	a, b := scene.NewNode("a"), scene.NewNode("b")
	clip := NewClip("c")
	clip.AddTrack(a, &Track{Path: PathTranslation, Keyframes: []Keyframe{{Time: 0.5}, {Time: 1}}})
	clip.AddTrack(b, &Track{Path: PathScale, Keyframes: []Keyframe{{Time: 0.25}, {Time: 3}}})
	clip.AddTrack(a, &Track{Path: PathRotation, Keyframes: []Keyframe{{Time: 0.5}}})

	min, max := clip.TimeRange()
	assert.Equal(t, float32(0.25), min)
	assert.Equal(t, float32(3), max)
	assert.Len(t, clip.Channels, 2)
}
