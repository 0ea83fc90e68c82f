package animation

import (
	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
	"github.com/spaghettifunk/bolt/engine/math"
)

/**
 * @brief Plays one clip at a time, writing sampled values into the target
 * node transforms. Clips are referenced, not copied.
 */
type Sampler struct {
	/** @brief Multiplier applied to the delta passed to Advance. */
	Speed   float32
	Playing bool

	clips   map[string]*Clip
	names   []string
	current *Clip
	elapsed float32
	min     float32
	max     float32
}

func NewSampler(clips []*Clip) *Sampler {
	s := &Sampler{
		Speed:   1,
		Playing: true,
		clips:   make(map[string]*Clip, len(clips)),
	}
	for _, clip := range clips {
		if _, exists := s.clips[clip.Name]; exists {
			core.LogWarn("duplicate animation clip '%s', keeping the first one", clip.Name)
			continue
		}
		s.clips[clip.Name] = clip
		s.names = append(s.names, clip.Name)
	}
	return s
}

/** @brief Makes name the active clip and rewinds elapsed time to zero. */
func (s *Sampler) SelectClip(name string) error {
	clip, ok := s.clips[name]
	if !ok {
		return errors.Wrapf(core.ErrClipNotFound, "clip '%s'", name)
	}
	s.current = clip
	s.elapsed = 0
	s.min, s.max = clip.TimeRange()
	return nil
}

/**
 * @brief Moves the clock by delta * Speed seconds and applies the sampled
 * pose. Playing forward wraps to the first keyframe time once past the last
 * one; playing backward wraps to the last once before the first.
 */
func (s *Sampler) Advance(delta float32) {
	if s.current == nil || !s.Playing {
		return
	}
	step := delta * s.Speed
	s.elapsed += step
	switch {
	case step > 0 && s.elapsed > s.max:
		s.elapsed = s.min
	case step < 0 && s.elapsed < s.min:
		s.elapsed = s.max
	}
	s.apply(s.elapsed)
}

func (s *Sampler) apply(now float32) {
	for _, channel := range s.current.Channels {
		if channel.Target == nil {
			continue
		}
		transform := channel.Target.Transform
		if channel.Translation != nil && len(channel.Translation.Keyframes) > 0 {
			v := channel.Translation.Sample(now)
			transform.SetPosition(math.NewVec3(v[0], v[1], v[2]))
		}
		if channel.Rotation != nil && len(channel.Rotation.Keyframes) > 0 {
			v := channel.Rotation.Sample(now)
			transform.SetRotation(math.NewQuat(v[0], v[1], v[2], v[3]))
		}
		if channel.Scale != nil && len(channel.Scale.Keyframes) > 0 {
			v := channel.Scale.Sample(now)
			transform.SetScale(math.NewVec3(v[0], v[1], v[2]))
		}
	}
}

// Bracket returns the last keyframe at or before now and the first one at or after it.
func (t *Track) Bracket(now float32) (Keyframe, Keyframe) {
	keys := t.Keyframes
	previous, next := keys[0], keys[len(keys)-1]
	for _, k := range keys {
		if k.Time <= now {
			previous = k
		}
	}
	for _, k := range keys {
		if k.Time >= now {
			next = k
			break
		}
	}
	return previous, next
}

// Sample evaluates the track at now with its interpolation mode.
func (t *Track) Sample(now float32) [4]float32 {
	previous, next := t.Bracket(now)
	dt := next.Time - previous.Time
	if dt <= 0 || t.Interpolation == InterpolationStep {
		return previous.Value
	}
	f := math.Clamp((now-previous.Time)/dt, 0, 1)

	switch t.Interpolation {
	case InterpolationCubicSpline:
		return hermite(previous, next, f, dt, t.Path.components())
	default:
		if t.Path == PathRotation {
			a := math.NewQuat(previous.Value[0], previous.Value[1], previous.Value[2], previous.Value[3])
			b := math.NewQuat(next.Value[0], next.Value[1], next.Value[2], next.Value[3])
			q := a.Slerp(b, f)
			return [4]float32{q.X, q.Y, q.Z, q.W}
		}
		var out [4]float32
		for i := 0; i < 3; i++ {
			out[i] = math.Lerp(previous.Value[i], next.Value[i], f)
		}
		return out
	}
}

// hermite evaluates the glTF cubic spline between two keyframes.
// Tangents are scaled by the keyframe interval.
func hermite(previous, next Keyframe, t, dt float32, components int) [4]float32 {
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	var out [4]float32
	for i := 0; i < components; i++ {
		out[i] = h00*previous.Value[i] + h10*dt*previous.OutTangent[i] + h01*next.Value[i] + h11*dt*next.InTangent[i]
	}
	if components == 4 {
		q := math.NewQuat(out[0], out[1], out[2], out[3]).Normalize()
		out = [4]float32{q.X, q.Y, q.Z, q.W}
	}
	return out
}

func (s *Sampler) Elapsed() float32 {
	return s.elapsed
}

func (s *Sampler) Clip() *Clip {
	return s.current
}

// ClipNames lists the clips in the order they were given.
func (s *Sampler) ClipNames() []string {
	return s.names
}
