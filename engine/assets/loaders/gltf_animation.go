package loaders

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/spaghettifunk/bolt/engine/animation"
	"github.com/spaghettifunk/bolt/engine/core"
)

func (imp *importer) buildAnimations() error {
	for a, ga := range imp.doc.Animations {
		if ga == nil {
			continue
		}
		name := ga.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", a)
		}
		clip := animation.NewClip(name)
		for c, channel := range ga.Channels {
			op := fmt.Sprintf("animation '%s' channel %d", name, c)
			if channel == nil || channel.Target.Node == nil {
				continue
			}
			target, err := imp.node(*channel.Target.Node)
			if err != nil {
				return core.NewImportError(core.ErrMissingData, op, err)
			}
			path, ok := animation.ParsePath(channel.Target.Path.String())
			if !ok {
				core.LogWarn("%s: %s animates '%s', skipping", core.ErrUnsupportedFeature, op, channel.Target.Path)
				continue
			}
			if channel.Sampler == nil || int(*channel.Sampler) >= len(ga.Samplers) || ga.Samplers[*channel.Sampler] == nil {
				return core.NewImportError(core.ErrMissingData, op, errors.New("channel sampler does not exist"))
			}
			track, err := imp.buildTrack(ga.Samplers[*channel.Sampler], path, op)
			if err != nil {
				return err
			}
			if track.SortKeyframes() {
				core.LogWarn("%s has keyframes out of order, sorted by time", op)
			}
			clip.AddTrack(target, track)
		}
		imp.model.Clips = append(imp.model.Clips, clip)
	}
	return nil
}

func (imp *importer) buildTrack(sampler *gltf.AnimationSampler, path animation.Path, op string) (*animation.Track, error) {
	if sampler.Input == nil || sampler.Output == nil {
		return nil, core.NewImportError(core.ErrMissingData, op, errors.New("sampler has no input or output accessor"))
	}
	input, _, err := imp.readAccessor(*sampler.Input)
	if err != nil {
		return nil, err
	}
	output, outputAccessor, err := imp.readAccessor(*sampler.Output)
	if err != nil {
		return nil, err
	}
	times := input.Float32s()
	values := floats(output, outputAccessor.Normalized)

	track := &animation.Track{
		Path:          path,
		Interpolation: animation.ParseInterpolation(sampler.Interpolation.String()),
		Keyframes:     make([]animation.Keyframe, len(times)),
	}
	components := 3
	if path == animation.PathRotation {
		components = 4
	}
	perKeyframe := components
	if track.Interpolation == animation.InterpolationCubicSpline {
		// in tangent, value, out tangent
		perKeyframe *= 3
	}
	if len(values) < len(times)*perKeyframe {
		return nil, core.NewImportError(core.ErrMissingData, op,
			errors.Errorf("%d output values for %d keyframes of %d", len(values), len(times), perKeyframe))
	}

	for k, at := range times {
		keyframe := animation.Keyframe{Time: at}
		base := k * perKeyframe
		if track.Interpolation == animation.InterpolationCubicSpline {
			copy(keyframe.InTangent[:components], values[base:base+components])
			copy(keyframe.Value[:components], values[base+components:base+2*components])
			copy(keyframe.OutTangent[:components], values[base+2*components:base+3*components])
		} else {
			copy(keyframe.Value[:components], values[base:base+components])
		}
		track.Keyframes[k] = keyframe
	}
	return track, nil
}
