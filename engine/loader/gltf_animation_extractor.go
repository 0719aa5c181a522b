package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-playground/engine/model"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor converts glTF animations into node-targeted AnimationClips. Tracks
// reference nodes by name so a clip can be bound to any scene graph carrying those names.
type gltfAnimationExtractor interface {
	// ExtractAnimation extracts a single animation by index. Channels without a target node
	// and morph-weight channels are skipped.
	//
	// Parameters:
	//   - animIndex: the index of the animation in the document
	//
	// Returns:
	//   - *model.AnimationClip: the extracted clip, with Duration set to the latest keyframe
	//   - error: error if extraction fails
	ExtractAnimation(animIndex int) (*model.AnimationClip, error)

	// ExtractAllAnimations extracts every animation from the document.
	ExtractAllAnimations() ([]*model.AnimationClip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

func (e *gltfAnimationExtractorImpl) ExtractAnimation(animIndex int) (*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if animIndex < 0 || animIndex >= len(doc.Animations) {
		return nil, fmt.Errorf("animation index %d out of range", animIndex)
	}

	anim := &doc.Animations[animIndex]
	clip := &model.AnimationClip{Name: anim.Name}
	if clip.Name == "" {
		clip.Name = fmt.Sprintf("animation_%d", animIndex)
	}

	for i := range anim.Channels {
		ch := &anim.Channels[i]
		if ch.Target.Node == nil {
			continue
		}
		nodeIndex := *ch.Target.Node
		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
			return nil, fmt.Errorf("animation %q channel %d: node %d out of range", clip.Name, i, nodeIndex)
		}

		var path model.TrackPath
		switch ch.Target.Path {
		case gltfAnimPathTranslation:
			path = model.TrackTranslation
		case gltfAnimPathRotation:
			path = model.TrackRotation
		case gltfAnimPathScale:
			path = model.TrackScale
		default:
			continue
		}

		if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
			return nil, fmt.Errorf("animation %q channel %d: invalid sampler index %d", clip.Name, i, ch.Sampler)
		}
		sampler := &anim.Samplers[ch.Sampler]

		times, _, err := e.parser.ReadFloats(sampler.Input)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read times: %w", clip.Name, i, err)
		}
		values, comps, err := e.parser.ReadFloats(sampler.Output)
		if err != nil {
			return nil, fmt.Errorf("animation %q channel %d: failed to read values: %w", clip.Name, i, err)
		}

		track := model.AnimationTrack{
			NodeName:      nodeName(doc, nodeIndex),
			NodeIndex:     nodeIndex,
			Path:          path,
			Interpolation: interpolationOf(sampler.Interpolation),
			Times:         times,
			Values:        values,
		}
		if comps != track.Components() {
			return nil, fmt.Errorf("animation %q channel %d: %d components for %s", clip.Name, i, comps, ch.Target.Path)
		}
		perKey := comps
		if track.Interpolation == model.InterpolationCubicSpline {
			perKey *= 3
		}
		if len(values) < len(times)*perKey {
			return nil, fmt.Errorf("animation %q channel %d: %d values for %d keys: %w", clip.Name, i, len(values), len(times), ErrBufferSizeMismatch)
		}

		if n := len(times); n > 0 && times[n-1] > clip.Duration {
			clip.Duration = times[n-1]
		}
		clip.Tracks = append(clip.Tracks, track)
	}

	return clip, nil
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations() ([]*model.AnimationClip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	clips := make([]*model.AnimationClip, len(doc.Animations))
	for i := range doc.Animations {
		clip, err := e.ExtractAnimation(i)
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips[i] = clip
	}
	return clips, nil
}

func interpolationOf(s string) model.Interpolation {
	switch s {
	case gltfInterpStep:
		return model.InterpolationStep
	case gltfInterpCubicSpline:
		return model.InterpolationCubicSpline
	default:
		return model.InterpolationLinear
	}
}

// nodeName returns the node's name, or node_<index> for unnamed nodes. Importer and animation
// tracks must agree on this.
func nodeName(doc *gltfDocument, index int) string {
	if n := doc.Nodes[index].Name; n != "" {
		return n
	}
	return fmt.Sprintf("node_%d", index)
}
