package analyzer

import "go-motion-inspector/internal/motion"

// AnalysisOptions selects what a comparison looks at
type AnalysisOptions struct {
	// Channels
	Light      bool
	Saturation bool
	Hue        bool

	// Contiguity
	ExtractShapes bool
}

// DefaultOptions compares every channel without shape extraction
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Light:      true,
		Saturation: true,
		Hue:        true,
	}
}

// LightOptions compares block light only
func LightOptions() AnalysisOptions {
	return AnalysisOptions{Light: true}
}

// ShapeOptions compares every channel and groups differing blocks into shapes
func ShapeOptions() AnalysisOptions {
	return DefaultOptions().WithShapes()
}

// WithShapes enables shape extraction
func (opts AnalysisOptions) WithShapes() AnalysisOptions {
	opts.ExtractShapes = true
	return opts
}

// WithChannels selects the participating channels
func (opts AnalysisOptions) WithChannels(light, saturation, hue bool) AnalysisOptions {
	opts.Light = light
	opts.Saturation = saturation
	opts.Hue = hue
	return opts
}

// WithoutHue disables the hue channel
func (opts AnalysisOptions) WithoutHue() AnalysisOptions {
	opts.Hue = false
	return opts
}

// compareOptions converts to the core representation. No channel at all
// means every channel.
func (opts AnalysisOptions) compareOptions() motion.CompareOptions {
	var ch motion.Channel
	if opts.Light {
		ch |= motion.ChannelLight
	}
	if opts.Saturation {
		ch |= motion.ChannelSaturation
	}
	if opts.Hue {
		ch |= motion.ChannelHue
	}
	return motion.CompareOptions{Channels: ch, ExtractShapes: opts.ExtractShapes}
}
