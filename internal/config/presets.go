package config

import "sort"

// Preset is a named force/drag pair.
type Preset struct {
	Force       float64
	Drag        float64
	Description string
}

var Presets = map[string]*Preset{
	"gentle": {Force: 60, Drag: 10, Description: "slow, slightly underdamped ease"},
	"smooth": {Force: 150, Drag: 25, Description: "critically damped, no overshoot"},
	"snappy": {Force: 400, Drag: 40, Description: "fast and critically damped"},
	"bouncy": {Force: 200, Drag: 8, Description: "visible overshoot and a couple of bounces"},
	"wobbly": {Force: 100, Drag: 3, Description: "long-ringing jelly"},
	"stiff":  {Force: 10000, Drag: 200, Description: "near-instant; runs on the analytical path"},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
