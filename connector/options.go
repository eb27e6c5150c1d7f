package connector

import (
	"log"
)

// Options configures a Manager and the Controller that drives it.
type Options struct {
	Padding       float64 // Margin added around the drawn edges, in canvas pixels
	HitTolerance  float64 // Edge stroke hit radius, in screen pixels
	HandleRadius  float64 // Anchor handle radius, in screen pixels
	HandleHit     float64 // Extra slack around handles for pointer hits, in screen pixels
	LaneSpacing   float64
	MarkerGap     float64 // Distance between a marker tip and the node border
	AutoPanMargin float64 // Distance from the viewport border that triggers auto-pan, in screen pixels
	AutoPanStep   float64 // Screen pixels panned per pointer move while auto-panning

	Spread SpreadOptions

	// DefaultStyle is applied to edges created by the controller.
	DefaultStyle EdgeStyle
	// PreviewStyle is used for the in-progress connection.
	PreviewStyle EdgeStyle

	Logger *log.Logger
	// NewID generates ids for edges created by the controller.
	NewID func() string
}

// DefaultOptions returns the engine defaults.
func DefaultOptions() Options {
	return Options{
		Padding:       200,
		HitTolerance:  14,
		HandleRadius:  5,
		HandleHit:     4,
		LaneSpacing:   DefaultLaneSpacing,
		MarkerGap:     4,
		AutoPanMargin: 24,
		AutoPanStep:   12,
		Spread:        DefaultSpreadOptions(),
		DefaultStyle: EdgeStyle{
			Path:         PathBezier,
			StrokeWidth:  2,
			MarkerEnd:    Marker{Type: MarkerArrowClosed, Size: 10},
			Curvature:    DefaultCurvature,
			BorderRadius: DefaultBorderRadius,
		},
		PreviewStyle: EdgeStyle{
			Path:        PathHorizontalBezier,
			StrokeWidth: 2,
			Dash:        []float64{6, 4},
		},
		Logger: log.Default(),
		NewID:  NewEdgeID,
	}
}

// withDefaults fills zero fields from DefaultOptions.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Padding <= 0 {
		o.Padding = d.Padding
	}
	if o.HitTolerance <= 0 {
		o.HitTolerance = d.HitTolerance
	}
	if o.HandleRadius <= 0 {
		o.HandleRadius = d.HandleRadius
	}
	if o.HandleHit < 0 {
		o.HandleHit = d.HandleHit
	}
	if o.LaneSpacing <= 0 {
		o.LaneSpacing = d.LaneSpacing
	}
	if o.MarkerGap < 0 {
		o.MarkerGap = 0
	}
	if o.AutoPanMargin <= 0 {
		o.AutoPanMargin = d.AutoPanMargin
	}
	if o.AutoPanStep <= 0 {
		o.AutoPanStep = d.AutoPanStep
	}
	if o.Spread.BandMax <= o.Spread.BandMin {
		o.Spread = d.Spread
	}
	if o.DefaultStyle.Path == "" {
		o.DefaultStyle.Path = d.DefaultStyle.Path
	}
	if o.PreviewStyle.Path == "" {
		o.PreviewStyle = d.PreviewStyle
	}
	if o.Logger == nil {
		o.Logger = d.Logger
	}
	if o.NewID == nil {
		o.NewID = d.NewID
	}
	return o
}
