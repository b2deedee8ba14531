package motion

import "go-motion-inspector/pkg/models"

// Report and friends are shared with the transport layer.
type (
	Report         = models.Report
	Geometry       = models.Geometry
	Difference     = models.Difference
	FeatureSummary = models.FeatureSummary
	Shape          = models.Shape
	Features       = models.Features
	Stats          = models.Stats
)
