package analyzer

import (
	"go-motion-inspector/pkg/models"
)

// Report is an alias to the shared models.Report
type Report = models.Report

// FrameStatistics is an alias to the shared models.FrameStatistics
type FrameStatistics = models.FrameStatistics
