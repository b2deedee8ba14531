package strategy

import (
	"strings"

	"go-motion-inspector/internal/analyzer"
	apperrors "go-motion-inspector/internal/errors"
	"go-motion-inspector/internal/motion"
)

const (
	LightStrategyName = "light"
	ColorStrategyName = "color"
	ShapeStrategyName = "shapes"
)

// ComparisonStrategy defines the interface for different comparison strategies
type ComparisonStrategy interface {
	Compare(current, previous *motion.Snapshot) (*analyzer.Report, error)
	GetStrategyName() string
}

// optionsStrategy runs the analyzer with a fixed option set
type optionsStrategy struct {
	name     string
	analyzer analyzer.MotionAnalyzer
	options  analyzer.AnalysisOptions
}

func (s *optionsStrategy) Compare(current, previous *motion.Snapshot) (*analyzer.Report, error) {
	return s.analyzer.Compare(current, previous, s.options)
}

func (s *optionsStrategy) GetStrategyName() string {
	return s.name
}

// NewLightStrategy compares block light only
func NewLightStrategy(a analyzer.MotionAnalyzer) ComparisonStrategy {
	return &optionsStrategy{name: LightStrategyName, analyzer: a, options: analyzer.LightOptions()}
}

// NewColorStrategy compares light, saturation and hue
func NewColorStrategy(a analyzer.MotionAnalyzer) ComparisonStrategy {
	return &optionsStrategy{name: ColorStrategyName, analyzer: a, options: analyzer.DefaultOptions()}
}

// NewShapeStrategy compares every channel and groups differences into shapes
func NewShapeStrategy(a analyzer.MotionAnalyzer) ComparisonStrategy {
	return &optionsStrategy{name: ShapeStrategyName, analyzer: a, options: analyzer.ShapeOptions()}
}

// ByName resolves a strategy. An empty name selects the color strategy.
func ByName(a analyzer.MotionAnalyzer, name string) (ComparisonStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case LightStrategyName:
		return NewLightStrategy(a), nil
	case ColorStrategyName, "":
		return NewColorStrategy(a), nil
	case ShapeStrategyName:
		return NewShapeStrategy(a), nil
	}
	return nil, apperrors.NewValidationError("unknown comparison strategy", nil).WithDetails("strategy=%q", name)
}

// ComparisonContext manages the comparison strategy
type ComparisonContext struct {
	strategy ComparisonStrategy
}

// NewComparisonContext creates a new comparison context
func NewComparisonContext(strategy ComparisonStrategy) *ComparisonContext {
	return &ComparisonContext{
		strategy: strategy,
	}
}

// SetStrategy changes the comparison strategy
func (c *ComparisonContext) SetStrategy(strategy ComparisonStrategy) {
	c.strategy = strategy
}

// ExecuteComparison compares using the current strategy
func (c *ComparisonContext) ExecuteComparison(current, previous *motion.Snapshot) (*analyzer.Report, error) {
	return c.strategy.Compare(current, previous)
}

// GetCurrentStrategy returns the current strategy name
func (c *ComparisonContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}
