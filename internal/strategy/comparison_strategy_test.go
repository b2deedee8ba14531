package strategy

import (
	"testing"

	"go-motion-inspector/internal/analyzer"
	apperrors "go-motion-inspector/internal/errors"
	"go-motion-inspector/internal/motion"
	"go-motion-inspector/pkg/models"
)

// recordingAnalyzer captures the options each strategy passes down
type recordingAnalyzer struct {
	analyzer.MotionAnalyzer
	last analyzer.AnalysisOptions
}

func (r *recordingAnalyzer) Compare(current, previous *motion.Snapshot, options analyzer.AnalysisOptions) (*analyzer.Report, error) {
	r.last = options
	return &models.Report{}, nil
}

func TestByName(t *testing.T) {
	rec := &recordingAnalyzer{}

	tests := []struct {
		name   string
		want   string
		light  bool
		hue    bool
		shapes bool
	}{
		{"light", LightStrategyName, true, false, false},
		{"", ColorStrategyName, true, true, false},
		{"COLOR", ColorStrategyName, true, true, false},
		{"shapes", ShapeStrategyName, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.name, func(t *testing.T) {
			s, err := ByName(rec, tt.name)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if s.GetStrategyName() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, s.GetStrategyName())
			}
			if _, err := s.Compare(nil, nil); err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if rec.last.Light != tt.light || rec.last.Hue != tt.hue || rec.last.ExtractShapes != tt.shapes {
				t.Errorf("Unexpected options %+v", rec.last)
			}
		})
	}
}

func TestByName_Unknown(t *testing.T) {
	_, err := ByName(&recordingAnalyzer{}, "edges")
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error, got %v", err)
	}
}

func TestComparisonContext(t *testing.T) {
	rec := &recordingAnalyzer{}
	ctx := NewComparisonContext(NewLightStrategy(rec))
	if ctx.GetCurrentStrategy() != LightStrategyName {
		t.Errorf("Expected light strategy, got %s", ctx.GetCurrentStrategy())
	}

	ctx.SetStrategy(NewShapeStrategy(rec))
	if _, err := ctx.ExecuteComparison(nil, nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !rec.last.ExtractShapes {
		t.Error("Expected shape options after switching strategy")
	}
}
