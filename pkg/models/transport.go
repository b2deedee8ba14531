package models

import "time"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SnapshotResponse is returned when a snapshot is created
type SnapshotResponse struct {
	ID          string          `json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
	Cols        int             `json:"cols"`
	Rows        int             `json:"rows"`
	EncodedSize int             `json:"encoded_size"`
	Stats       Stats           `json:"stats"`
	Statistics  FrameStatistics `json:"statistics"`
	Warnings    []string        `json:"warnings,omitempty"`
}

// BatchSnapshotResponse is returned when a batch of frames is uploaded.
// Errors are keyed by the frame's position in the upload.
type BatchSnapshotResponse struct {
	Snapshots []SnapshotResponse `json:"snapshots"`
	Errors    []BatchError       `json:"errors,omitempty"`
}

// BatchError reports a frame of a batch that could not be stored
type BatchError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// CompareRequest compares two stored snapshots
type CompareRequest struct {
	CurrentID  string `json:"current_id" binding:"required"`
	PreviousID string `json:"previous_id" binding:"required"`
	// Strategy is one of "light", "color", "shapes". Empty means "color".
	Strategy string `json:"strategy,omitempty"`
}

// ToleranceRequest carries a full tolerance configuration.
// Curves are four [x, y] points with strictly increasing x.
type ToleranceRequest struct {
	LightCurve      [][2]int `json:"light_curve" binding:"required"`
	HistoCurve      [][2]int `json:"histo_curve" binding:"required"`
	Mask            string   `json:"mask,omitempty"`
	SaturationError *int     `json:"saturation_error,omitempty"`
	HueError        *int     `json:"hue_error,omitempty"`
}

// SensitivityRequest derives a tolerance from a 0..100 sensitivity
type SensitivityRequest struct {
	Sensitivity int    `json:"sensitivity"`
	Mask        string `json:"mask,omitempty"`
}

// MotionEvent is published to observers and streamed to websocket clients
type MotionEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	MotionID  int       `json:"motion_id,omitempty"`
	Index     int       `json:"index,omitempty"`
	Count     int       `json:"count,omitempty"`
	Path      string    `json:"path,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// ToleranceResponse describes the active tolerance
type ToleranceResponse struct {
	LightCurve         [][2]int `json:"light_curve"`
	HistoCurve         [][2]int `json:"histo_curve"`
	Mask               string   `json:"mask,omitempty"`
	SaturationError    int      `json:"saturation_error"`
	HueError           int      `json:"hue_error"`
	LowLightFloor      int      `json:"low_light_floor"`
	LowSaturationFloor int      `json:"low_saturation_floor"`
}

// HistoricResponse lists archived motion images, newest first
type HistoricResponse struct {
	Items []HistoricItem `json:"items"`
	Total int            `json:"total"`
}

// MonitorStatus reports the camera polling loop
type MonitorStatus struct {
	Running       bool       `json:"running"`
	Source        string     `json:"source,omitempty"`
	Frames        int        `json:"frames"`
	Stabilized    bool       `json:"stabilized"`
	InMotion      bool       `json:"in_motion"`
	LastDetection *time.Time `json:"last_detection,omitempty"`
	Trace         string     `json:"trace,omitempty"`
}
