// Package domain defines core types and interfaces for detection events
package domain

// Label classifies a detection event
type Label string

const (
	// LabelPerson is a person sighting, possibly face-recognized
	LabelPerson Label = "person"

	// LabelPhoneViolation is a phone-in-hand sighting
	LabelPhoneViolation Label = "phone_violation"
)

// RecognizedIdentity is the pre-computed face recognition attached to a
// person detection. Recognition itself happens upstream
type RecognizedIdentity struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"` // 0..1
}

// DetectionEvent is one immutable fact from the NVR timeline
type DetectionEvent struct {
	Timestamp  float64             `json:"timestamp"` // epoch seconds, fractional
	Camera     string              `json:"camera"`
	Label      Label               `json:"label"`
	Zones      []string            `json:"zones,omitempty"` // ordered as emitted
	Recognized *RecognizedIdentity `json:"recognized_identity,omitempty"`
	SourceID   string              `json:"source_id"` // opaque media linkage key
}

// Query selects events from the store. Camera and Label are optional
// filters; Since/Until are epoch seconds, half-open [Since, Until)
type Query struct {
	Camera string
	Label  Label // zero value = all known labels
	Since  float64
	Until  float64
}
