package domain

import (
	"encoding/json"
	"math"

	perr "deskwatch/internal/platform/errors"
)

// NVR wire labels
const (
	wirePerson = "person"
	wirePhone  = "cell phone"
)

// LabelFromWire maps an NVR label string onto the domain enum
func LabelFromWire(s string) (Label, bool) {
	switch s {
	case wirePerson:
		return LabelPerson, true
	case wirePhone:
		return LabelPhoneViolation, true
	default:
		return "", false
	}
}

// WireLabel maps a domain label back to the string the NVR stores
func WireLabel(l Label) string {
	if l == LabelPhoneViolation {
		return wirePhone
	}
	return string(l)
}

// WireRecord is one raw timeline row before decoding. Data payloads come
// straight out of the store's jsonb column
type WireRecord struct {
	Timestamp float64
	Camera    string
	SourceID  string
	Label     string
	Zones     []byte // json array of zone ids, may be nil
	SubLabel  []byte // json ["name", confidence] or "name", may be nil
}

// FromWire decodes one raw row into a DetectionEvent. Failures carry the
// malformed-event code so callers can skip and log rather than abort
func FromWire(w WireRecord) (DetectionEvent, error) {
	if math.IsNaN(w.Timestamp) || math.IsInf(w.Timestamp, 0) || w.Timestamp < 0 {
		return DetectionEvent{}, perr.MalformedEventf("event %s: bad timestamp %v", w.SourceID, w.Timestamp)
	}
	label, ok := LabelFromWire(w.Label)
	if !ok {
		return DetectionEvent{}, perr.MalformedEventf("event %s: unknown label %q", w.SourceID, w.Label)
	}

	ev := DetectionEvent{
		Timestamp: w.Timestamp,
		Camera:    w.Camera,
		Label:     label,
		SourceID:  w.SourceID,
	}

	if len(w.Zones) > 0 {
		if err := json.Unmarshal(w.Zones, &ev.Zones); err != nil {
			return DetectionEvent{}, perr.Wrapf(err, perr.ErrorCodeMalformedEvent, "event %s: zones payload", w.SourceID)
		}
	}

	rec, err := decodeSubLabel(w.SubLabel)
	if err != nil {
		return DetectionEvent{}, perr.Wrapf(err, perr.ErrorCodeMalformedEvent, "event %s: sub_label payload", w.SourceID)
	}
	ev.Recognized = rec
	return ev, nil
}

// decodeSubLabel accepts the two shapes the NVR emits: ["name", score] and
// a bare "name" (older firmware, score unknown)
func decodeSubLabel(b []byte) (*RecognizedIdentity, error) {
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(b, &arr); err == nil {
		if len(arr) == 0 {
			return nil, nil
		}
		var name string
		if err := json.Unmarshal(arr[0], &name); err != nil {
			return nil, err
		}
		if name == "" {
			return nil, nil
		}
		out := &RecognizedIdentity{Name: name}
		if len(arr) > 1 {
			if err := json.Unmarshal(arr[1], &out.Confidence); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}
	return &RecognizedIdentity{Name: name}, nil
}
