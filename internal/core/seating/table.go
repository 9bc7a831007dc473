// Package seating loads the versioned desk-to-occupant chart from the embedded
// seating.json and exposes O(1) zone lookups. The table is immutable after
// load and safe for unsynchronized concurrent reads
package seating

import (
	_ "embed"
	"encoding/json"
	"os"
	"strings"

	perr "deskwatch/internal/platform/errors"
	"deskwatch/internal/platform/validate"
)

//go:embed seating.json
var embedded []byte

type rawDesk struct {
	Zone     string `json:"zone" validate:"required"`
	Occupant string `json:"occupant"`
}

type rawChart struct {
	Version int            `json:"version" validate:"required,min=1"`
	Meta    map[string]any `json:"meta"`
	Desks   []rawDesk      `json:"desks" validate:"required,min=1,dive"`
}

// Assignment is one desk row of the chart. Empty Occupant means vacant
type Assignment struct {
	Zone     string
	Occupant string
}

// Table is the compiled chart
type Table struct {
	Version     int
	Assignments []Assignment // chart order preserved

	byZone map[string]string
}

// Load compiles the embedded seating.json
func Load() (*Table, error) {
	return parse(embedded, "seating.json (embedded)")
}

// LoadFile compiles an operator-supplied chart, overriding the embedded one
func LoadFile(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "seating: read %s", path)
	}
	return parse(b, path)
}

func parse(b []byte, src string) (*Table, error) {
	var rc rawChart
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "seating: parse %s", src)
	}
	if err := validate.Struct(rc); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "seating: invalid chart %s", src)
	}

	t := &Table{
		Version:     rc.Version,
		Assignments: make([]Assignment, 0, len(rc.Desks)),
		byZone:      make(map[string]string, len(rc.Desks)),
	}
	for _, d := range rc.Desks {
		zone := strings.TrimSpace(d.Zone)
		if zone == "" {
			return nil, perr.Configf("seating: %s: blank zone id", src)
		}
		if _, dup := t.byZone[zone]; dup {
			return nil, perr.Configf("seating: %s: duplicate zone %q", src, zone)
		}
		occ := strings.TrimSpace(d.Occupant)
		if d.Occupant != "" && occ == "" {
			return nil, perr.Configf("seating: %s: zone %q occupant is whitespace", src, zone)
		}
		t.byZone[zone] = occ
		t.Assignments = append(t.Assignments, Assignment{Zone: zone, Occupant: occ})
	}
	return t, nil
}

// Lookup returns the occupant assigned to zone. ok is false for unknown zones
// and for known-but-vacant desks; both mean "no one sits here"
func (t *Table) Lookup(zone string) (string, bool) {
	occ, known := t.byZone[zone]
	if !known || occ == "" {
		return "", false
	}
	return occ, true
}

// Occupied reports how many desks have an assignee
func (t *Table) Occupied() int {
	n := 0
	for _, a := range t.Assignments {
		if a.Occupant != "" {
			n++
		}
	}
	return n
}
