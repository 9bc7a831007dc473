// deskwatch-zonecheck validates a seating chart and prints what it loaded.
// Exit status is non-zero for a chart that would stop the services from
// starting
package main

import (
	"encoding/json"
	"flag"
	"os"

	"deskwatch/internal/core/seating"
	"deskwatch/internal/core/version"
	"deskwatch/internal/platform/logger"
)

type report struct {
	Source      string               `json:"source"`
	Version     int                  `json:"version"`
	Desks       int                  `json:"desks"`
	Occupied    int                  `json:"occupied"`
	Assignments []seating.Assignment `json:"assignments"`
}

func main() {
	l := logger.Get()

	bi := version.Info("deskwatch-zonecheck")
	l.Info().Str("version", bi.Version).Str("commit", bi.Commit).Msg("starting deskwatch-zonecheck")

	var (
		file = flag.String("file", "", "chart to validate; empty = the embedded chart")
		full = flag.Bool("full", false, "include every assignment in the output")
	)
	flag.Parse()

	var (
		tab *seating.Table
		err error
		src = "embedded"
	)
	if *file != "" {
		tab, err = seating.LoadFile(*file)
		src = *file
	} else {
		tab, err = seating.Load()
	}
	if err != nil {
		l.Error().Err(err).Str("source", src).Msg("seating chart is invalid")
		os.Exit(1)
	}

	out := report{
		Source:   src,
		Version:  tab.Version,
		Desks:    len(tab.Assignments),
		Occupied: tab.Occupied(),
	}
	if *full {
		out.Assignments = tab.Assignments
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		l.Fatal().Err(err).Msg("encode failed")
	}
}
