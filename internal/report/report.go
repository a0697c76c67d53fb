// Package report exports LOD chain statistics.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"github.com/Faultbox/hairbuild/pkg/strands"
)

// LevelRecord summarizes one LOD level of a strand group.
type LevelRecord struct {
	Group    string  `csv:"group"`
	Level    int     `csv:"level"`
	Guides   int     `csv:"guides"`
	Fraction float64 `csv:"fraction"`
	CarrySum float64 `csv:"carry_sum"`
	MaxReach float32 `csv:"max_reach"`
}

// Levels returns one record per LOD level of g.
func Levels(g *strands.StrandGroup) []LevelRecord {
	records := make([]LevelRecord, 0, g.LOD.Count())
	for k := 0; k < g.LOD.Count(); k++ {
		_, carry, reach := g.LOD.Level(k)
		rec := LevelRecord{
			Group:  g.Name,
			Level:  k,
			Guides: g.LOD.GuideCount[k],
		}
		if g.StrandCount > 0 {
			rec.Fraction = float64(rec.Guides) / float64(g.StrandCount)
		}
		for i := range carry {
			rec.CarrySum += float64(carry[i])
			if reach[i] > rec.MaxReach {
				rec.MaxReach = reach[i]
			}
		}
		records = append(records, rec)
	}
	return records
}

// WriteCSV writes records with a header line.
func WriteCSV(w io.Writer, records []LevelRecord) error {
	if err := gocsv.Marshal(records, w); err != nil {
		return fmt.Errorf("writing lod report: %w", err)
	}
	return nil
}

// WriteCSVFile writes records to path.
func WriteCSVFile(path string, records []LevelRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadCSV parses records written by WriteCSV.
func ReadCSV(r io.Reader) ([]LevelRecord, error) {
	var records []LevelRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, fmt.Errorf("reading lod report: %w", err)
	}
	return records, nil
}
