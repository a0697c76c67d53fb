package report

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/hairbuild/pkg/strands"
)

func testGroup() *strands.StrandGroup {
	g := strands.NewStrandGroup("fringe", 4, 2, strands.LayoutSequential)
	g.LOD.GuideCount = []int{1, 2, 4}
	g.LOD.GuideIndex = []int{
		0, 0, 0, 0,
		0, 0, 2, 2,
		0, 1, 2, 3,
	}
	g.LOD.GuideCarry = []float32{
		1, 0, 0, 0,
		0.6, 0, 0.4, 0,
		0.25, 0.25, 0.25, 0.25,
	}
	g.LOD.GuideReach = []float32{
		0.5, 0, 0, 0,
		0.2, 0, 0.1, 0,
		0, 0, 0, 0,
	}
	return g
}

func TestLevels(t *testing.T) {
	records := Levels(testGroup())
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	tests := []struct {
		guides   int
		fraction float64
		reach    float32
	}{
		{1, 0.25, 0.5},
		{2, 0.5, 0.2},
		{4, 1, 0},
	}
	for k, want := range tests {
		got := records[k]
		if got.Group != "fringe" || got.Level != k {
			t.Errorf("record %d: %s/%d", k, got.Group, got.Level)
		}
		if got.Guides != want.guides || got.Fraction != want.fraction {
			t.Errorf("record %d: guides %d fraction %v, want %d %v", k, got.Guides, got.Fraction, want.guides, want.fraction)
		}
		if math.Abs(got.CarrySum-1) > 1e-6 {
			t.Errorf("record %d: carry sum %v, want 1", k, got.CarrySum)
		}
		if got.MaxReach != want.reach {
			t.Errorf("record %d: max reach %v, want %v", k, got.MaxReach, want.reach)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, Levels(testGroup())); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %q", buf.String())
	}
	if lines[0] != "group,level,guides,fraction,carry_sum,max_reach" {
		t.Errorf("unexpected header %q", lines[0])
	}

	records, err := ReadCSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(records) != 3 || records[1].Guides != 2 {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lod.csv")
	if err := WriteCSVFile(path, Levels(testGroup())); err != nil {
		t.Fatalf("WriteCSVFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "group,") {
		t.Errorf("missing header: %q", data)
	}
}
