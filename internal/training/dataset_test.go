package training

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"alfredoptarigan/resume-screener/internal/ml"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing dataset: %v", err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCSV(t, `resume_text,job_description_text,match_label,category_label
go engineer,backend role,0.9,backend
react developer,frontend role,0.8,frontend
python data scientist,data role,0.7,data
`)

	ds, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(ds.Rows) != 3 || ds.SkippedRows != 0 {
		t.Fatalf("rows = %d, skipped = %d", len(ds.Rows), ds.SkippedRows)
	}
	if ds.Rows[0].MatchLabel != 0.9 || ds.Rows[0].Category != "backend" {
		t.Fatalf("first row = %+v", ds.Rows[0])
	}
}

func TestLoadCSVHeaderCaseInsensitive(t *testing.T) {
	path := writeCSV(t, `Resume_Text,Job_Description_Text,Match_Label,Category_Label
go engineer,backend role,0.9,backend
`)

	ds, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(ds.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(ds.Rows))
	}
}

func TestLoadCSVMissingColumn(t *testing.T) {
	path := writeCSV(t, `resume_text,job_description_text,match_label
go engineer,backend role,0.9
`)

	if _, err := LoadCSV(path); !errors.Is(err, ml.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig for missing column", err)
	}
}

func TestLoadCSVSkipsBadRows(t *testing.T) {
	path := writeCSV(t, `resume_text,job_description_text,match_label,category_label
go engineer,backend role,0.9,backend
,frontend role,0.8,frontend
react developer,frontend role,not-a-number,frontend
python dev,data role,1.5,data
missing category,data role,0.5,
sql analyst,data role,0.6,data
`)

	ds, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(ds.Rows))
	}
	if ds.SkippedRows != 4 {
		t.Fatalf("skipped = %d, want 4", ds.SkippedRows)
	}
}

func TestLoadCSVNoUsableRows(t *testing.T) {
	path := writeCSV(t, `resume_text,job_description_text,match_label,category_label
,role,2.0,x
`)

	if _, err := LoadCSV(path); !errors.Is(err, ml.ErrDataQuality) {
		t.Fatalf("err = %v, want ErrDataQuality", err)
	}
}

func TestLoadCSVMissingFile(t *testing.T) {
	if _, err := LoadCSV("/nonexistent/dataset.csv"); !errors.Is(err, ml.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func syntheticRows(perCategory int, categories []string) []Row {
	var rows []Row
	for _, cat := range categories {
		for i := 0; i < perCategory; i++ {
			rows = append(rows, Row{
				ResumeText: fmt.Sprintf("%s resume number %d with relevant stack", cat, i),
				JobText:    fmt.Sprintf("%s role description %d", cat, i),
				MatchLabel: 0.5 + float64(i%5)*0.1,
				Category:   cat,
			})
		}
	}
	return rows
}

func TestStratifiedSplitDisjointAndComplete(t *testing.T) {
	rows := syntheticRows(20, []string{"backend", "frontend", "data"})
	ratios := SplitRatios{Train: 0.70, Validation: 0.15, Test: 0.15}

	split := StratifiedSplit(rows, ratios, 42)

	total := len(split.Train) + len(split.Validation) + len(split.Test)
	if total != len(rows) {
		t.Fatalf("splits hold %d rows, want %d", total, len(rows))
	}

	seen := map[string]int{}
	for _, part := range [][]Row{split.Train, split.Validation, split.Test} {
		for _, row := range part {
			seen[row.ResumeText]++
		}
	}
	for text, n := range seen {
		if n != 1 {
			t.Fatalf("row %q appears in %d splits", text, n)
		}
	}
}

func TestStratifiedSplitPreservesProportions(t *testing.T) {
	rows := syntheticRows(20, []string{"backend", "frontend"})
	split := StratifiedSplit(rows, SplitRatios{Train: 0.70, Validation: 0.15, Test: 0.15}, 7)

	count := func(part []Row, cat string) int {
		n := 0
		for _, row := range part {
			if row.Category == cat {
				n++
			}
		}
		return n
	}

	for _, cat := range []string{"backend", "frontend"} {
		if got := count(split.Train, cat); got != 14 {
			t.Errorf("train has %d %s rows, want 14", got, cat)
		}
		if got := count(split.Validation, cat); got != 3 {
			t.Errorf("validation has %d %s rows, want 3", got, cat)
		}
		if got := count(split.Test, cat); got != 3 {
			t.Errorf("test has %d %s rows, want 3", got, cat)
		}
	}
}

func TestStratifiedSplitSmallCategory(t *testing.T) {
	rows := syntheticRows(3, []string{"rare"})
	split := StratifiedSplit(rows, SplitRatios{Train: 0.70, Validation: 0.15, Test: 0.15}, 1)

	// Three rows with all-positive ratios land one per split.
	if len(split.Train) != 1 || len(split.Validation) != 1 || len(split.Test) != 1 {
		t.Fatalf("split sizes = %d/%d/%d, want 1/1/1",
			len(split.Train), len(split.Validation), len(split.Test))
	}
}

func TestStratifiedSplitDeterministic(t *testing.T) {
	rows := syntheticRows(15, []string{"backend", "data"})
	ratios := SplitRatios{Train: 0.70, Validation: 0.15, Test: 0.15}

	a := StratifiedSplit(rows, ratios, 42)
	b := StratifiedSplit(rows, ratios, 42)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("split differs for identical seed")
	}
}

func TestAugment(t *testing.T) {
	train := syntheticRows(10, []string{"backend", "frontend"})

	synthetic := Augment(train, 0.2, 42)
	if len(synthetic) != 4 {
		t.Fatalf("synthetic rows = %d, want 4", len(synthetic))
	}

	originals := map[string]Row{}
	for _, row := range train {
		originals[row.ResumeText] = row
	}
	for _, row := range synthetic {
		if _, exists := originals[row.ResumeText]; exists {
			t.Fatalf("synthetic row duplicates an original: %q", row.ResumeText)
		}
		if row.Category != "backend" && row.Category != "frontend" {
			t.Fatalf("synthetic row has unknown category %q", row.Category)
		}
		if row.MatchLabel < 0 || row.MatchLabel > 1 {
			t.Fatalf("synthetic row label %v outside [0,1]", row.MatchLabel)
		}
	}
}

func TestAugmentZeroFraction(t *testing.T) {
	train := syntheticRows(10, []string{"backend"})
	if got := Augment(train, 0, 42); got != nil {
		t.Fatalf("fraction 0 produced %d rows", len(got))
	}
}

func TestAugmentNeedsPairs(t *testing.T) {
	train := []Row{{ResumeText: "solo row", JobText: "job", MatchLabel: 0.5, Category: "only"}}
	if got := Augment(train, 0.5, 42); got != nil {
		t.Fatalf("single-row category produced %d synthetic rows", len(got))
	}
}
