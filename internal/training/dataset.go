package training

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"

	"alfredoptarigan/resume-screener/internal/ml"
)

// Required dataset columns (header names are matched case-insensitively).
const (
	colResume   = "resume_text"
	colJob      = "job_description_text"
	colMatch    = "match_label"
	colCategory = "category_label"
)

// Row is one labeled example. A row belongs to exactly one split once
// drawn.
type Row struct {
	ResumeText string
	JobText    string
	MatchLabel float64
	Category   string
}

// Dataset is the cleaned result of loading a source file, with visibility
// into what was dropped.
type Dataset struct {
	Rows        []Row
	SkippedRows int
}

// LoadCSV reads and validates the labeled dataset. Missing required
// columns are a structural (fatal) error; bad rows are skipped and
// counted.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening dataset %s: %v", ml.ErrConfig, path, err)
	}
	defer f.Close()

	return loadCSV(f)
}

func loadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading dataset header: %v", ml.ErrConfig, err)
	}

	index := map[string]int{}
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colResume, colJob, colMatch, colCategory} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: dataset is missing required column %q", ml.ErrConfig, required)
		}
	}

	ds := &Dataset{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed CSV line is a row-level defect, not a
			// structural one.
			ds.SkippedRows++
			continue
		}

		row, ok := parseRow(record, index)
		if !ok {
			ds.SkippedRows++
			continue
		}
		ds.Rows = append(ds.Rows, row)
	}

	if len(ds.Rows) == 0 {
		return nil, fmt.Errorf("%w: dataset has no usable rows (%d skipped)", ml.ErrDataQuality, ds.SkippedRows)
	}
	return ds, nil
}

func parseRow(record []string, index map[string]int) (Row, bool) {
	field := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	row := Row{
		ResumeText: field(colResume),
		JobText:    field(colJob),
		Category:   field(colCategory),
	}
	if row.ResumeText == "" || row.Category == "" {
		return Row{}, false
	}

	label, err := strconv.ParseFloat(field(colMatch), 64)
	if err != nil || math.IsNaN(label) || label < 0 || label > 1 {
		return Row{}, false
	}
	row.MatchLabel = label
	return row, true
}

// Split holds the three disjoint partitions of the dataset.
type Split struct {
	Train      []Row
	Validation []Row
	Test       []Row
}

// StratifiedSplit partitions rows by category so every split preserves the
// category proportions. Each category with at least 3 rows appears in all
// three splits; smaller categories may be absent from the smallest split.
// Deterministic for a fixed seed; a row lands in exactly one split.
func StratifiedSplit(rows []Row, ratios SplitRatios, seed int64) *Split {
	byCategory := map[string][]int{}
	for i, row := range rows {
		byCategory[row.Category] = append(byCategory[row.Category], i)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	rng := rand.New(rand.NewSource(seed))
	split := &Split{}

	for _, category := range categories {
		group := byCategory[category]
		rng.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})

		n := len(group)
		nVal := int(math.Round(ratios.Validation * float64(n)))
		nTest := int(math.Round(ratios.Test * float64(n)))
		if n >= 3 {
			if nVal == 0 {
				nVal = 1
			}
			if nTest == 0 {
				nTest = 1
			}
			for n-nVal-nTest < 1 {
				if nVal >= nTest && nVal > 1 {
					nVal--
				} else if nTest > 1 {
					nTest--
				} else {
					break
				}
			}
		}
		nTrain := n - nVal - nTest
		if nTrain < 0 {
			nTrain = 0
		}

		for i, idx := range group {
			switch {
			case i < nTrain:
				split.Train = append(split.Train, rows[idx])
			case i < nTrain+nVal:
				split.Validation = append(split.Validation, rows[idx])
			default:
				split.Test = append(split.Test, rows[idx])
			}
		}
	}
	return split
}

// Augment synthesizes training-only rows by recombining resume fragments
// of two same-category source rows. The returned rows are the synthetic
// additions; validation and test splits are never touched.
func Augment(train []Row, fraction float64, seed int64) []Row {
	target := int(fraction * float64(len(train)))
	if target == 0 {
		return nil
	}

	byCategory := map[string][]int{}
	for i, row := range train {
		if len(row.ResumeText) > 0 {
			byCategory[row.Category] = append(byCategory[row.Category], i)
		}
	}
	categories := make([]string, 0, len(byCategory))
	for c, group := range byCategory {
		if len(group) >= 2 {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		return nil
	}
	sort.Strings(categories)

	rng := rand.New(rand.NewSource(seed))
	var synthetic []Row
	for len(synthetic) < target {
		group := byCategory[categories[rng.Intn(len(categories))]]
		i := group[rng.Intn(len(group))]
		j := group[rng.Intn(len(group))]
		if i == j {
			continue
		}
		a, b := train[i], train[j]
		mixed := a.ResumeText[:len(a.ResumeText)/2] + " " + b.ResumeText[len(b.ResumeText)/2:]
		synthetic = append(synthetic, Row{
			ResumeText: mixed,
			JobText:    a.JobText,
			MatchLabel: a.MatchLabel,
			Category:   a.Category,
		})
	}
	return synthetic
}
