package features

import (
	"reflect"
	"testing"
)

func TestExtractSkillBoundaries(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("Senior JavaScript developer").Skills
	if !reflect.DeepEqual(got, []string{"javascript"}) {
		t.Fatalf("skills = %v, want [javascript]; java must not fire inside javascript", got)
	}

	got = e.Extract("Java and JavaScript developer").Skills
	if !reflect.DeepEqual(got, []string{"java", "javascript"}) {
		t.Fatalf("skills = %v, want [java javascript]", got)
	}
}

func TestExtractSymbolSkills(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("Worked with C++, C# and .NET services").Skills
	want := []string{".net", "c#", "c++"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("skills = %v, want %v", got, want)
	}
}

func TestExtractAliasCanonicalization(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("Golang services deployed on k8s with Postgres").Skills
	want := []string{"go", "kubernetes", "postgresql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("skills = %v, want %v", got, want)
	}

	// Alias and canonical in the same text dedupe to one entry.
	got = e.Extract("Go and Golang").Skills
	if !reflect.DeepEqual(got, []string{"go"}) {
		t.Fatalf("skills = %v, want [go]", got)
	}
}

func TestExtractExperienceYears(t *testing.T) {
	e := NewExtractor(nil)

	tests := []struct {
		text string
		want float64
	}{
		{"5 years of backend development", 5},
		{"3.5 yrs in data engineering", 3.5},
		{"over 7+ years shipping software", 7},
		{"Backend engineer, 2015 - 2020, Acme Corp", 5},
		{"no duration mentioned here", 0},
		{"99 years of experience", 50},
	}
	for _, tt := range tests {
		if got := e.Extract(tt.text).ExperienceYears; got != tt.want {
			t.Errorf("Extract(%q).ExperienceYears = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestExtractPicksLargestDuration(t *testing.T) {
	e := NewExtractor(nil)

	got := e.Extract("2 years at Acme, then 6 years at Globex").ExperienceYears
	if got != 6 {
		t.Fatalf("experience years = %v, want 6", got)
	}
}

func TestExtractContactEntities(t *testing.T) {
	e := NewExtractor(nil)

	out := e.Extract("Jane Doe, jane.doe@example.com, +1 555 123 4567, Bachelor of Science")

	var labels []string
	for _, ent := range out.Entities {
		labels = append(labels, ent.Label)
	}

	want := map[string]bool{LabelEmail: false, LabelPhone: false, LabelDegree: false}
	for _, l := range labels {
		if _, ok := want[l]; ok {
			want[l] = true
		}
	}
	for label, found := range want {
		if !found {
			t.Errorf("entity %s not extracted from contact line (got labels %v)", label, labels)
		}
	}
}

func TestExtractEmptyText(t *testing.T) {
	e := NewExtractor(nil)

	out := e.Extract("")
	if len(out.Skills) != 0 || out.ExperienceYears != 0 || len(out.Entities) != 0 {
		t.Fatalf("empty text produced signals: %+v", out)
	}
}

func TestNewVocabularyRejectsNothing(t *testing.T) {
	v, err := NewVocabulary(map[string]string{"erlang": "erlang", "otp": "erlang"})
	if err != nil {
		t.Fatalf("NewVocabulary: %v", err)
	}

	e := NewExtractor(v)
	got := e.Extract("Erlang/OTP engineer").Skills
	if !reflect.DeepEqual(got, []string{"erlang"}) {
		t.Fatalf("skills = %v, want [erlang]", got)
	}
}
