package results

import (
	"context"
	"math"
	"strings"
	"testing"
)

func intptr(n int) *int { return &n }

func fixtureStore() *MemoryStore {
	return &MemoryStore{
		Candidates: []CandidateTally{
			{ID: 1, Name: "Anna", Age: intptr(17), FacilityName: "Haus A", FacilityLocation: "Berlin", VoteCount: 3},
			{ID: 2, Name: "Ben", FacilityName: "Haus B", FacilityLocation: "Hamburg", VoteCount: 5},
			{ID: 3, Name: "Clara", Age: intptr(16), FacilityName: "Haus A", FacilityLocation: "Berlin", VoteCount: 3},
			{ID: 4, Name: "Deniz", FacilityName: "Haus C", FacilityLocation: "Köln", VoteCount: 0},
		},
		Sessions:      []int64{3, 1, 3, 2, 2},
		EligibleTotal: 10,
		VotedTotal:    5,
		Facilities: []FacilityParticipation{
			{FacilityName: "Haus B", Eligible: 4, Voted: 2},
			{FacilityName: "Haus A", Eligible: 6, Voted: 3},
		},
	}
}

func TestReportRanking(t *testing.T) {
	svc := New(fixtureStore())
	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}

	wantOrder := []string{"Ben", "Anna", "Clara", "Deniz"}
	if len(report.Results) != len(wantOrder) {
		t.Fatalf("len(Results) = %d, want %d", len(report.Results), len(wantOrder))
	}
	for i, name := range wantOrder {
		if report.Results[i].Name != name {
			t.Fatalf("Results[%d].Name = %q, want %q", i, report.Results[i].Name, name)
		}
	}
}

func TestReportStatistics(t *testing.T) {
	svc := New(fixtureStore())
	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	stats := report.Statistics

	if stats.TotalVotes != 11 {
		t.Fatalf("TotalVotes = %d, want 11", stats.TotalVotes)
	}
	if stats.UniqueVoters != 5 {
		t.Fatalf("UniqueVoters = %d, want 5", stats.UniqueVoters)
	}
	if stats.Eligible != 10 || stats.Voted != 5 {
		t.Fatalf("Eligible/Voted = %d/%d, want 10/5", stats.Eligible, stats.Voted)
	}
	if math.Abs(stats.ParticipationRate-0.5) > 1e-9 {
		t.Fatalf("ParticipationRate = %v, want 0.5", stats.ParticipationRate)
	}

	wantHist := []HistogramBucket{
		{BallotSize: 1, Sessions: 1},
		{BallotSize: 2, Sessions: 2},
		{BallotSize: 3, Sessions: 2},
	}
	if len(stats.Histogram) != len(wantHist) {
		t.Fatalf("len(Histogram) = %d, want %d", len(stats.Histogram), len(wantHist))
	}
	for i, want := range wantHist {
		if stats.Histogram[i] != want {
			t.Fatalf("Histogram[%d] = %+v, want %+v", i, stats.Histogram[i], want)
		}
	}

	// Per-facility rows come back sorted by facility name.
	if stats.PerFacility[0].FacilityName != "Haus A" || stats.PerFacility[1].FacilityName != "Haus B" {
		t.Fatalf("PerFacility order = %+v", stats.PerFacility)
	}
}

func TestReportNoEligibleVoters(t *testing.T) {
	svc := New(&MemoryStore{})
	report, err := svc.Report(context.Background())
	if err != nil {
		t.Fatalf("Report() error = %v", err)
	}
	if report.Statistics.ParticipationRate != 0 {
		t.Fatalf("ParticipationRate = %v, want 0", report.Statistics.ParticipationRate)
	}
}

func TestWriteCSV(t *testing.T) {
	svc := New(fixtureStore())

	var buf strings.Builder
	if err := svc.WriteCSV(context.Background(), &buf); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	out := buf.String()

	if !strings.HasPrefix(out, "\uFEFF") {
		t.Fatalf("csv output is missing the UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(out, "\uFEFF"), "\n"), "\n")
	if lines[0] != "Name,Alter,Einrichtung,Standort,Stimmen" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 5 {
		t.Fatalf("csv rows = %d, want 5", len(lines))
	}
	if lines[1] != "Ben,,Haus B,Hamburg,5" {
		t.Fatalf("first data row = %q", lines[1])
	}
	if lines[2] != "Anna,17,Haus A,Berlin,3" {
		t.Fatalf("second data row = %q", lines[2])
	}
}
