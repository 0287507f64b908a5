package alert

import (
	"testing"
)

func TestCandidateDedupKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    Candidate
		want string
	}{
		{
			name: "tuple joins all seven links positionally",
			c: Candidate{
				Dedup: DedupTuple,
				Links: Links{ParticipantID: "p1", PlanID: "pl1"},
			},
			want: "p1|||||pl1|",
		},
		{
			name: "tuple with empty links",
			c:    Candidate{Dedup: DedupTuple},
			want: "||||||",
		},
		{
			name: "tuple qualifier appended",
			c: Candidate{
				Dedup:          DedupTuple,
				Links:          Links{ParticipantID: "p1"},
				DedupQualifier: "2025-06-01",
			},
			want: "p1|||||||2025-06-01",
		},
		{
			name: "title strategy uses the literal title",
			c: Candidate{
				Dedup: DedupTitle,
				Title: "Expired Certification: Fire Safety",
				Links: Links{PropertyID: "ignored"},
			},
			want: "Expired Certification: Fire Safety",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.c.DedupKey(); got != tt.want {
				t.Errorf("DedupKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLinksMatches(t *testing.T) {
	t.Parallel()

	l := Links{ParticipantID: "p1", DwellingID: "d1"}

	tests := []struct {
		name   string
		filter Links
		want   bool
	}{
		{"empty filter matches", Links{}, true},
		{"matching subset", Links{ParticipantID: "p1"}, true},
		{"matching full", Links{ParticipantID: "p1", DwellingID: "d1"}, true},
		{"mismatched field", Links{ParticipantID: "p2"}, false},
		{"filter on absent field", Links{OwnerID: "o1"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := l.Matches(tt.filter); got != tt.want {
				t.Errorf("Matches(%+v) = %v, want %v", tt.filter, got, tt.want)
			}
		})
	}
}

func TestStatusTerminal(t *testing.T) {
	t.Parallel()

	for status, want := range map[Status]bool{
		StatusActive:       false,
		StatusAcknowledged: false,
		StatusResolved:     true,
		StatusDismissed:    true,
	} {
		if got := status.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", status, got, want)
		}
	}
}

func TestSeverityRank(t *testing.T) {
	t.Parallel()

	if !(SeverityCritical.Rank() > SeverityWarning.Rank() && SeverityWarning.Rank() > SeverityInfo.Rank()) {
		t.Error("severity ranks are not strictly ordered critical > warning > info")
	}
	if Severity("bogus").Rank() != 0 {
		t.Error("unknown severity should rank 0")
	}
}
