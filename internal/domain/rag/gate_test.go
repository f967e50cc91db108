package rag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func evidenceWithScores(scores ...float64) []RetrievedEvidence {
	evidence := make([]RetrievedEvidence, 0, len(scores))
	for i, score := range scores {
		evidence = append(evidence, RetrievedEvidence{
			Record: FaqRecord{ID: i + 1},
			Score:  score,
			Rank:   i,
		})
	}
	return evidence
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		evidence    []RetrievedEvidence
		threshold   float64
		wantOutcome Outcome
		wantIDs     []int
	}{
		{
			name:        "empty evidence is no evidence",
			evidence:    nil,
			threshold:   0.25,
			wantOutcome: OutcomeNoEvidence,
		},
		{
			name:        "top score below threshold is no evidence",
			evidence:    evidenceWithScores(0.24, 0.10),
			threshold:   0.25,
			wantOutcome: OutcomeNoEvidence,
		},
		{
			name:        "score equal to threshold is answerable",
			evidence:    evidenceWithScores(0.25),
			threshold:   0.25,
			wantOutcome: OutcomeAnswerable,
			wantIDs:     []int{1},
		},
		{
			name:        "candidates below threshold are filtered",
			evidence:    evidenceWithScores(0.90, 0.40, 0.25, 0.10),
			threshold:   0.25,
			wantOutcome: OutcomeAnswerable,
			wantIDs:     []int{1, 2, 3},
		},
		{
			name:        "all candidates retained when all pass",
			evidence:    evidenceWithScores(0.90, 0.80, 0.70),
			threshold:   0.25,
			wantOutcome: OutcomeAnswerable,
			wantIDs:     []int{1, 2, 3},
		},
		{
			name:        "zero threshold keeps everything",
			evidence:    evidenceWithScores(0.50, 0.00),
			threshold:   0,
			wantOutcome: OutcomeAnswerable,
			wantIDs:     []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Decide(tt.evidence, tt.threshold)
			require.Equal(t, tt.wantOutcome, decision.Outcome)

			if tt.wantOutcome != OutcomeAnswerable {
				require.Empty(t, decision.Evidence)
				return
			}
			require.Len(t, decision.Evidence, len(tt.wantIDs))
			for i, want := range tt.wantIDs {
				require.Equal(t, want, decision.Evidence[i].Record.ID)
			}
		})
	}
}

func TestDecide_DoesNotMutateInput(t *testing.T) {
	evidence := evidenceWithScores(0.90, 0.10)
	before := make([]RetrievedEvidence, len(evidence))
	copy(before, evidence)

	_ = Decide(evidence, 0.25)

	require.Equal(t, before, evidence)
}

func TestDecideWithScope(t *testing.T) {
	strong := evidenceWithScores(0.90)

	decision := DecideWithScope(true, strong, 0.25)
	require.Equal(t, OutcomeOutOfScope, decision.Outcome)
	require.Empty(t, decision.Evidence)

	decision = DecideWithScope(false, strong, 0.25)
	require.Equal(t, OutcomeAnswerable, decision.Outcome)
	require.Len(t, decision.Evidence, 1)

	decision = DecideWithScope(false, nil, 0.25)
	require.Equal(t, OutcomeNoEvidence, decision.Outcome)
}
