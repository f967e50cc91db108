package rag

// Decide applies the evidence policy to retrieved candidates. It is pure and
// deterministic: no I/O, no mutation of its inputs.
//
// Policy, in order: empty evidence yields NoEvidence; a top score below the
// threshold yields NoEvidence; otherwise the decision is Answerable and
// carries every candidate at or above the threshold, in rank order. The
// threshold is inclusive.
func Decide(evidence []RetrievedEvidence, scoreThreshold float64) GateDecision {
	if len(evidence) == 0 {
		return GateDecision{Outcome: OutcomeNoEvidence}
	}
	if evidence[0].Score < scoreThreshold {
		return GateDecision{Outcome: OutcomeNoEvidence}
	}

	accepted := make([]RetrievedEvidence, 0, len(evidence))
	for _, ev := range evidence {
		if ev.Score >= scoreThreshold {
			accepted = append(accepted, ev)
		}
	}
	return GateDecision{Outcome: OutcomeAnswerable, Evidence: accepted}
}

// DecideWithScope layers the out-of-scope verdict on top of the evidence
// policy. Out-of-scope wins over everything else: it reflects user intent,
// not corpus coverage.
func DecideWithScope(outOfScope bool, evidence []RetrievedEvidence, scoreThreshold float64) GateDecision {
	if outOfScope {
		return GateDecision{Outcome: OutcomeOutOfScope}
	}
	return Decide(evidence, scoreThreshold)
}
