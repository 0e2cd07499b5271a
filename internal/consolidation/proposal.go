package consolidation

import (
	"context"
	"errors"
)

// ErrNoProposal is the rejection reason used when no oracle is configured.
var ErrNoProposal = errors.New("no proposal")

// CandidateStop is a stop as proposed by the oracle. Only OrderID and Sequence are trusted
// for anything; the remaining fields are kept for diagnostics.
type CandidateStop struct {
	OrderID     int64
	Origin      string
	Destination string
	WeightLbs   float64
	VolumeCuft  float64
	Sequence    int
}

// CandidateLoad is an unvalidated load from the oracle.
type CandidateLoad struct {
	Origin              string
	TruckType           string
	Stops               []CandidateStop
	HasStops            bool
	ReportedWeightLbs   float64
	ReportedVolumeCuft  float64
	ReportedUtilization float64
	Reasoning           string
}

// Candidate is an unvalidated plan from the oracle.
type Candidate struct {
	Loads []CandidateLoad
}

// Proposal is the tagged result of asking the oracle: either an accepted candidate or a
// rejection reason. Candidates only reach a commit through Validator.Repair.
type Proposal struct {
	candidate *Candidate
	reason    error
}

// Accepted wraps a parsed candidate.
func Accepted(c Candidate) Proposal {
	return Proposal{candidate: &c}
}

// Rejected records why no usable candidate exists.
func Rejected(reason error) Proposal {
	if reason == nil {
		reason = ErrNoProposal
	}
	return Proposal{reason: reason}
}

// Candidate returns the candidate and true when the proposal was accepted.
func (p Proposal) Candidate() (Candidate, bool) {
	if p.candidate == nil {
		return Candidate{}, false
	}
	return *p.candidate, true
}

// Reason returns the rejection reason, or nil for an accepted proposal.
func (p Proposal) Reason() error {
	if p.candidate != nil {
		return nil
	}
	if p.reason == nil {
		return ErrNoProposal
	}
	return p.reason
}

// Oracle proposes plans. Implementations report every failure as a rejected proposal.
type Oracle interface {
	Propose(ctx context.Context, orders []Order, capacity Capacity) Proposal
}
