package pipeline

// Verdict is the judge's decision on one synthesized candidate.
type Verdict int

const (
	// VerdictNone means no verdict was reached (synthesis failed, or the
	// chain was cancelled before judging).
	VerdictNone Verdict = iota
	VerdictAccept
	VerdictDiscard
)

func (v Verdict) String() string {
	switch v {
	case VerdictAccept:
		return "accept"
	case VerdictDiscard:
		return "discard"
	default:
		return "none"
	}
}

// ContextOutcome records everything that happened to one (image, context)
// pair: the synthesis chain, the verdict, and every artifact written.
type ContextOutcome struct {
	Index       int    // 1-based context index
	Description string // placement description driving the synthesis

	Synthesized  bool
	Attempts     int   // attempts the synthesis chain consumed
	SynthesisErr error // set when the chain failed

	Verdict  Verdict
	JudgeErr error // set when the verdict came from a failed judge call

	// Artifacts are the paths this chain wrote: for accepted outcomes the
	// original then its variants, for discarded ones the discard-tree copy.
	Artifacts  []string
	AugmentErr error // variants lost; the accepted original is kept
}

// Accepted reports whether the chain placed an original in the curated tree.
func (o *ContextOutcome) Accepted() bool { return o.Verdict == VerdictAccept }

// ImageRecord is the per-image unit of the run's outcome: the planned
// contexts and one outcome per context, in order.
type ImageRecord struct {
	Source   string
	Contexts []string
	PlanErr  error // context planning failed; the image ran with no contexts
	Outcomes []ContextOutcome
}
