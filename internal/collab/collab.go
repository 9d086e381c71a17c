// Package collab defines the capability surface the pipeline needs from its
// AI collaborators and provides the Gemini implementation. Orchestration code
// depends only on the Collaborator interface so deterministic fakes can stand
// in for live models in tests.
package collab

import "context"

// Image is a source photograph handed to a collaborator.
type Image struct {
	Name string // source filename, for logging and error context
	MIME string // image/png or image/jpeg
	Data []byte
}

// Artifact is a synthesized candidate image returned by a collaborator.
type Artifact struct {
	MIME string
	Data []byte
}

// Collaborator abstracts the three AI calls of the pipeline. Every method
// blocks until the model answers, the context times out, or is cancelled.
type Collaborator interface {
	// GenerateContexts returns up to limit ordered placement descriptions
	// for inserting entity into img. Errors are *ContextGenerationError.
	GenerateContexts(ctx context.Context, img Image, entity string, limit int) ([]string, error)

	// SynthesizeEntity inserts entity into img according to placement and
	// returns the candidate artifact. Errors are *SynthesisError.
	SynthesizeEntity(ctx context.Context, img Image, entity, placement string) (*Artifact, error)

	// JudgeAuthenticity reports whether the inserted entity looks natural
	// in candidate. Errors are *JudgeCallError; callers must fail closed.
	JudgeAuthenticity(ctx context.Context, candidate *Artifact, entity, placement string) (bool, error)
}
