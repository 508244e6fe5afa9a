package core

import "context"

// AssistantService is an opaque generative-AI collaborator: prose in, prose out.
// snapshotJSON is the full record-store snapshot serialized to JSON; the core
// never depends on how (or whether) the collaborator interprets it.
type AssistantService interface {
	Analyze(ctx context.Context, snapshotJSON, question string) (string, error)
}
