// Package usecase implements the encryption migrator: it walks a family's plaintext
// rows, encrypts each one, persists the envelope and audits every attempt.
package usecase

import "context"

// SystemActor is recorded as the user of audit entries when no actor is set.
const SystemActor = "system"

type actorKey struct{}

// WithActor stores the user on whose behalf a migration runs.
func WithActor(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, actorKey{}, userID)
}

// ActorFromContext returns the actor set by WithActor, or SystemActor.
func ActorFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value(actorKey{}).(string); ok && userID != "" {
		return userID
	}
	return SystemActor
}
