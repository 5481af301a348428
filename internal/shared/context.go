package shared

import "context"

// ActorHeader carries the operator identity forwarded by the authenticating gateway.
const ActorHeader = "X-Actor"

const systemActor = "system"

type actorContextKey struct{}

// ContextWithActor stores the acting operator in context.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the acting operator, defaulting to "system".
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	if actor == "" {
		return systemActor
	}
	return actor
}
