package audit

import "context"

// Actor identifies the user performing an operation.
type Actor string

// UnknownActor is returned when no actor is bound to the context.
const UnknownActor Actor = ""

func (a Actor) String() string {
	return string(a)
}

type actorContextKey struct{}

type actorBinding struct {
	actor Actor
	bound bool
}

// WithActor binds actor to the returned context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actorBinding{actor: actor, bound: true})
}

// WithoutActor returns a context in which no actor is bound, even if ctx had one.
func WithoutActor(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey{}, actorBinding{})
}

// ActorFromContext reports the actor bound to ctx.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return UnknownActor, false
	}
	b, ok := ctx.Value(actorContextKey{}).(actorBinding)
	if !ok || !b.bound {
		return UnknownActor, false
	}
	return b.actor, true
}

// CurrentActor returns the bound actor or UnknownActor.
func CurrentActor(ctx context.Context) Actor {
	actor, _ := ActorFromContext(ctx)
	return actor
}

// RunAs calls fn with actor bound for its duration.
func RunAs(ctx context.Context, actor Actor, fn func(ctx context.Context) error) error {
	return fn(WithActor(ctx, actor))
}
