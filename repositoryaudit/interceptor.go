package repositoryaudit

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/sirupsen/logrus"
)

// Operation is a persistence call whose first argument, if any, is the entity.
type Operation func(ctx context.Context, args ...any) (any, error)

// Hook observes the outcome of every classified invocation.
type Hook func(ctx context.Context, operation string, result audit.Result)

// Interceptor stamps audit fields on the entity of classified operations
// before they run. It never fails the wrapped call.
type Interceptor struct {
	registry *audit.Registry
	now      func() time.Time
	logger   logrus.FieldLogger
	hooks    []Hook
}

// Option configures an Interceptor.
type Option func(*Interceptor)

// WithLogger sets the logger that reports stamping outcomes.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(i *Interceptor) {
		if now != nil {
			i.now = now
		}
	}
}

// WithHook registers a hook.
func WithHook(hook Hook) Option {
	return func(i *Interceptor) {
		if hook != nil {
			i.hooks = append(i.hooks, hook)
		}
	}
}

// NewInterceptor builds an interceptor over registry. A nil registry uses audit.DefaultRegistry.
func NewInterceptor(registry *audit.Registry, opts ...Option) *Interceptor {
	if registry == nil {
		registry = audit.DefaultRegistry()
	}
	i := &Interceptor{
		registry: registry,
		now:      time.Now,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Registry returns the classification table.
func (i *Interceptor) Registry() *audit.Registry {
	return i.registry
}

// Before stamps args[0] when operation is classified.
func (i *Interceptor) Before(ctx context.Context, operation string, args ...any) audit.Result {
	op, ok := i.registry.Lookup(operation)
	if !ok {
		return audit.Result{}
	}
	return i.stamp(ctx, operation, op, args...)
}

// BeforeMethod is Before for repository methods: the classification of
// "namespace.method" wins over the one of method.
func (i *Interceptor) BeforeMethod(ctx context.Context, namespace, method string, args ...any) audit.Result {
	op, ok := i.registry.Resolve(namespace, method)
	if !ok {
		return audit.Result{}
	}
	operation := method
	if namespace != "" {
		operation = namespace + "." + method
	}
	return i.stamp(ctx, operation, op, args...)
}

func (i *Interceptor) stamp(ctx context.Context, operation string, op audit.OperationType, args ...any) audit.Result {
	if len(args) == 0 || args[0] == nil {
		return audit.Result{Operation: op}
	}

	res := audit.Stamp(args[0], op, audit.CurrentActor(ctx), i.now())
	i.report(ctx, operation, res)
	return res
}

func (i *Interceptor) report(ctx context.Context, operation string, res audit.Result) {
	fields := logrus.Fields{
		"operation": operation,
		"audit_op":  res.Operation.String(),
	}
	switch {
	case res.Err != nil:
		i.logger.WithFields(fields).WithError(res.Err).Warn("audit stamp incomplete")
	case !res.Auditable():
		i.logger.WithFields(fields).Debug("entity exposes no audit fields")
	default:
		i.logger.WithFields(fields).WithField("slots", len(res.Applied)).Trace("audit fields stamped")
	}

	for _, hook := range i.hooks {
		i.runHook(ctx, hook, operation, res)
	}
}

// runHook contains a panicking hook so it cannot fail the wrapped call.
func (i *Interceptor) runHook(ctx context.Context, hook Hook, operation string, res audit.Result) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.WithFields(logrus.Fields{
				"operation": operation,
				"panic":     r,
			}).Warn("audit hook panicked")
		}
	}()
	hook(ctx, operation, res)
}

// Wrap returns next with stamping applied before every call.
func (i *Interceptor) Wrap(operation string, next Operation) Operation {
	return func(ctx context.Context, args ...any) (any, error) {
		i.Before(ctx, operation, args...)
		return next(ctx, args...)
	}
}

// Around wraps a typed single entity operation.
func Around[E, R any](i *Interceptor, operation string, next func(ctx context.Context, entity E) (R, error)) func(ctx context.Context, entity E) (R, error) {
	return func(ctx context.Context, entity E) (R, error) {
		i.Before(ctx, operation, entity)
		return next(ctx, entity)
	}
}
