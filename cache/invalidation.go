package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Wildcard matches any run of characters in a key pattern.
const Wildcard = "*"

// NamespaceSeparator joins a namespace and an id in invalidation keys.
const NamespaceSeparator = "_"

// ErrEmptyPattern is returned when an invalidation is requested with no pattern.
var ErrEmptyPattern = errors.New("cache: empty invalidation pattern")

// Key returns "<namespace>_<id>".
func Key(namespace string, id any) string {
	return namespace + NamespaceSeparator + fmt.Sprint(id)
}

// NarrowPattern matches exactly the key of one record in namespace.
func NarrowPattern(namespace string, id any) string {
	return EscapePattern(Key(namespace, id))
}

// BroadPattern matches every key in namespace.
func BroadPattern(namespace string) string {
	return EscapePattern(namespace+NamespaceSeparator) + Wildcard
}

// EscapePattern escapes glob metacharacters so s matches itself literally.
// Braces and commas are escaped too so no backend reads them as alternation.
func EscapePattern(s string) string {
	if !strings.ContainsAny(s, `*?[]{},\`) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '{', '}', ',', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// InvalidationHook observes every completed invalidation.
type InvalidationHook func(ctx context.Context, pattern string, deleted int, err error)

// Invalidator deletes cached keys matching a pattern after a successful write.
type Invalidator struct {
	store  KeyStore
	logger logrus.FieldLogger
	hooks  []InvalidationHook
}

// InvalidatorOption configures an Invalidator.
type InvalidatorOption func(*Invalidator)

// WithInvalidationLogger sets the logger used for invalidation failures.
func WithInvalidationLogger(logger logrus.FieldLogger) InvalidatorOption {
	return func(i *Invalidator) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithInvalidationHook registers a hook called after every invalidation.
func WithInvalidationHook(hook InvalidationHook) InvalidatorOption {
	return func(i *Invalidator) {
		if hook != nil {
			i.hooks = append(i.hooks, hook)
		}
	}
}

// NewInvalidator creates an invalidator over store.
func NewInvalidator(store KeyStore, opts ...InvalidatorOption) *Invalidator {
	i := &Invalidator{
		store:  store,
		logger: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Invalidate deletes every key matching pattern and returns how many were removed.
func (i *Invalidator) Invalidate(ctx context.Context, pattern string) (int, error) {
	if pattern == "" {
		return 0, ErrEmptyPattern
	}

	deleted, err := i.invalidate(ctx, pattern)
	for _, hook := range i.hooks {
		i.runHook(ctx, hook, pattern, deleted, err)
	}
	if err != nil {
		i.logger.WithError(err).WithField("pattern", pattern).Warn("cache invalidation failed")
		return deleted, err
	}
	i.logger.WithFields(logrus.Fields{
		"pattern": pattern,
		"deleted": deleted,
	}).Debug("cache invalidated")
	return deleted, nil
}

func (i *Invalidator) runHook(ctx context.Context, hook InvalidationHook, pattern string, deleted int, err error) {
	defer func() {
		if r := recover(); r != nil {
			i.logger.WithFields(logrus.Fields{
				"pattern": pattern,
				"panic":   r,
			}).Warn("invalidation hook panicked")
		}
	}()
	hook(ctx, pattern, deleted, err)
}

func (i *Invalidator) invalidate(ctx context.Context, pattern string) (int, error) {
	keys, err := i.store.Keys(ctx, pattern)
	if err != nil {
		return 0, fmt.Errorf("cache: list keys %q: %w", pattern, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := i.store.DeleteKeys(ctx, keys...); err != nil {
		return 0, fmt.Errorf("cache: delete %d keys for %q: %w", len(keys), pattern, err)
	}
	return len(keys), nil
}

// Narrow invalidates the single key "<namespace>_<id>".
func (i *Invalidator) Narrow(ctx context.Context, namespace string, id any) (int, error) {
	if namespace == "" {
		return 0, ErrEmptyPattern
	}
	return i.Invalidate(ctx, NarrowPattern(namespace, id))
}

// Broad invalidates every key under namespace.
func (i *Invalidator) Broad(ctx context.Context, namespace string) (int, error) {
	if namespace == "" {
		return 0, ErrEmptyPattern
	}
	return i.Invalidate(ctx, BroadPattern(namespace))
}
