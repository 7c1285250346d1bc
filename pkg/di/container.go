package di

import (
	"time"

	"github.com/goliatone/go-repository-audit/audit"
	"github.com/goliatone/go-repository-audit/cache"
	"github.com/goliatone/go-repository-audit/repositoryaudit"
	"github.com/goliatone/go-repository-audit/repositorycache"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/sirupsen/logrus"
)

// Container wires the audit and cache components shared by every repository.
// All of them are built once in NewContainer and reused.
type Container struct {
	store         cache.Store
	keySerializer cache.KeySerializer
	invalidator   *cache.Invalidator
	registry      *audit.Registry
	interceptor   *repositoryaudit.Interceptor
	config        cache.Config
}

// Option customizes a Container.
type Option func(*settings)

type settings struct {
	store             cache.Store
	registry          *audit.Registry
	logger            logrus.FieldLogger
	clock             func() time.Time
	stampHooks        []repositoryaudit.Hook
	invalidationHooks []cache.InvalidationHook
}

// WithStore uses store instead of building one from the cache config.
func WithStore(store cache.Store) Option {
	return func(s *settings) { s.store = store }
}

// WithRegistry replaces audit.DefaultRegistry.
func WithRegistry(registry *audit.Registry) Option {
	return func(s *settings) { s.registry = registry }
}

// WithLogger sets the logger handed to the interceptor and the invalidator.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithClock overrides the audit clock.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.clock = now }
}

// WithStampHook observes every audit stamp.
func WithStampHook(hook repositoryaudit.Hook) Option {
	return func(s *settings) { s.stampHooks = append(s.stampHooks, hook) }
}

// WithInvalidationHook observes every cache invalidation.
func WithInvalidationHook(hook cache.InvalidationHook) Option {
	return func(s *settings) { s.invalidationHooks = append(s.invalidationHooks, hook) }
}

// NewContainer creates a container for config.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	s := settings{logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(&s)
	}

	store := s.store
	if store == nil {
		var err error
		if store, err = cache.NewCacheService(config); err != nil {
			return nil, err
		}
	}

	registry := s.registry
	if registry == nil {
		registry = audit.DefaultRegistry()
	}

	interceptorOpts := []repositoryaudit.Option{
		repositoryaudit.WithLogger(s.logger.WithField("component", "audit")),
		repositoryaudit.WithClock(s.clock),
	}
	for _, hook := range s.stampHooks {
		interceptorOpts = append(interceptorOpts, repositoryaudit.WithHook(hook))
	}

	invalidatorOpts := []cache.InvalidatorOption{
		cache.WithInvalidationLogger(s.logger.WithField("component", "cache")),
	}
	for _, hook := range s.invalidationHooks {
		invalidatorOpts = append(invalidatorOpts, cache.WithInvalidationHook(hook))
	}

	return &Container{
		store:         store,
		keySerializer: cache.NewDefaultKeySerializer(),
		invalidator:   cache.NewInvalidator(store, invalidatorOpts...),
		registry:      registry,
		interceptor:   repositoryaudit.NewInterceptor(registry, interceptorOpts...),
		config:        config,
	}, nil
}

// NewContainerWithDefaults creates a container with cache.DefaultConfig.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

func (c *Container) CacheService() cache.Store {
	return c.store
}

func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

func (c *Container) Invalidator() *cache.Invalidator {
	return c.invalidator
}

func (c *Container) Registry() *audit.Registry {
	return c.registry
}

func (c *Container) Interceptor() *repositoryaudit.Interceptor {
	return c.interceptor
}

// Config returns a copy of the cache configuration.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewAuditedRepository wraps base with audit stamping.
func NewAuditedRepository[T any](container *Container, base repository.Repository[T], opts ...repositoryaudit.RepositoryOption) *repositoryaudit.AuditedRepository[T] {
	return repositoryaudit.New(base, container.interceptor, opts...)
}

// NewCachedRepository wraps base with read-through caching and write invalidation.
func NewCachedRepository[T any](container *Container, base repository.Repository[T], opts ...repositorycache.Option) *repositorycache.CachedRepository[T] {
	opts = append([]repositorycache.Option{repositorycache.WithKeySerializer(container.keySerializer)}, opts...)
	return repositorycache.New(base, container.store, container.invalidator, opts...)
}

// NewRepository stacks both decorators: records are stamped first, then
// written through the cache layer to base.
func NewRepository[T any](container *Container, base repository.Repository[T]) repository.Repository[T] {
	return NewAuditedRepository[T](container, NewCachedRepository(container, base))
}
