package di

import (
	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/querycache"
)

// Container provides dependency injection for query cache components.
// It holds the validated cache configuration and the key serializer, and
// provides the factory for constructing sessions.
//
// The container deliberately does NOT hold a shared store: cache state is
// transaction-scoped, so every session gets a fresh store. Sharing one store
// across sessions would let one transaction's ClearCache wipe another's
// results.
type Container struct {
	config     cache.Config
	serializer cache.KeySerializer
}

// NewContainer creates a new DI container with the provided cache
// configuration. The configuration is validated once here so session
// construction cannot fail later.
func NewContainer(config cache.Config) (*Container, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Container{
		config:     config,
		serializer: cache.NewDefaultKeySerializer(),
	}, nil
}

// NewContainerWithDefaults creates a new DI container using default
// configuration. This is a convenience constructor for typical use cases
// where custom configuration is not required.
func NewContainerWithDefaults() (*Container, error) {
	return NewContainer(cache.DefaultConfig())
}

// KeySerializer returns the singleton key serializer instance.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.serializer
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewSession creates a session with a fresh, exclusively owned store, wired
// to the container's configuration and key serializer. Call it once per
// logical transaction.
//
// Since Go methods cannot have type parameters, this is provided as a
// package-level function. Example: NewSession[User](container, executor)
func NewSession[T any](container *Container, exec querycache.Executor[T], opts ...querycache.Option[T]) (*querycache.Session[T], error) {
	store, err := cache.NewStore(container.config)
	if err != nil {
		return nil, err
	}

	merged := append([]querycache.Option[T]{
		querycache.WithKeySerializer[T](container.serializer),
	}, opts...)

	return querycache.New(exec, store, merged...), nil
}
