// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package ioc wraps github.com/golobby/container with lazy singleton registration, registration of constructed
// instances and nested containers that fall back to their parent when resolving.
package ioc

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/golobby/container/v3"
)

var (
	// ErrResolveInstance is returned when no resolver is registered for the requested type.
	ErrResolveInstance error = errors.New("failed resolving instance from container")

	// golobby does not export typed errors. These are its messages for a missing or unusable registration.
	missingRegistrationRegex = regexp.MustCompile(`container: (no concrete found|invalid)`)
)

// NestedContainer is an IoC container that falls back to its parent for types it cannot resolve.
type NestedContainer struct {
	inner  container.Container
	parent *NestedContainer
}

// NewNestedContainer creates a container that inherits the registrations of parent.
func NewNestedContainer(parent *NestedContainer) *NestedContainer {
	current := container.New()
	if parent != nil {
		for key, value := range parent.inner {
			current[key] = value
		}
	}

	return &NestedContainer{
		inner:  current,
		parent: parent,
	}
}

// RegisterSingleton registers a resolver with a singleton lifetime. The resolver runs on first resolution.
// Panics if the resolver is not valid.
func (c *NestedContainer) RegisterSingleton(resolveFn any) {
	container.MustSingletonLazy(c.inner, resolveFn)
}

// RegisterTransient registers a resolver that runs on every resolution.
func (c *NestedContainer) RegisterTransient(resolveFn any) error {
	return c.inner.TransientLazy(resolveFn)
}

// Resolve fills instance, which must be a pointer to a registered type.
func (c *NestedContainer) Resolve(instance any) error {
	current := c
	for {
		err := current.inner.Resolve(instance)
		if err == nil {
			return nil
		}

		if current.parent == nil || !missingRegistrationRegex.MatchString(err.Error()) {
			return inspectResolveError(err)
		}
		current = current.parent
	}
}

// Invoke calls resolver with its arguments resolved from the container.
func (c *NestedContainer) Invoke(resolver any) error {
	return inspectResolveError(c.inner.Call(resolver))
}

// RegisterInstance registers a constructed instance of the specified type.
// Panics if the registration fails.
func RegisterInstance[F any](c *NestedContainer, instance F) {
	container.MustSingletonLazy(c.inner, func() F {
		return instance
	})
}

// inspectResolveError tells a missing registration apart from an error returned by a resolver. Resolver errors are
// returned as is.
func inspectResolveError(err error) error {
	if err == nil || !missingRegistrationRegex.MatchString(err.Error()) {
		return err
	}

	return fmt.Errorf("%w: %w", ErrResolveInstance, err)
}
