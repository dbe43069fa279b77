// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package ioc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type settings struct {
	address string
}

var errNoSettings = errors.New("no settings")

func Test_Resolve(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		container := NewNestedContainer(nil)
		container.RegisterSingleton(func() string {
			return "Test"
		})

		var instance string
		err := container.Resolve(&instance)

		require.NoError(t, err)
		require.Equal(t, "Test", instance)
	})

	t.Run("FailWithContainerError", func(t *testing.T) {
		container := NewNestedContainer(nil)

		var instance *settings
		err := container.Resolve(&instance)

		require.ErrorIs(t, err, ErrResolveInstance)
		require.NotErrorIs(t, err, errNoSettings)
	})

	t.Run("FailWithOtherError", func(t *testing.T) {
		container := NewNestedContainer(nil)
		container.RegisterSingleton(func() (*settings, error) {
			return nil, errNoSettings
		})

		var instance *settings
		err := container.Resolve(&instance)

		require.NotErrorIs(t, err, ErrResolveInstance)
		require.ErrorIs(t, err, errNoSettings)
	})

	t.Run("FailWithMissingDependency", func(t *testing.T) {
		container := NewNestedContainer(nil)
		container.RegisterSingleton(func(port int) *settings {
			return &settings{address: fmt.Sprintf(":%d", port)}
		})

		var instance *settings
		err := container.Resolve(&instance)

		require.ErrorIs(t, err, ErrResolveInstance)
	})

	t.Run("FailWithOtherErrorFromChild", func(t *testing.T) {
		parent := NewNestedContainer(nil)
		parent.RegisterSingleton(func() (*settings, error) {
			return nil, errNoSettings
		})
		child := NewNestedContainer(parent)

		var instance *settings
		err := child.Resolve(&instance)

		require.NotErrorIs(t, err, ErrResolveInstance)
		require.ErrorIs(t, err, errNoSettings)
	})
}

func Test_SingletonAndTransient(t *testing.T) {
	container := NewNestedContainer(nil)
	calls := 0
	container.RegisterSingleton(func() *settings {
		calls++
		return &settings{address: ":8080"}
	})
	require.NoError(t, container.RegisterTransient(func() int {
		calls++
		return calls
	}))

	var first, second *settings
	require.NoError(t, container.Resolve(&first))
	require.NoError(t, container.Resolve(&second))
	require.Same(t, first, second)

	var a, b int
	require.NoError(t, container.Resolve(&a))
	require.NoError(t, container.Resolve(&b))
	require.Equal(t, a+1, b)
}

func Test_NestedContainer(t *testing.T) {
	root := NewNestedContainer(nil)
	RegisterInstance(root, &settings{address: ":8080"})

	child := NewNestedContainer(root)
	RegisterInstance(child, "child only")

	var s *settings
	require.NoError(t, child.Resolve(&s))
	require.Equal(t, ":8080", s.address)

	var name string
	require.Error(t, root.Resolve(&name))

	require.NoError(t, child.Invoke(func(s *settings, name string) {
		require.Equal(t, ":8080", s.address)
		require.Equal(t, "child only", name)
	}))
}
