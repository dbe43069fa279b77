// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config stores user wide settings for explainit.
//
// Configuration data is not specific to an analyzed project.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/drone/envsubst"
)

// Config is the explainit configuration of the current user, stored at ~/.explainit/config.json.
//
// Paths are dot separated, for example "analyze.parallelism".
type Config interface {
	Raw() map[string]any
	Get(path string) (any, bool)
	GetString(path string) (string, bool)
	GetSection(path string, section any) (bool, error)
	Set(path string, value any) error
	Unset(path string) error
	IsEmpty() bool
	// Paths returns the path of every leaf value, sorted.
	Paths() []string
}

// NewEmptyConfig creates a empty configuration object.
func NewEmptyConfig() Config {
	return NewConfig(nil)
}

// NewConfig creates a configuration object, populated with an initial set of keys and values.
func NewConfig(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}

	return &config{
		data:      data,
		lookupEnv: os.Getenv,
	}
}

type config struct {
	data map[string]any
	// lookupEnv resolves ${VAR} references in string values.
	lookupEnv func(string) string
}

func (c *config) IsEmpty() bool {
	return len(c.data) == 0
}

// Gets the raw values stored in the configuration as a Go map
func (c *config) Raw() map[string]any {
	return c.data
}

func (c *config) Paths() []string {
	all := paths(c.data)
	slices.Sort(all)
	return all
}

// paths recursively traverses a map and returns the paths to its leaf nodes.
func paths(start map[string]any) []string {
	var all []string
	for path, value := range start {
		if node, isNode := value.(map[string]any); isNode {
			for _, child := range paths(node) {
				all = append(all, fmt.Sprintf("%s.%s", path, child))
			}
		} else {
			all = append(all, path)
		}
	}
	return all
}

// Sets a value at the specified location
func (c *config) Set(path string, value any) error {
	depth := 1
	currentNode := c.data
	parts := strings.Split(path, ".")
	for _, part := range parts {
		if depth == len(parts) {
			currentNode[part] = value
			return nil
		}
		var node map[string]any
		value, ok := currentNode[part]
		if !ok || value == nil {
			node = map[string]any{}
		}

		if value != nil {
			node, ok = value.(map[string]any)
			if !ok {
				return fmt.Errorf("failed converting node at path '%s' to map", part)
			}
		}

		currentNode[part] = node
		currentNode = node
		depth++
	}

	return nil
}

// Removes any values stored at the specified path
// When the path location is an object will remove the whole node
// When the path does not exist, will return a `nil` value
func (c *config) Unset(path string) error {
	depth := 1
	currentNode := c.data
	parts := strings.Split(path, ".")
	for _, part := range parts {
		if depth == len(parts) {
			delete(currentNode, part)
			return nil
		}

		value, ok := currentNode[part]
		// Path already doesn't exist, NOOP
		if !ok || value == nil {
			return nil
		}

		node, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("failed converting node at path '%s' to map", part)
		}

		currentNode = node
		depth++
	}

	return nil
}

// Gets the value stored at the specified location, with environment references expanded.
// Returns the value if exists, otherwise returns nil & a value indicating if the value existing
func (c *config) Get(path string) (any, bool) {
	depth := 1
	currentNode := c.data
	parts := strings.Split(path, ".")
	for _, part := range parts {
		if depth == len(parts) {
			value, ok := currentNode[part]
			if !ok {
				return value, ok
			}

			return c.interpolateNodeValue(value)
		}
		value, ok := currentNode[part]
		if !ok {
			return value, ok
		}

		node, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}

		currentNode = node
		depth++
	}

	return nil, false
}

// Gets the value stored at the specified location as a string
func (c *config) GetString(path string) (string, bool) {
	value, ok := c.Get(path)
	if !ok {
		return "", false
	}

	str, ok := value.(string)
	return str, ok
}

func (c *config) GetSection(path string, section any) (bool, error) {
	sectionConfig, ok := c.Get(path)
	if !ok {
		return false, nil
	}

	jsonBytes, err := json.Marshal(sectionConfig)
	if err != nil {
		return true, fmt.Errorf("marshalling section config: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, section); err != nil {
		return true, fmt.Errorf("unmarshalling section config: %w", err)
	}

	return true, nil
}

// interpolateNodeValue expands ${VAR} references in string values, recursing into nested nodes and lists.
// A string that is not a valid template is returned unchanged.
func (c *config) interpolateNodeValue(value any) (any, bool) {
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, "$") {
			return v, true
		}

		expanded, err := envsubst.Eval(v, c.lookupEnv)
		if err != nil {
			return v, true
		}

		return expanded, true
	case map[string]any:
		// A cloned map keeps the stored data unexpanded.
		cloneMap := map[string]any{}
		for key, val := range v {
			if nodeValue, ok := c.interpolateNodeValue(val); ok {
				cloneMap[key] = nodeValue
			}
		}

		return cloneMap, true
	case []any:
		cloneList := make([]any, 0, len(v))
		for _, val := range v {
			if nodeValue, ok := c.interpolateNodeValue(val); ok {
				cloneList = append(cloneList, nodeValue)
			}
		}

		return cloneList, true
	default:
		return value, true
	}
}
