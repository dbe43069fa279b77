// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package appdetect

import (
	"bufio"
	"fmt"
	"regexp"
	"strings"

	"github.com/braydonk/yaml"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// property is a flattened configuration entry and the file that declared it.
type property struct {
	value    string
	location string
}

// readProperties flattens the application configuration of a tree into dot-separated keys.
//
// Spring application.properties and application.yml files are read first, then the profile-specific files of
// spring.profiles.active, then a .env file. Later files override earlier ones.
func readProperties(src EvidenceSource) (map[string]property, error) {
	result := map[string]property{}
	var errs error

	read := func(name string) {
		p, ok := src.FindFile(name)
		if !ok {
			return
		}

		content, err := src.ReadText(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			return
		}

		switch {
		case strings.HasSuffix(name, ".properties"):
			readPropertiesInPropertiesFile(p, content, result)
		case name == ".env":
			errs = multierr.Append(errs, readPropertiesInEnvFile(p, content, result))
		default:
			errs = multierr.Append(errs, readPropertiesInYamlFile(p, content, result))
		}
	}

	read("application.properties")
	read("application.yml")
	read("application.yaml")
	if profile, ok := result["spring.profiles.active"]; ok && profile.value != "" {
		active := strings.TrimSpace(strings.Split(profile.value, ",")[0])
		read("application-" + active + ".properties")
		read("application-" + active + ".yml")
		read("application-" + active + ".yaml")
	}
	read(".env")

	return result, errs
}

func readPropertiesInYamlFile(location string, content string, result map[string]property) error {
	var root yaml.Node
	if err := yaml.Unmarshal([]byte(content), &root); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedManifest, location, err)
	}

	parseYAML("", &root, location, result)
	return nil
}

// parseYAML recursively walks a YAML node and builds dot-separated keys into result.
func parseYAML(prefix string, node *yaml.Node, location string, result map[string]property) {
	switch node.Kind {
	case yaml.DocumentNode:
		for _, contentNode := range node.Content {
			parseYAML(prefix, contentNode, location, result)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			if keyNode.Kind != yaml.ScalarNode {
				continue
			}

			key := keyNode.Value
			if prefix != "" {
				key = prefix + "." + key
			}
			parseYAML(key, node.Content[i+1], location, result)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			parseYAML(fmt.Sprintf("%s[%d]", prefix, i), item, location, result)
		}
	case yaml.ScalarNode:
		result[prefix] = property{value: placeholderDefault(node.Value), location: location}
	}
}

func readPropertiesInPropertiesFile(location string, content string, result map[string]property) {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			key, value, ok = strings.Cut(line, ":")
		}

		if ok {
			result[strings.TrimSpace(key)] = property{value: placeholderDefault(value), location: location}
		}
	}
}

func readPropertiesInEnvFile(location string, content string, result map[string]property) error {
	env, err := godotenv.Unmarshal(content)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedManifest, location, err)
	}

	for key, value := range env {
		result[key] = property{value: value, location: location}
	}

	return nil
}

var environmentVariableRegex = regexp.MustCompile(`\$\{([^:}]+)(?::([^}]*))?}`)

// placeholderDefault replaces ${NAME:default} placeholders with their default. The analyzing machine's environment is
// never consulted, so a placeholder without a default is kept as written.
func placeholderDefault(rawValue string) string {
	return environmentVariableRegex.ReplaceAllStringFunc(strings.TrimSpace(rawValue), func(placeholder string) string {
		match := environmentVariableRegex.FindStringSubmatch(placeholder)
		if match[2] == "" {
			return placeholder
		}

		return match[2]
	})
}

