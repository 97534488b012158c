/*
Copyright 2024 eatmoreapple

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package worm

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
)

// Configuration is the parsed worm.xml.
type Configuration struct {
	// Environments holds every database environment.
	Environments *Environments

	// Settings holds the settings element.
	Settings Settings
}

// NewXMLConfiguration parses the configuration file at filename.
func NewXMLConfiguration(filename string) (*Configuration, error) {
	return NewXMLConfigurationWithFS(LocalFS{BaseDir: filepath.Dir(filename)}, filepath.Base(filename))
}

// NewXMLConfigurationWithFS parses the configuration file name from fsys.
func NewXMLConfigurationWithFS(fsys fs.FS, name string) (*Configuration, error) {
	file, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return ParseXMLConfiguration(file)
}

// nodeUnclosedError is returned when a node is not closed.
type nodeUnclosedError struct {
	nodeName string
}

func (e *nodeUnclosedError) Error() string {
	return fmt.Sprintf("worm: node %s is not closed", e.nodeName)
}

// ParseXMLConfiguration parses a configuration document from reader.
func ParseXMLConfiguration(reader io.Reader) (*Configuration, error) {
	decoder := xml.NewDecoder(reader)
	cfg := &Configuration{Settings: Settings{}}
	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		start, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "environments":
			if cfg.Environments, err = parseEnvironments(decoder, start); err != nil {
				return nil, err
			}
		case "settings":
			if cfg.Settings, err = parseSettings(decoder, start); err != nil {
				return nil, err
			}
		}
	}
	if cfg.Environments == nil {
		return nil, errors.New("worm: configuration has no environments")
	}
	return cfg, nil
}

func parseEnvironments(decoder *xml.Decoder, start xml.StartElement) (*Environments, error) {
	envs := &Environments{envs: make(map[string]*Environment)}
	for _, attr := range start.Attr {
		envs.setAttr(attr.Name.Local, attr.Value)
	}
	if envs.Attr("default") == "" {
		return nil, errors.New("worm: default environment is not specified")
	}
	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch token := token.(type) {
		case xml.StartElement:
			if token.Name.Local != "environment" {
				continue
			}
			env, err := parseEnvironment(decoder, token)
			if err != nil {
				return nil, err
			}
			if _, exists := envs.envs[env.ID()]; exists {
				return nil, fmt.Errorf("worm: duplicate environment id: %s", env.ID())
			}
			envs.envs[env.ID()] = env
		case xml.EndElement:
			if token.Name.Local == "environments" {
				return envs, nil
			}
		}
	}
	return nil, &nodeUnclosedError{nodeName: "environments"}
}

func parseEnvironment(decoder *xml.Decoder, start xml.StartElement) (*Environment, error) {
	env := &Environment{}
	for _, attr := range start.Attr {
		env.setAttr(attr.Name.Local, attr.Value)
	}
	if env.ID() == "" {
		return nil, errors.New("worm: environment id is required")
	}
	provider := env.provider()
	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		switch token := token.(type) {
		case xml.StartElement:
			name := token.Name.Local
			value, err := parseEnvValue(decoder, name, provider)
			if err != nil {
				return nil, fmt.Errorf("worm: environment %s: %w", env.ID(), err)
			}
			switch name {
			case "dataSource":
				env.DataSource = value
			case "driver":
				env.Driver = value
			case "maxOpenConnNum":
				if env.MaxOpenConnNum, err = strconv.Atoi(value); err != nil {
					return nil, fmt.Errorf("worm: environment %s: invalid %s: %w", env.ID(), name, err)
				}
			}
		case xml.EndElement:
			if token.Name.Local == "environment" {
				return env, nil
			}
		}
	}
	return nil, &nodeUnclosedError{nodeName: "environment"}
}

// parseEnvValue reads the character data of the element named name and
// resolves it through provider.
func parseEnvValue(decoder *xml.Decoder, name string, provider EnvValueProvider) (string, error) {
	var builder strings.Builder
	for {
		token, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				return "", &nodeUnclosedError{nodeName: name}
			}
			return "", err
		}
		switch token := token.(type) {
		case xml.CharData:
			builder.Write(token)
		case xml.EndElement:
			if token.Name.Local == name {
				return provider.Get(strings.TrimSpace(builder.String()))
			}
		}
	}
}

func parseSettings(decoder *xml.Decoder, start xml.StartElement) (Settings, error) {
	var element struct {
		Settings []setting `xml:"setting"`
	}
	if err := decoder.DecodeElement(&element, &start); err != nil {
		return nil, err
	}
	settings := make(Settings, len(element.Settings))
	for _, s := range element.Settings {
		if _, ok := settings[s.Name]; ok {
			return nil, fmt.Errorf("worm: duplicate setting name: %s", s.Name)
		}
		settings[s.Name] = s.Value
	}
	return settings, nil
}
