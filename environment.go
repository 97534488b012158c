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
	"errors"
	"fmt"
	"os"
	"regexp"
	"sync"

	"github.com/joho/godotenv"
)

// formatRegexp matches ${NAME} references in configuration values.
var formatRegexp = regexp.MustCompile(`\$\{ *?([a-zA-Z0-9_\.]+) *?\}`)

// Environment is a database environment.
type Environment struct {
	// DataSource is the data source handed to the driver.
	DataSource string

	// Driver is the name of a registered driver.
	Driver string

	// MaxOpenConnNum is a maximum number of open connections.
	MaxOpenConnNum int

	// attrs is a map of attributes.
	attrs map[string]string
}

// setAttr sets a value of the attribute.
func (e *Environment) setAttr(key, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[key] = value
}

// Attr returns a value of the attribute.
func (e *Environment) Attr(key string) string {
	return e.attrs[key]
}

// ID returns a identifier of the environment.
func (e *Environment) ID() string {
	return e.Attr("id")
}

// provider returns the value provider named by the provider attribute.
func (e *Environment) provider() EnvValueProvider {
	return GetEnvValueProvider(e.Attr("provider"))
}

// Environments is a collection of environments.
type Environments struct {
	attrs map[string]string

	// envs is a map of environments.
	// The key is an identifier of the environment.
	envs map[string]*Environment
}

// setAttr sets a value of the attribute.
func (e *Environments) setAttr(key, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	e.attrs[key] = value
}

// Attr returns a value of the attribute.
func (e *Environments) Attr(key string) string {
	return e.attrs[key]
}

// DefaultEnv returns the default environment.
func (e *Environments) DefaultEnv() (*Environment, error) {
	return e.Use(e.Attr("default"))
}

// Use returns the environment specified by the identifier.
func (e *Environments) Use(id string) (*Environment, error) {
	env, exists := e.envs[id]
	if !exists {
		return nil, fmt.Errorf("worm: environment %s not found", id)
	}
	return env, nil
}

// EnvValueProvider resolves the ${NAME} references of a configuration value.
type EnvValueProvider interface {
	Get(key string) (string, error)
}

// EnvValueProviderFunc is a function type of environment value provider.
type EnvValueProviderFunc func(key string) (string, error)

// Get is a function type of environment value provider.
func (f EnvValueProviderFunc) Get(key string) (string, error) {
	return f(key)
}

// expand replaces every ${NAME} in value with lookup(NAME).
// Every missing name is reported.
func expand(value string, lookup func(name string) (string, bool)) (string, error) {
	var errs []error
	value = formatRegexp.ReplaceAllStringFunc(value, func(find string) string {
		name := formatRegexp.FindStringSubmatch(find)[1]
		resolved, ok := lookup(name)
		if !ok || resolved == "" {
			errs = append(errs, fmt.Errorf("worm: environment variable %s not found", name))
		}
		return resolved
	})
	return value, errors.Join(errs...)
}

// OsEnvValueProvider resolves references from the process environment.
type OsEnvValueProvider struct{}

// Get implements EnvValueProvider.
func (p OsEnvValueProvider) Get(key string) (string, error) {
	return expand(key, os.LookupEnv)
}

// DotEnvValueProvider resolves references from .env files, falling back to
// the process environment. Files are read once, on first use.
type DotEnvValueProvider struct {
	// Files defaults to ".env" in the working directory.
	Files []string

	once   sync.Once
	values map[string]string
	err    error
}

// Get implements EnvValueProvider.
func (p *DotEnvValueProvider) Get(key string) (string, error) {
	p.once.Do(func() {
		p.values, p.err = godotenv.Read(p.Files...)
	})
	if p.err != nil {
		return "", fmt.Errorf("worm: read dotenv: %w", p.err)
	}
	return expand(key, func(name string) (string, bool) {
		if value, ok := p.values[name]; ok {
			return value, true
		}
		return os.LookupEnv(name)
	})
}

var (
	// envValueProviderLibraries is a map of environment value providers.
	envValueProviderLibraries = map[string]EnvValueProvider{}

	envValueProviderLock sync.RWMutex
)

// RegisterEnvValueProvider registers an environment value provider under name.
// It allows to override the default providers.
func RegisterEnvValueProvider(name string, provider EnvValueProvider) {
	if len(name) == 0 {
		panic("worm: environment value provider name is empty")
	}
	if provider == nil {
		panic("worm: environment value provider is nil")
	}
	envValueProviderLock.Lock()
	defer envValueProviderLock.Unlock()
	envValueProviderLibraries[name] = provider
}

// defaultEnvValueProvider leaves values untouched.
var defaultEnvValueProvider EnvValueProviderFunc = func(key string) (string, error) { return key, nil }

// GetEnvValueProvider returns the provider registered under name, or one that
// leaves values untouched.
func GetEnvValueProvider(name string) EnvValueProvider {
	envValueProviderLock.RLock()
	defer envValueProviderLock.RUnlock()
	if provider, exists := envValueProviderLibraries[name]; exists {
		return provider
	}
	return defaultEnvValueProvider
}

func init() {
	RegisterEnvValueProvider("env", &OsEnvValueProvider{})
	RegisterEnvValueProvider("dotenv", &DotEnvValueProvider{})
}
