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
	"strconv"
	"time"
)

// Setting names understood by the engine.
const (
	// SettingDebug turns the DebugMiddleware on or off. It is on by default.
	SettingDebug = "debug"

	// SettingTimeout bounds every script, in milliseconds.
	SettingTimeout = "timeout"

	// SettingPoolSize overrides the maxOpenConnNum of the environment.
	SettingPoolSize = "poolSize"
)

// setting is a setting element.
type setting struct {
	// The name of the setting.
	Name string `xml:"name,attr"`
	// The value of the setting.
	Value StringValue `xml:"value,attr"`
}

// Settings is the key value set of the settings element.
type Settings map[string]StringValue

// Get returns the value of the setting, or an empty value.
func (s Settings) Get(name string) StringValue {
	return s[name]
}

// Debug reports whether debug logging is on. It defaults to true.
func (s Settings) Debug() bool {
	value, ok := s[SettingDebug]
	if !ok || value == "" {
		return true
	}
	return value.Bool()
}

// Timeout returns the script timeout, zero when unset.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.Get(SettingTimeout).Int64()) * time.Millisecond
}

// PoolSize returns the configured pool size, zero when unset.
func (s Settings) PoolSize() int {
	return int(s.Get(SettingPoolSize).Int64())
}

// StringValue is a string value which can be converted to other types.
type StringValue string

// Bool returns true if the value is "true".
func (s StringValue) Bool() bool {
	value, _ := strconv.ParseBool(string(s))
	return value
}

// Int64 returns the value as int64.
func (s StringValue) Int64() int64 {
	value, _ := strconv.ParseInt(string(s), 10, 64)
	return value
}

// String returns the value as string.
func (s StringValue) String() string {
	return string(s)
}
