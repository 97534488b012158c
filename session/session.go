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

// Package session carries the connection a unit of work runs on through a context.
package session

import (
	"context"
	"errors"
)

// ErrNoSession is the error that no session found in context.
var ErrNoSession = errors.New("no session found in context")

// sessionKey is the key for a session of type S in the context.
type sessionKey[S any] struct{}

// WithContext returns a new context with the session.
func WithContext[S any](ctx context.Context, sess S) context.Context {
	return context.WithValue(ctx, sessionKey[S]{}, sess)
}

// FromContext returns the session of type S from the context.
// If no session is found in the context, it returns ErrNoSession.
func FromContext[S any](ctx context.Context) (S, error) {
	sess, ok := ctx.Value(sessionKey[S]{}).(S)
	if !ok {
		var zero S
		return zero, ErrNoSession
	}
	return sess, nil
}
