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

import "context"

// QueryHandler runs rendered SQL and returns its rows.
type QueryHandler func(ctx context.Context, sql string) (Rows, error)

// executorQueryHandler is the innermost QueryHandler of every chain.
// Executor failures that are not already typed are reported as *ExecutionError.
func executorQueryHandler(executor Executor) QueryHandler {
	return func(ctx context.Context, sql string) (Rows, error) {
		rows, err := executor.ExecuteSQL(ctx, sql)
		if err != nil {
			return nil, asExecutionError(sql, err)
		}
		return rows, nil
	}
}

// CombineQueryHandler wraps the executor with the middlewares for the script called name.
// If the middlewares is empty, it returns the executor handler itself.
func CombineQueryHandler(name string, executor Executor, middlewares ...Middleware) QueryHandler {
	handler := executorQueryHandler(executor)
	if len(middlewares) > 0 {
		return MiddlewareGroup(middlewares).QueryContext(name, handler)
	}
	return handler
}
