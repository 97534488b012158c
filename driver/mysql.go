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

package driver

import (
	"context"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/eatmoreapple/worm"
)

// MySQLDriver is a driver of MySQL.
// Data sources use the go-sql-driver DSN format.
type MySQLDriver struct {
	Options []ConnectOptionFunc
}

// ParseDataSource validates dataSource and returns it in canonical form.
func (d MySQLDriver) ParseDataSource(dataSource string) (string, error) {
	cfg, err := mysql.ParseDSN(dataSource)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDataSource, err)
	}
	return cfg.FormatDSN(), nil
}

// Connect implements worm.Driver.
func (d MySQLDriver) Connect(ctx context.Context, dataSource string) (worm.Executor, error) {
	dsn, err := d.ParseDataSource(dataSource)
	if err != nil {
		return nil, worm.NewConnectionError(dataSource, err)
	}
	return SQLDriver{Name: "mysql", Options: d.Options}.Connect(ctx, dsn)
}

func (d MySQLDriver) String() string {
	return "mysql"
}

func init() {
	_ = worm.Register("mysql", MySQLDriver{})
}
