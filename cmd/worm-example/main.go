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

// Command worm-example lists the accounts of a PostgreSQL database.
//
// DB_PASSWORD and DB_NAME are read from the environment or a .env file.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/eatmoreapple/worm"
	_ "github.com/eatmoreapple/worm/driver"
)

//go:generate go run github.com/eatmoreapple/worm/cmd/worm gen -root .

func dataSource() (string, error) {
	// a missing .env is fine, the variables may come from the environment
	_ = godotenv.Load()
	var values [2]string
	for i, key := range []string{"DB_PASSWORD", "DB_NAME"} {
		value, ok := os.LookupEnv(key)
		if !ok || value == "" {
			return "", fmt.Errorf("%s is not set", key)
		}
		values[i] = value
	}
	return fmt.Sprintf("postgres://agora_admin:%s@localhost:5432/%s", values[0], values[1]), nil
}

func run(ctx context.Context) error {
	dsn, err := dataSource()
	if err != nil {
		return err
	}
	conn, err := worm.Open(ctx, "postgres", dsn, &worm.DebugMiddleware{})
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	script := GetAllAccounts{}
	fmt.Println("Attempting to run:", script.Compile())

	results, err := script.Query(ctx, conn)
	if err != nil {
		return err
	}
	for account, err := range results.All() {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		fmt.Printf("%+v\n", account)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}
