// Command querycli is a one-shot harness that loads a required tree from
// a file or stdin, executes it against wired backends, and prints the
// JSON result. It is test/demo tooling, not a long-running service — no
// listener is opened (spec.md §6, CLI harness).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"

	"graphqueryreader/infrastructure/config"
	"graphqueryreader/infrastructure/di"
	"graphqueryreader/infrastructure/observability"
)

func main() {
	var (
		userID    = flag.String("user", "", "user id the request is scoped to")
		inputPath = flag.String("in", "-", "path to the required-tree JSON file, or - for stdin")
	)
	flag.Parse()

	if *userID == "" {
		log.Fatal("querycli: -user is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("querycli: load config: %v", err)
	}

	ctx := context.Background()

	logger, err := observability.NewLogger(cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("querycli: init logger: %v", err)
	}
	defer logger.Sync()

	container, err := di.InitializeContainer(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("querycli: initialize container: %v", err)
	}

	required, err := readRequiredTree(*inputPath)
	if err != nil {
		log.Fatalf("querycli: %v", err)
	}

	result, err := container.QueryService.Read(ctx, *userID, required)
	if err != nil {
		log.Fatalf("querycli: query failed: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("querycli: encode result: %v", err)
	}
}

func readRequiredTree(path string) (map[string]interface{}, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var required map[string]interface{}
	if err := json.NewDecoder(r).Decode(&required); err != nil {
		return nil, err
	}
	return required, nil
}
