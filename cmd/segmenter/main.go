// Segmenter CLI - customer segmentation service
//
// Usage:
//   segmenter run --input customers.csv [--output json] [--csv-out segmented.csv]
//   segmenter serve --store clickhouse --port 8080
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"customer-segmentation/api"
	"customer-segmentation/internal/pipeline"
	"customer-segmentation/internal/storage"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.App{
		Name:    "segmenter",
		Usage:   "Customer segmentation - behavioral clustering and segment labeling for tabular customer data",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"SEGMENTER_LOG_LEVEL"},
			},
			&cli.IntFlag{
				Name:    "max-k",
				Value:   pipeline.DefaultConfig().MaxK,
				Usage:   "Upper bound of the candidate cluster-count range",
				EnvVars: []string{"SEGMENTER_MAX_K"},
			},
			&cli.Int64Flag{
				Name:    "seed",
				Value:   pipeline.DefaultConfig().Seed,
				Usage:   "Deterministic seed for cluster initialization",
				EnvVars: []string{"SEGMENTER_SEED"},
			},
			&cli.IntFlag{
				Name:    "restarts",
				Value:   pipeline.DefaultConfig().Restarts,
				Usage:   "Random restarts per cluster count",
				EnvVars: []string{"SEGMENTER_RESTARTS"},
			},
			&cli.StringFlag{
				Name:    "store",
				Value:   "memory",
				Usage:   "Storage backend (memory, postgres, clickhouse)",
				EnvVars: []string{"SEGMENTER_STORE"},
			},
			&cli.StringFlag{
				Name:    "postgres-dsn",
				Value:   "postgres://localhost:5432/segmentation?sslmode=disable",
				Usage:   "Postgres DSN for the relational backend",
				EnvVars: []string{"SEGMENTER_POSTGRES_DSN"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-host",
				Value:   "localhost",
				Usage:   "ClickHouse host",
				EnvVars: []string{"CLICKHOUSE_HOST"},
			},
			&cli.IntFlag{
				Name:    "clickhouse-port",
				Value:   9000,
				Usage:   "ClickHouse native port",
				EnvVars: []string{"CLICKHOUSE_PORT"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-database",
				Value:   "segmentation",
				Usage:   "ClickHouse database",
				EnvVars: []string{"CLICKHOUSE_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-user",
				Value:   "default",
				Usage:   "ClickHouse user",
				EnvVars: []string{"CLICKHOUSE_USER"},
			},
			&cli.StringFlag{
				Name:    "clickhouse-password",
				Value:   "",
				Usage:   "ClickHouse password",
				EnvVars: []string{"CLICKHOUSE_PASSWORD"},
			},
		},

		Before: func(c *cli.Context) error {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level %q: %w", c.String("log-level"), err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},

		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func pipelineConfig(c *cli.Context) pipeline.Config {
	return pipeline.Config{
		MaxK:     c.Int("max-k"),
		Seed:     c.Int64("seed"),
		Restarts: c.Int("restarts"),
	}
}

func newStore(c *cli.Context) (storage.Store, error) {
	ctx := context.Background()
	switch backend := c.String("store"); backend {
	case "memory":
		return storage.NewMemoryStore(), nil
	case "postgres":
		store, err := storage.NewPostgresStore(c.String("postgres-dsn"))
		if err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		return store, nil
	case "clickhouse":
		store, err := storage.NewClickHouseStore(&storage.ClickHouseConfig{
			Host:     c.String("clickhouse-host"),
			Port:     c.Int("clickhouse-port"),
			Database: c.String("clickhouse-database"),
			Username: c.String("clickhouse-user"),
			Password: c.String("clickhouse-password"),
		})
		if err != nil {
			return nil, err
		}
		if err := store.Init(ctx); err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Segment a local CSV file and print the cluster report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Usage:    "Path to the customer CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "output",
				Value: "text",
				Usage: "Output format: text, json",
			},
			&cli.StringFlag{
				Name:  "csv-out",
				Usage: "Write the segmented table to this CSV file",
			},
		},
		Action: func(c *cli.Context) error {
			raw, err := os.ReadFile(c.String("input"))
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}

			result, err := pipeline.Run(raw, pipelineConfig(c))
			if err != nil {
				return err
			}

			if out := c.String("csv-out"); out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				if err := result.Table.WriteCSV(f); err != nil {
					f.Close()
					return fmt.Errorf("failed to write segmented CSV: %w", err)
				}
				if err := f.Close(); err != nil {
					return err
				}
				log.Info().Str("file", out).Msg("segmented table written")
			}

			if c.String("output") == "json" {
				return outputJSON(result)
			}
			outputText(result)
			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the segmentation HTTP API",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "HTTP listen port",
				EnvVars: []string{"PORT"},
			},
		},
		Action: func(c *cli.Context) error {
			store, err := newStore(c)
			if err != nil {
				return err
			}
			defer store.Close()

			cfg := api.DefaultConfig()
			cfg.Port = c.Int("port")
			server := api.NewServer(store, pipelineConfig(c), cfg)
			return server.StartWithGracefulShutdown()
		},
	}
}

func outputJSON(result *pipeline.Result) error {
	insightsOut := make(map[string]any, len(result.Insights))
	for id, in := range result.Insights {
		insightsOut[fmt.Sprint(id)] = map[string]any{
			"label":       in.Label,
			"description": in.Description,
			"stats":       in.Stats,
		}
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"result":   result.UploadResponse(),
		"insights": insightsOut,
	})
}

func outputText(result *pipeline.Result) {
	fmt.Printf("Segmented %d customers into %d clusters\n", result.Table.Rows(), result.K)
	fmt.Printf("Features: %v\n", result.NumericColumns)
	fmt.Printf("Candidates: %v\n", result.Candidates)
	fmt.Printf("Silhouette scores: %v\n", result.Silhouettes)

	ids := make([]int, 0, len(result.Insights))
	for id := range result.Insights {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		in := result.Insights[id]
		fmt.Printf("\n[%d] %s\n", id, in.Label)
		fmt.Printf("    %s\n", in.Description)
	}
}
