package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/restodex/internal/version"
	restodex "github.com/kailas-cloud/restodex/pkg/sdk"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "restodexctl",
		Usage:   "Command line client for the restodex restaurant search service",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Base URL of the restodex API",
				Value:   "http://localhost:8080",
				EnvVars: []string{"RESTODEX_URL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Bearer token for authenticated servers",
				EnvVars: []string{"RESTODEX_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search restaurants by free text",
				ArgsUsage: "<query>",
				Action:    searchCommand,
			},
			{
				Name:   "list",
				Usage:  "List all restaurants",
				Action: listCommand,
			},
			{
				Name:   "add",
				Usage:  "Add a restaurant",
				Action: addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Restaurant name", Required: true},
					&cli.StringFlag{Name: "cuisine", Usage: "Cuisine, e.g. Italian"},
					&cli.StringFlag{Name: "location", Usage: "Free-text location"},
					&cli.Float64Flag{Name: "rating", Usage: "Average rating, 0 to 5"},
					&cli.StringFlag{Name: "price", Usage: "Price range token such as $$"},
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a restaurant by id",
				ArgsUsage: "<id>",
				Action:    deleteCommand,
			},
			{
				Name:      "import",
				Usage:     "Import restaurants from a JSON array file",
				ArgsUsage: "<file.json>",
				Action:    importCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent uploads",
						Value: 8,
					},
				},
			},
			{
				Name:   "watch",
				Usage:  "Read successive search box contents from stdin and print what would be displayed",
				Action: watchCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "quiet",
						Usage: "Quiet period before a query is sent",
						Value: restodex.DefaultQuietPeriod,
					},
					&cli.DurationFlag{
						Name:  "settle",
						Usage: "How long to wait for the last answer after input ends",
						Value: 5 * time.Second,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	var level slog.Level
	switch strings.ToLower(c.String("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", c.String("log-level"))
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func newClient(c *cli.Context) (*restodex.Client, error) {
	opts := []restodex.Option{restodex.WithLogger(slog.Default())}
	if key := c.String("api-key"); key != "" {
		opts = append(opts, restodex.WithAPIKey(key))
	}
	client, err := restodex.New(c.String("server"), opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}
