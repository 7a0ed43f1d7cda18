package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/urfave/cli/v2"

	restodex "github.com/kailas-cloud/restodex/pkg/sdk"
)

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("search takes exactly one query argument")
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	hits, err := client.Search(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	printRestaurants(c.App.Writer, hits)
	return nil
}

func listCommand(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	all, err := client.List(c.Context)
	if err != nil {
		return err
	}
	printRestaurants(c.App.Writer, all)
	return nil
}

func addCommand(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}

	r := restodex.NewRestaurant{
		Name:       c.String("name"),
		Cuisine:    c.String("cuisine"),
		Location:   c.String("location"),
		PriceRange: c.String("price"),
	}
	if c.IsSet("rating") {
		rating := c.Float64("rating")
		r.Rating = &rating
	}

	res, err := client.Create(c.Context, r)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %s in %s\n", res.Result, res.ID, res.Index)
	return nil
}

func deleteCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("delete takes exactly one id argument")
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	res, err := client.Delete(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %s in %s\n", res.Result, res.ID, res.Index)
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("import takes exactly one file argument")
	}
	restaurants, err := readImportFile(c.Args().First())
	if err != nil {
		return err
	}
	client, err := newClient(c)
	if err != nil {
		return err
	}

	created, failed, err := importAll(c.Context, client, restaurants, c.Int("workers"))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "imported %d of %d restaurants\n", created, len(restaurants))
	if failed > 0 {
		return fmt.Errorf("%d restaurants failed to import", failed)
	}
	return nil
}

func readImportFile(path string) ([]restodex.NewRestaurant, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var restaurants []restodex.NewRestaurant
	if err := json.Unmarshal(data, &restaurants); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return restaurants, nil
}

// importAll creates restaurants on a bounded worker pool. Individual failures
// are logged and counted, not fatal.
func importAll(
	ctx context.Context, client *restodex.Client, restaurants []restodex.NewRestaurant, workers int,
) (created, failed int64, err error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return 0, 0, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg      sync.WaitGroup
		ok, bad atomic.Int64
	)
	for i := range restaurants {
		r := restaurants[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if _, err := client.Create(ctx, r); err != nil {
				slog.Warn("import failed", "name", r.Name, "error", err)
				bad.Add(1)
				return
			}
			ok.Add(1)
		})
		if submitErr != nil {
			wg.Done()
			bad.Add(1)
			slog.Warn("import not scheduled", "name", r.Name, "error", submitErr)
		}
	}
	wg.Wait()
	return ok.Load(), bad.Load(), nil
}

func watchCommand(c *cli.Context) error {
	client, err := newClient(c)
	if err != nil {
		return err
	}
	return watch(c.App.Reader, c.App.Writer, client, c.Duration("quiet"), c.Duration("settle"))
}

// watch feeds every stdin line to a Debouncer as the new search box content
// and prints each displayed update.
func watch(in io.Reader, out io.Writer, search restodex.Searcher, quiet, settle time.Duration) error {
	var mu sync.Mutex
	d := restodex.NewDebouncer(search, func(u restodex.Update) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case u.Cleared:
			fmt.Fprintf(out, "-- %q: cleared\n", u.Query)
		case u.Err != nil:
			fmt.Fprintf(out, "-- #%d %q: error: %v\n", u.Generation, u.Query, u.Err)
		default:
			fmt.Fprintf(out, "-- #%d %q: %d hits\n", u.Generation, u.Query, len(u.Results))
			printRestaurants(out, u.Results)
		}
	}, restodex.WithQuietPeriod(quiet), restodex.WithDebounceLogger(slog.Default()))
	defer d.Close()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		d.Input(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), quiet+settle)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		return errors.New("no answer before the settle timeout")
	}
	return nil
}

func printRestaurants(w io.Writer, rs []restodex.Restaurant) {
	for _, r := range rs {
		score := "-"
		if r.Score != nil {
			score = fmt.Sprintf("%.3f", *r.Score)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%s\t%s\n",
			score, r.ID, r.Name, r.Cuisine, r.Rating, r.PriceRange, r.Location)
	}
}
