package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/autotag/pkg/autotag"
	"github.com/cognicore/autotag/pkg/autotag/config"
	"github.com/cognicore/autotag/pkg/autotag/inference"
	"github.com/cognicore/autotag/pkg/autotag/store/sqlite"
)

func main() {
	var (
		dbPath       = flag.String("db", "", "Database path (required)")
		artifactPath = flag.String("artifact", "", "Model artifact path (required)")
		seedPath     = flag.String("seed", "", "Seed YAML file (required)")
	)
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("--db required")
	}
	if *artifactPath == "" {
		log.Fatal("--artifact required")
	}
	if *seedPath == "" {
		log.Fatal("--seed required")
	}

	ctx := context.Background()
	n, err := importSeed(ctx, *dbPath, *artifactPath, *seedPath)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Imported %d cuisines\n", n)
}

// importSeed tags every seed entry and stores it, returning how many were
// created
func importSeed(ctx context.Context, dbPath, artifactPath, seedPath string) (int, error) {
	seed, err := config.LoadSeed(seedPath)
	if err != nil {
		return 0, fmt.Errorf("load seed: %w", err)
	}

	svc, err := inference.Open(artifactPath)
	if err != nil {
		return 0, err
	}

	st, err := sqlite.OpenSQLite(ctx, dbPath)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	catalog := autotag.New(autotag.Options{Store: st, Tagger: svc})
	defer catalog.Close()

	for i, entry := range seed.Cuisines {
		rec, err := catalog.Create(ctx, entry.UserID, autotag.NewCuisine{
			Name:        entry.Name,
			Description: entry.Description,
			Latitude:    entry.Latitude,
			Longitude:   entry.Longitude,
		})
		if err != nil {
			return i, fmt.Errorf("import %q: %w", entry.Name, err)
		}
		log.Printf("%s  %-24s %s/%s/%s/%s", rec.ID, rec.Name, rec.Cuisine, rec.Budget, rec.Ambience, rec.DietaryOptions)
	}
	return len(seed.Cuisines), nil
}
