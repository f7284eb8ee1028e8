package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/config"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Loads ingredients from a CSV file of "name,measurement_unit" rows.
// Existing (name, unit) pairs are left untouched, so the script can be re-run.
//
//	go run ./scripts -file data/ingredients.csv
func main() {
	file := flag.String("file", "data/ingredients.csv", "CSV file with name,measurement_unit rows")
	flag.Parse()

	log.SetFormatter(&log.JSONFormatter{})
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}

	conf, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.InitDatabase(conf.Database())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("Failed to migrate database")
	}

	f, err := os.Open(*file)
	if err != nil {
		log.WithError(err).Fatal("Failed to open CSV file")
	}
	defer f.Close()

	items, err := services.ParseIngredientsCSV(f)
	if err != nil {
		log.WithError(err).Fatal("Failed to parse CSV file")
	}

	created, err := services.NewIngredientService(db).ImportIngredients(context.Background(), items)
	if err != nil {
		log.WithError(err).Fatal("Failed to import ingredients")
	}

	fmt.Printf("✓ Read %d ingredients from %s, created %d new\n", len(items), *file, created)
}
