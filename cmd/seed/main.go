// Command seed populates the database with generated board data for
// development and load testing.
package main

import (
	"flag"
	"log"

	"echoboard/internal/config"
	"echoboard/internal/database"
	"echoboard/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numFeedback := flag.Int("feedback", 200, "Number of feedback posts to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("skip-bcrypt", false, "Use a plaintext password sentinel instead of bcrypt (faster for large seeds)")
	maxDays := flag.Int("max-days", 90, "Spread created_at timestamps over this many past days")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d feedback, clean=%v\n", *numUsers, *numFeedback, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumFeedback: *numFeedback,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *skipBcrypt,
		MaxDays:     *maxDays,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Seeding complete")
}
