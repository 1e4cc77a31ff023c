// Command seed populates the database with demo forum data.
package main

import (
	"flag"
	"log"

	"stackit/internal/bootstrap"
	"stackit/internal/config"
	"stackit/internal/middleware"
	"stackit/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numQuestions := flag.Int("questions", 200, "Number of questions to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	skipBcrypt := flag.Bool("fast", false, "Skip bcrypt hashing for seeded passwords")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitMiddleware(cfg)

	db, _, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SkipRedis: true})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:     *numUsers,
		NumQuestions: *numQuestions,
		ShouldClean:  *shouldClean,
		SkipBcrypt:   *skipBcrypt,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
