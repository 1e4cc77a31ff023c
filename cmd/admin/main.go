// Command admin manages admin privileges from the CLI.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/middleware"
	"stackit/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin promote <user_id>   - Promote user to admin")
		fmt.Println("  go run ./cmd/admin demote <user_id>    - Demote user from admin")
		fmt.Println("  go run ./cmd/admin list-admins         - List all admins")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	middleware.InitMiddleware(cfg)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "promote":
		setAdmin(db, requireUserID(), true)
	case "demote":
		setAdmin(db, requireUserID(), false)
	case "list-admins":
		listAdmins(db)
	default:
		log.Fatalf("Unknown command: %s", os.Args[1])
	}
}

func requireUserID() uint {
	if len(os.Args) < 3 {
		log.Fatal("user_id argument is required")
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil || id == 0 {
		log.Fatalf("Invalid user_id: %s", os.Args[2])
	}
	return uint(id)
}

func setAdmin(db *gorm.DB, userID uint, isAdmin bool) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("User %d not found", userID)
		}
		log.Fatalf("Failed to load user %d: %v", userID, err)
	}

	if err := db.Model(&user).Update("is_admin", isAdmin).Error; err != nil {
		log.Fatalf("Failed to update user %d: %v", userID, err)
	}

	verb := "promoted to"
	if !isAdmin {
		verb = "demoted from"
	}
	fmt.Printf("User %d (%s) %s admin\n", user.ID, user.Username, verb)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("is_admin = ?", true).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to list admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins configured")
		return
	}
	for _, a := range admins {
		fmt.Printf("%d\t%s\t%s\n", a.ID, a.Username, a.Email)
	}
}
