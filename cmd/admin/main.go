// Command admin manages user roles from the command line.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"echoboard/internal/config"
	"echoboard/internal/database"
	"echoboard/internal/models"

	"gorm.io/gorm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go set-role <user_id> <admin|developer|user>  - Change a user's role")
		fmt.Println("  go run ./cmd/admin/main.go list-staff                                 - List admins and developers")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch os.Args[1] {
	case "set-role":
		if len(os.Args) < 4 {
			fmt.Println("Usage: go run ./cmd/admin/main.go set-role <user_id> <admin|developer|user>")
			os.Exit(1)
		}
		setRole(db, os.Args[2], models.Role(os.Args[3]))

	case "list-staff":
		listStaff(db)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}
}

func setRole(db *gorm.DB, userID string, role models.Role) {
	if !role.Valid() {
		fmt.Printf("Invalid role %q (expected admin, developer, or user)\n", role)
		os.Exit(1)
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fmt.Printf("User with ID %s not found\n", userID)
		} else {
			log.Fatalf("Database error: %v", err)
		}
		os.Exit(1)
	}

	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Name, user.ID, role)
		return
	}

	user.Role = role
	if err := db.Save(&user).Error; err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}

	fmt.Printf("Set role of %s (ID: %d) to %s\n", user.Name, user.ID, role)
}

func listStaff(db *gorm.DB) {
	var staff []models.User
	if err := db.Where("role IN ?", []models.Role{models.RoleAdmin, models.RoleDeveloper}).
		Order("role, id").Find(&staff).Error; err != nil {
		log.Fatalf("Failed to fetch staff: %v", err)
	}

	if len(staff) == 0 {
		fmt.Println("No staff users found")
		return
	}

	fmt.Println("Current staff:")
	for _, u := range staff {
		fmt.Printf("ID: %d | Role: %-9s | Name: %s | Email: %s\n", u.ID, u.Role, u.Name, u.Email)
	}
}
