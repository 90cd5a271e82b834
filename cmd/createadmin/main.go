// Command createadmin provisions an administrator account through the normal
// hashing path.  It prompts for credentials and writes the user, profile and
// super-admin flag directly to the configured database.  There is no other
// way to mint the first admin; the server has no bootstrap backdoor.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/prabhjot122/LawCourt/internal/config"
	"github.com/prabhjot122/LawCourt/internal/database"
	"github.com/prabhjot122/LawCourt/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	in := bufio.NewReader(os.Stdin)

	email := prompt(in, "Enter admin email: ")
	if email == "" {
		fmt.Println("Email is required!")
		os.Exit(1)
	}
	password := prompt(in, "Enter admin password: ")
	if password == "" {
		fmt.Println("Password is required!")
		os.Exit(1)
	}
	confirm := prompt(in, "Confirm admin password: ")
	if password != confirm {
		fmt.Println("Passwords do not match!")
		os.Exit(1)
	}
	fullName := prompt(in, "Enter full name (default: System Administrator): ")
	if fullName == "" {
		fullName = "System Administrator"
	}
	phone := prompt(in, "Enter phone number (default: +1-555-0123): ")
	if phone == "" {
		phone = "+1-555-0123"
	}

	hash, err := utils.HashPassword(password, cfg.BcryptCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName, 2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "begin tx: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role_id, is_super_admin, status) VALUES (?, ?, 1, TRUE, 'Active')",
		strings.ToLower(email), hash)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insert user: %v\n", err)
		os.Exit(1)
	}
	userID, err := res.LastInsertId()
	if err != nil {
		fmt.Fprintf(os.Stderr, "last insert id: %v\n", err)
		os.Exit(1)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, full_name, phone, bio, practice_area, location)
		 VALUES (?, ?, ?, 'System Administrator Account', 'Administration', 'System')`,
		userID, fullName, phone); err != nil {
		fmt.Fprintf(os.Stderr, "insert profile: %v\n", err)
		os.Exit(1)
	}
	if err := tx.Commit(); err != nil {
		fmt.Fprintf(os.Stderr, "commit: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin account created: %s (user id %d)\n", email, userID)
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
