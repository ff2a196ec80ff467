// Package cli holds the non-server subcommands of the homefinder binary.
package cli

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/honiara/homefinder/internal/config"
	"github.com/honiara/homefinder/internal/database"
	"github.com/honiara/homefinder/internal/database/users"
	"github.com/honiara/homefinder/internal/entities"
)

// SeedAdminCommand creates an admin account directly in the database, for
// bootstrapping an installation before anyone can log in.
type SeedAdminCommand struct {
	DatabasePath string
	Name         string
	Email        string
	Password     string
	Role         string
}

func NewSeedAdminCommand() *SeedAdminCommand {
	return &SeedAdminCommand{}
}

func (cmd *SeedAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed-admin", flag.ExitOnError)

	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (defaults to DATABASE_PATH)")
	fs.StringVar(&cmd.Name, "name", "", "Display name of the account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address of the account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 12 characters (required)")
	fs.StringVar(&cmd.Role, "role", "admin", "Role to assign: user, agent, admin or superadmin")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed-admin [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an admin account directly in the database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s seed-admin -email admin@example.com -name Admin -password 'correct-horse-battery'\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Name == "" || cmd.Email == "" || cmd.Password == "" {
		fs.Usage()
		return fmt.Errorf("name, email and password are required")
	}
	if !entities.ValidRole(entities.UserRole(cmd.Role)) {
		return fmt.Errorf("invalid role: %s", cmd.Role)
	}

	return nil
}

func (cmd *SeedAdminCommand) Run() error {
	cfg := config.NewConfig()
	dbPath := cmd.DatabasePath
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		return fmt.Errorf("no database path given; pass -db or set DATABASE_PATH")
	}

	db, err := database.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	repo := users.NewRepository(db, users.Options{BcryptCost: cfg.Auth.BcryptCost})
	user, err := repo.CreateByAdmin(users.AdminCreateParams{
		Name:     cmd.Name,
		Email:    cmd.Email,
		Password: cmd.Password,
		Role:     entities.UserRole(cmd.Role),
	})
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	fmt.Printf("Created %s account %s (id %d)\n", user.Role, user.Email, user.ID)
	return nil
}
