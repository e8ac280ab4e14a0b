// Command seed bootstraps a database with an administrator account and,
// optionally, a handful of sample stores and store owners so the API can be
// exercised immediately after a fresh migration.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/storerate/storerate/internal/auth"
	"github.com/storerate/storerate/internal/config"
	"github.com/storerate/storerate/internal/db"
	"github.com/storerate/storerate/internal/domain"
	"github.com/storerate/storerate/internal/repository"
)

func main() {
	var (
		adminName     = flag.String("admin-name", "Platform Administrator Account", "display name for the admin user")
		adminEmail    = flag.String("admin-email", "admin@storerate.local", "email for the admin user")
		adminPassword = flag.String("admin-password", "", "password for the admin user (required)")
		withSamples   = flag.Bool("samples", false, "also create sample store owners and stores")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags)

	if *adminPassword == "" {
		logger.Fatal("-admin-password is required")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	database, err := db.New(ctx, cfg.DBURL, db.Options{Logger: logger})
	if err != nil {
		logger.Fatalf("connect database: %v", err)
	}
	defer database.Close()

	repo := repository.New(database)
	authSvc := auth.New(cfg.JWTSecret, time.Duration(cfg.JWTTTLHours)*time.Hour, cfg.BcryptCost, repo.Users)

	admin, err := createUser(ctx, repo, authSvc, *adminName, *adminEmail, *adminPassword, domain.RoleAdmin)
	if err != nil {
		logger.Fatalf("seed admin: %v", err)
	}
	logger.Printf("admin user ready: id=%d email=%s", admin.ID, admin.Email)

	if !*withSamples {
		return
	}

	if err := seedSamples(ctx, repo, authSvc, logger); err != nil {
		logger.Fatalf("seed samples: %v", err)
	}
}

// createUser inserts a user, treating an existing email as success so the
// command stays idempotent across repeated runs.
func createUser(ctx context.Context, repo *repository.Repository, authSvc *auth.Service, name, email, password string, role domain.Role) (domain.User, error) {
	hash, err := authSvc.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := repo.Users.Create(ctx, repository.UserCreateParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return repo.Users.GetByEmail(ctx, email)
	}
	return user, err
}

func seedSamples(ctx context.Context, repo *repository.Repository, authSvc *auth.Service, logger *log.Logger) error {
	samplePassword := "OwnerPass#" + fmt.Sprint(time.Now().Year())

	owners := []struct {
		name  string
		email string
	}{
		{"Riverside Grocery Owner Account", "owner.riverside@storerate.local"},
		{"Hilltop Hardware Owner Account", "owner.hilltop@storerate.local"},
	}
	stores := []struct {
		name    string
		email   string
		address string
	}{
		{"Riverside Grocery", "contact@riverside.example", "12 River Street"},
		{"Hilltop Hardware", "contact@hilltop.example", "4 Summit Avenue"},
	}

	for i, o := range owners {
		owner, err := createUser(ctx, repo, authSvc, o.name, o.email, samplePassword, domain.RoleStoreOwner)
		if err != nil {
			return fmt.Errorf("owner %s: %w", o.email, err)
		}
		s := stores[i]
		email, address := s.email, s.address
		store, err := repo.Stores.Create(ctx, repository.StoreCreateParams{
			Name:    s.name,
			Email:   &email,
			Address: &address,
			OwnerID: &owner.ID,
		})
		if err != nil {
			return fmt.Errorf("store %s: %w", s.name, err)
		}
		logger.Printf("sample store ready: id=%d name=%q owner=%d", store.ID, store.Name, owner.ID)
	}
	logger.Printf("sample owners use password %q", samplePassword)
	return nil
}
