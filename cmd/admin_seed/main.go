// Command admin_seed bootstraps a fresh deployment: it creates the
// admin user, the treasury account at its derived address, and
// initializes the escrow config pointing at that treasury.
package main

import (
	"context"
	"log"
	"os"

	"habitstake/internal/config"
	domain "habitstake/internal/errors"
	"habitstake/internal/ledger"
	"habitstake/internal/models"
	"habitstake/internal/repositories"
	"habitstake/internal/services/escrow"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	config.LoadEnv()

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set in environment")
	}

	if err := repositories.InitDB(); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}
	defer func() {
		if sqlDB, err := repositories.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Failed to close database connection: %v", err)
			}
		}
		if repositories.CacheService != nil {
			if err := repositories.CacheService.Close(); err != nil {
				log.Printf("Failed to close Redis connection: %v", err)
			}
		}
	}()

	userRepo := repositories.NewUserRepository(repositories.DB)
	ledgerRepo := repositories.NewLedgerRepository(repositories.DB)

	admin, err := userRepo.GetByEmail(adminEmail)
	if err == nil {
		log.Println("Admin user already exists")
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal("Failed to hash password:", err)
		}

		admin = &models.User{
			Email:        adminEmail,
			Password:     string(hashed),
			Name:         "Administrator",
			Role:         "admin",
			Status:       "active",
			TokenVersion: 1,
		}
		if err := userRepo.Create(admin); err != nil {
			log.Fatal("Failed to create admin user:", err)
		}
		log.Println("Admin user created")
	}

	treasuryAddress := ledger.DeriveAccount(ledger.TreasurySeed()...).String()
	if _, err := ledgerRepo.GetAccount(treasuryAddress); err != nil {
		if err := ledgerRepo.CreateAccount(&models.Account{
			Address: treasuryAddress,
			Status:  "active",
			Kind:    models.AccountKindTreasury,
		}); err != nil {
			log.Fatal("Failed to create treasury account:", err)
		}
		log.Println("Treasury account created at", treasuryAddress)
	} else {
		log.Println("Treasury account already exists at", treasuryAddress)
	}

	escrowService := escrow.NewService(ledgerRepo, repositories.CacheService, &escrow.NoopMetricsCollector{})
	_, err = escrowService.Initialize(context.Background(), admin.ID, treasuryAddress)
	switch err {
	case nil:
		log.Println("Escrow config initialized")
	case domain.ErrAlreadyInitialized:
		log.Println("Escrow config already initialized")
	default:
		log.Fatal("Failed to initialize escrow config:", err)
	}
}
