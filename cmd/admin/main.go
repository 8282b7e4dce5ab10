// Package main provides account management utilities for the crowdfunding API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/crowdfund-api/internal/config"
	"github.com/crowdfund-api/internal/database"
	"github.com/crowdfund-api/internal/repository"
	"github.com/crowdfund-api/internal/service"
	"github.com/crowdfund-api/pkg/apperror"
	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin createsuperuser -email <email> -password <password> [-first-name <name>] [-last-name <name>] [-mobile <number>]")
	fmt.Println("  admin deleteuser -email <email>")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Open(cfg.Database, "release")
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	command := os.Args[1]

	switch command {
	case "createsuperuser":
		err = createSuperuser(ctx, db, cfg, os.Args[2:])
	case "deleteuser":
		err = deleteUser(ctx, db, os.Args[2:])
	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}

	if err != nil {
		var appErr *apperror.Error
		if errors.As(err, &appErr) && len(appErr.Fields) > 0 {
			for field, msg := range appErr.Fields {
				fmt.Printf("%s: %s\n", field, msg)
			}
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func createSuperuser(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ExitOnError)
	email := fs.String("email", "", "login email")
	password := fs.String("password", "", "password")
	firstName := fs.String("first-name", "", "first name")
	lastName := fs.String("last-name", "", "last name")
	mobile := fs.String("mobile", "", "Egyptian mobile number")
	_ = fs.Parse(args)

	if *email == "" || *password == "" {
		return errors.New("-email and -password are required")
	}

	userRepo := repository.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, cfg.JWT)
	accountService := service.NewAccountService(userRepo, authService)

	user, err := accountService.CreateSuperuser(ctx, service.NewUser{
		Email:     *email,
		Password:  *password,
		FirstName: *firstName,
		LastName:  *lastName,
		Mobile:    *mobile,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Superuser %s created (ID: %d)\n", user.Email, user.ID)
	return nil
}

func deleteUser(ctx context.Context, db *gorm.DB, args []string) error {
	fs := flag.NewFlagSet("deleteuser", flag.ExitOnError)
	email := fs.String("email", "", "login email")
	_ = fs.Parse(args)

	if *email == "" {
		return errors.New("-email is required")
	}

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)

	user, err := userRepo.GetByEmail(ctx, *email)
	if err != nil {
		return err
	}

	count, err := projectRepo.CountByUserID(ctx, user.ID)
	if err != nil {
		return err
	}

	if err := userRepo.DeleteWithProjects(ctx, user.ID); err != nil {
		return err
	}

	fmt.Printf("User %s deleted along with %d project(s)\n", user.Email, count)
	return nil
}
