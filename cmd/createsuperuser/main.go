// Command createsuperuser adds an administrator account. It is the only
// way to obtain one; signup always creates regular users.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"projectmanager/auth"
	"projectmanager/config"
	"projectmanager/database"
	"projectmanager/forms"
	"projectmanager/logging"

	"go.uber.org/zap"
)

func main() {
	username := flag.String("username", "", "username of the new administrator")
	password := flag.String("password", "", "password (defaults to $SUPERUSER_PASSWORD)")
	flag.Parse()

	if *password == "" {
		*password = os.Getenv("SUPERUSER_PASSWORD")
	}

	result := forms.ValidateSignup(forms.SignupForm{
		Username:  *username,
		Password1: *password,
		Password2: *password,
	})
	if !result.Valid() {
		for field, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "%s: %s\n", field, msg)
		}
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect", zap.Error(err))
	}
	defer db.Close()

	hash, err := auth.HashPassword(result.Password)
	if err != nil {
		logger.Fatal("Failed to hash password", zap.Error(err))
	}

	user, err := db.CreateUser(ctx, result.Username, hash, true)
	if errors.Is(err, database.ErrUsernameTaken) {
		logger.Fatal("Username already exists", zap.String("username", result.Username))
	}
	if err != nil {
		logger.Fatal("Failed to create superuser", zap.Error(err))
	}

	logger.Info("Superuser created", zap.Stringer("id", user.ID), zap.String("username", user.Username))
}
