package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"golang.org/x/crypto/bcrypt"

	"carnival-tracker/internal/config"
	"carnival-tracker/internal/models"
	"carnival-tracker/internal/txn/db"
)

// seed-users wipes the user table and provisions the fixed carnival accounts:
// one admin and four desks. One-time setup, not a runtime capability.

type account struct {
	username string
	password string
	role     models.Role
}

var accounts = []account{
	{"admin", "admin123", models.RoleAdmin},
	{"desk1", "desk1pass", models.RoleDesk},
	{"desk2", "desk2pass", models.RoleDesk},
	{"desk3", "desk3pass", models.RoleDesk},
	{"desk4", "desk4pass", models.RoleDesk},
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	var bunDB *bun.DB
	if strings.HasPrefix(cfg.Database.URL, "postgres://") || strings.HasPrefix(cfg.Database.URL, "postgresql://") {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Database.URL)))
		bunDB = bun.NewDB(sqldb, pgdialect.New())
	} else {
		sqldb, err := sql.Open(sqliteshim.ShimName, cfg.Database.URL)
		if err != nil {
			log.Fatalf("open database: %v", err)
		}
		bunDB = bun.NewDB(sqldb, sqlitedialect.New())
	}
	defer bunDB.Close()

	if _, err := bunDB.NewDropTable().Model((*models.User)(nil)).IfExists().Exec(ctx); err != nil {
		log.Fatalf("drop users table: %v", err)
	}
	if err := db.Migrate(ctx, bunDB); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	users := make([]models.User, 0, len(accounts))
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("hash password for %s: %v", a.username, err)
		}
		users = append(users, models.User{
			Username: a.username,
			Password: string(hash),
			Role:     a.role,
		})
	}
	if _, err := bunDB.NewInsert().Model(&users).Exec(ctx); err != nil {
		log.Fatalf("seed users: %v", err)
	}

	fmt.Println("Database initialized successfully!")
	fmt.Println("Logins created:")
	for _, a := range accounts {
		fmt.Printf(" - %s / %s\n", a.username, a.password)
	}
}
