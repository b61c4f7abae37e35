package main

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strings"
	"time"

	"github.com/notedrop/backend/internal/admin"
	"github.com/notedrop/backend/internal/config"
	"github.com/notedrop/backend/internal/database"
	"github.com/notedrop/backend/internal/migrations"
)

func main() {
	cfg := config.Load()

	if cfg.MigrateOnStart {
		if err := migrations.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	db, err := database.Connect(cfg.DatabaseURL, 10*time.Second)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	phone := os.Getenv("ADMIN_PHONE")
	if phone == "" {
		log.Fatal("ADMIN_PHONE is required")
	}

	token := os.Getenv("ADMIN_TOKEN")
	if token == "" {
		b := make([]byte, 16)
		if _, err := rand.Read(b); err != nil {
			log.Fatalf("generate admin token: %v", err)
		}
		token = hex.EncodeToString(b)
		log.Printf("ADMIN_TOKEN not set; generated one")
	}

	in := admin.AccountInput{
		Phone:       phone,
		DisplayName: os.Getenv("ADMIN_NAME"),
		Token:       token,
		Roles:       splitList(os.Getenv("ADMIN_ROLES")),
		AllowedIPs:  splitList(os.Getenv("ADMIN_ALLOWED_IPS")),
	}
	if in.DisplayName == "" {
		in.DisplayName = "Admin"
	}
	if len(in.Roles) == 0 {
		in.Roles = []string{admin.RoleOperator}
	}

	if err := admin.UpsertAccount(db, in); err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	log.Printf("✓ Admin account created/updated")
	log.Printf("  Phone: %s", in.Phone)
	log.Printf("  Display Name: %s", in.DisplayName)
	log.Printf("  Roles: %v", in.Roles)
	log.Printf("  Allowed IPs: %v", in.AllowedIPs)
	log.Println("Send these headers to /api/v1/admin/*:")
	log.Printf("  X-Admin-Phone: %s", in.Phone)
	log.Printf("  X-Admin-Token: %s", token)
}

// splitList parses a comma separated env value; empty entries are skipped.
func splitList(v string) []string {
	out := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
