package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/notedrop/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAccountNotFound = errors.New("admin account not found")
	ErrInvalidToken    = errors.New("invalid admin token")
)

// Roles. An owner passes every role check.
const (
	RoleOwner    = "owner"
	RoleOperator = "operator" // live sessions and run log
	RoleAuditor  = "auditor"  // admin audit trail
)

// AccountInput is what the seeding tool writes.
type AccountInput struct {
	Phone       string
	DisplayName string
	Token       string // plain; stored as a bcrypt hash
	Roles       []string
	AllowedIPs  []string // empty allows any address
}

// FindAccount loads the account for phone.
func FindAccount(db *sqlx.DB, phone string) (*models.AdminAccount, error) {
	var acc models.AdminAccount
	err := db.Get(&acc, `SELECT phone, display_name, token_hash, roles, allowed_ips, created_at, updated_at FROM admin_accounts WHERE phone=$1`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load admin account: %w", err)
	}
	return &acc, nil
}

// UpsertAccount creates the account or replaces its token, roles and
// address list.
func UpsertAccount(db *sqlx.DB, in AccountInput) error {
	if in.Phone == "" || in.Token == "" {
		return errors.New("phone and token are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Token), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}
	roles := in.Roles
	if roles == nil {
		roles = []string{}
	}
	ips := in.AllowedIPs
	if ips == nil {
		ips = []string{}
	}

	_, err = db.Exec(`
		INSERT INTO admin_accounts (phone, display_name, token_hash, roles, allowed_ips, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (phone) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			token_hash = EXCLUDED.token_hash,
			roles = EXCLUDED.roles,
			allowed_ips = EXCLUDED.allowed_ips,
			updated_at = NOW()
	`, in.Phone, in.DisplayName, string(hash), pq.Array(roles), pq.Array(ips))
	if err != nil {
		return fmt.Errorf("upsert admin account: %w", err)
	}
	return nil
}

// Authenticate checks phone and token against the stored hash.
func Authenticate(db *sqlx.DB, phone, token string) (*models.AdminAccount, error) {
	acc, err := FindAccount(db, phone)
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			log.Printf("[ADMIN] Database error: %v", err)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.TokenHash), []byte(token)) != nil {
		log.Printf("[ADMIN] Token verification failed for phone: %s", phone)
		return nil, ErrInvalidToken
	}
	return acc, nil
}

// HasRole reports whether acc may act as role.
func HasRole(acc *models.AdminAccount, role string) bool {
	return slices.Contains([]string(acc.Roles), role) || slices.Contains([]string(acc.Roles), RoleOwner)
}

// IPAllowed reports whether ip may use acc.
func IPAllowed(acc *models.AdminAccount, ip string) bool {
	return len(acc.AllowedIPs) == 0 || slices.Contains([]string(acc.AllowedIPs), ip)
}
