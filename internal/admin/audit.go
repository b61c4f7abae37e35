package admin

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/notedrop/backend/internal/models"
)

// Action is one admin request to record.
type Action struct {
	Phone   string
	IP      string
	Route   string
	Name    string
	Details map[string]interface{}
	Success bool
}

// Record appends a to the audit trail. Failures are logged and returned;
// callers serving a request usually ignore them.
func Record(db *sqlx.DB, a Action) error {
	if db == nil {
		return nil
	}
	details := []byte("{}")
	if a.Details != nil {
		b, err := json.Marshal(a.Details)
		if err != nil {
			log.Printf("[ADMIN] Failed to marshal audit details: %v", err)
		} else {
			details = b
		}
	}

	_, err := db.Exec(`
		INSERT INTO admin_audit (admin_phone, ip, route, action, details, success, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`, a.Phone, a.IP, a.Route, a.Name, details, a.Success)
	if err != nil {
		log.Printf("[ADMIN] Failed to record %s for %s: %v", a.Name, a.Phone, err)
		return fmt.Errorf("record admin action: %w", err)
	}
	return nil
}

// AuditQuery selects a page of the audit trail, optionally for one admin.
type AuditQuery struct {
	Phone  string
	Limit  int
	Offset int
}

func (q AuditQuery) sql() (string, []interface{}) {
	query := `SELECT id, admin_phone, ip, route, action, details, success, created_at FROM admin_audit`
	var args []interface{}
	if q.Phone != "" {
		args = append(args, q.Phone)
		query += fmt.Sprintf(" WHERE admin_phone = $%d", len(args))
	}
	args = append(args, q.Limit, q.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	return query, args
}

// AuditLog returns entries newest first.
func AuditLog(db *sqlx.DB, q AuditQuery) ([]models.AdminAudit, error) {
	query, args := q.sql()
	logs := []models.AdminAudit{}
	if err := db.Select(&logs, query, args...); err != nil {
		return nil, fmt.Errorf("load audit log: %w", err)
	}
	return logs, nil
}
