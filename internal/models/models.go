package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/lib/pq"
)

// Run is the audit row written when a session's play ends.
type Run struct {
	ID         int           `db:"id" json:"id"`
	SessionID  string        `db:"session_id" json:"session_id"`
	StageIndex sql.NullInt64 `db:"stage_index" json:"stage_index,omitempty"`
	StageTitle string        `db:"stage_title" json:"stage_title"`
	Outcome    string        `db:"outcome" json:"outcome"`
	Score      int           `db:"score" json:"score"`
	Collected  int           `db:"collected" json:"collected"`
	Target     int           `db:"target" json:"target"`
	StartedAt  time.Time     `db:"started_at" json:"started_at"`
	EndedAt    time.Time     `db:"ended_at" json:"ended_at"`
}

// AdminAccount is an operator allowed onto the admin routes.
type AdminAccount struct {
	Phone       string         `db:"phone" json:"phone"`
	DisplayName string         `db:"display_name" json:"display_name"`
	TokenHash   string         `db:"token_hash" json:"-"`
	Roles       pq.StringArray `db:"roles" json:"roles"`
	AllowedIPs  pq.StringArray `db:"allowed_ips" json:"allowed_ips"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// AdminAudit is one logged admin request.
type AdminAudit struct {
	ID         int             `db:"id" json:"id"`
	AdminPhone string          `db:"admin_phone" json:"admin_phone"`
	IP         string          `db:"ip" json:"ip"`
	Route      string          `db:"route" json:"route"`
	Action     string          `db:"action" json:"action"`
	Details    json.RawMessage `db:"details" json:"details"`
	Success    bool            `db:"success" json:"success"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}
