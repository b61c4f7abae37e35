package admin

import (
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/notedrop/backend/internal/models"
)

func TestHasRole(t *testing.T) {
	op := &models.AdminAccount{Roles: pq.StringArray{RoleOperator}}
	if !HasRole(op, RoleOperator) {
		t.Error("operator should pass the operator check")
	}
	if HasRole(op, RoleAuditor) {
		t.Error("operator should not read the audit trail")
	}

	owner := &models.AdminAccount{Roles: pq.StringArray{RoleOwner}}
	if !HasRole(owner, RoleAuditor) || !HasRole(owner, RoleOperator) {
		t.Error("owner should pass every role check")
	}
}

func TestIPAllowed(t *testing.T) {
	open := &models.AdminAccount{}
	if !IPAllowed(open, "10.0.0.1") {
		t.Error("empty list should allow any address")
	}
	pinned := &models.AdminAccount{AllowedIPs: pq.StringArray{"10.0.0.1"}}
	if !IPAllowed(pinned, "10.0.0.1") || IPAllowed(pinned, "10.0.0.2") {
		t.Error("pinned account should only allow its listed address")
	}
}

func TestAuditQuerySQL(t *testing.T) {
	query, args := AuditQuery{Limit: 25, Offset: 50}.sql()
	if strings.Contains(query, "WHERE") {
		t.Errorf("unfiltered query should not filter: %s", query)
	}
	if !strings.HasSuffix(query, "LIMIT $1 OFFSET $2") || len(args) != 2 || args[0] != 25 || args[1] != 50 {
		t.Errorf("unexpected query %q args %v", query, args)
	}

	query, args = AuditQuery{Phone: "256700", Limit: 10}.sql()
	if !strings.Contains(query, "WHERE admin_phone = $1") || !strings.HasSuffix(query, "LIMIT $2 OFFSET $3") {
		t.Errorf("unexpected filtered query %q", query)
	}
	if len(args) != 3 || args[0] != "256700" {
		t.Errorf("unexpected args %v", args)
	}
}

func TestRecordWithoutDatabase(t *testing.T) {
	if err := Record(nil, Action{Name: "noop"}); err != nil {
		t.Errorf("expected nil error without a database, got %v", err)
	}
}
