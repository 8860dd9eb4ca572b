package compliance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// LoadFromPostgres reads the jurisdiction_rules table and builds an immutable
// table. The table is read once; later database changes require a restart.
//
//	CREATE TABLE jurisdiction_rules (
//	    key                          TEXT PRIMARY KEY,
//	    name                         TEXT NOT NULL,
//	    description                  TEXT NOT NULL DEFAULT '',
//	    tier                         TEXT NOT NULL,
//	    consent                      TEXT NOT NULL,
//	    school_notification_required BOOLEAN NOT NULL DEFAULT FALSE,
//	    school_approval_required     BOOLEAN NOT NULL DEFAULT FALSE,
//	    minor_athletes_allowed       BOOLEAN NOT NULL DEFAULT FALSE,
//	    disallowed                   TEXT[] NOT NULL DEFAULT '{}',
//	    minor_restricted             TEXT[] NOT NULL DEFAULT '{}',
//	    min_amount                   NUMERIC(12,2) NOT NULL DEFAULT 0,
//	    max_amount                   NUMERIC(12,2) NOT NULL DEFAULT 0,
//	    review_delay_hours           INTEGER NOT NULL DEFAULT 0
//	);
func LoadFromPostgres(ctx context.Context, db *sql.DB) (*RuleTable, error) {
	query := `
		SELECT key, name, description, tier, consent,
		       school_notification_required, school_approval_required, minor_athletes_allowed,
		       disallowed, minor_restricted, min_amount, max_amount, review_delay_hours
		FROM jurisdiction_rules
		ORDER BY key
	`
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query jurisdiction rules: %w", err)
	}
	defer rows.Close()

	var records []ruleRecord
	for rows.Next() {
		var rec ruleRecord
		if err := rows.Scan(
			&rec.Key, &rec.Name, &rec.Description, &rec.Tier, &rec.Consent,
			&rec.SchoolNotificationRequired, &rec.SchoolApprovalRequired, &rec.MinorAthletesAllowed,
			pq.Array(&rec.Disallowed), pq.Array(&rec.MinorRestricted),
			&rec.MinAmount, &rec.MaxAmount, &rec.ReviewDelayHours,
		); err != nil {
			return nil, fmt.Errorf("scan jurisdiction rule: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jurisdiction rules: %w", err)
	}
	return fromRecords(records)
}
