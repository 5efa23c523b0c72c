package roster

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"cohort/internal/team/models"
	"cohort/pkg/platform/sentinel"
)

// PostgresStore persists roster entries in PostgreSQL with the profile as
// JSONB.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed roster store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Upsert(ctx context.Context, poolID string, member *models.Member) error {
	if member == nil {
		return fmt.Errorf("member is required")
	}
	profile, err := json.Marshal(member.ProfileData)
	if err != nil {
		return fmt.Errorf("encode roster profile: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pool_roster (pool_id, user_id, username, display_name, role_title, profile)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (pool_id, user_id)
		 DO UPDATE SET username     = EXCLUDED.username,
		               display_name = EXCLUDED.display_name,
		               role_title   = EXCLUDED.role_title,
		               profile      = EXCLUDED.profile`,
		poolID, member.UserID, member.Username, member.DisplayName, member.RoleTitle, profile,
	)
	if err != nil {
		return fmt.Errorf("upsert roster entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, poolID, userID string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, username, display_name, role_title, profile
		 FROM pool_roster WHERE pool_id = $1 AND user_id = $2`,
		poolID, userID,
	)
	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get roster entry: %w", err)
	}
	return member, nil
}

func (s *PostgresStore) List(ctx context.Context, poolID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, username, display_name, role_title, profile
		 FROM pool_roster WHERE pool_id = $1 ORDER BY user_id`,
		poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("list roster: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster: %w", err)
	}
	return members, nil
}

func (s *PostgresStore) Remove(ctx context.Context, poolID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM pool_roster WHERE pool_id = $1 AND user_id = $2`,
		poolID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove roster entry: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove roster rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (*models.Member, error) {
	member := &models.Member{}
	var profile []byte
	if err := row.Scan(&member.UserID, &member.Username, &member.DisplayName, &member.RoleTitle, &profile); err != nil {
		return nil, err
	}
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &member.ProfileData); err != nil {
			return nil, fmt.Errorf("decode roster profile: %w", err)
		}
	}
	return member, nil
}
