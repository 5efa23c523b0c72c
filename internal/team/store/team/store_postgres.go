package team

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cohort/internal/team/models"
	"cohort/pkg/platform/sentinel"
)

// PostgresStore persists teams in PostgreSQL. Team rows hold the envelope;
// membership lives in a team_members table with the profile as JSONB.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed team store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, team *models.Team) error {
	if team == nil {
		return fmt.Errorf("team is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create team: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM teams WHERE pool_id = $1 AND (name = $2 OR channel_name = $3)
		 )`,
		team.PoolID, team.Name, team.ChannelName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check team uniqueness: %w", err)
	}
	if exists {
		return sentinel.ErrConflict
	}

	now := time.Now()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO teams (pool_id, name, channel_name, number, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)`,
		team.PoolID, team.Name, team.ChannelName, team.Number, now,
	)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}

	if err := insertMembers(ctx, tx, team); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create team: %w", err)
	}
	team.CreatedAt = now
	team.UpdatedAt = now
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, poolID, name string) (*models.Team, error) {
	team := &models.Team{Members: make(map[string]*models.Member)}
	err := s.db.QueryRowContext(ctx,
		`SELECT pool_id, name, channel_name, number, created_at, updated_at
		 FROM teams WHERE pool_id = $1 AND name = $2`,
		poolID, name,
	).Scan(&team.PoolID, &team.Name, &team.ChannelName, &team.Number, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}

	if err := s.loadMembers(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *PostgresStore) List(ctx context.Context, poolID string) ([]*models.Team, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pool_id, name, channel_name, number, created_at, updated_at
		 FROM teams WHERE pool_id = $1 ORDER BY number, name`,
		poolID,
	)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{Members: make(map[string]*models.Member)}
		if err := rows.Scan(&team.PoolID, &team.Name, &team.ChannelName, &team.Number, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate teams: %w", err)
	}

	for _, team := range teams {
		if err := s.loadMembers(ctx, team); err != nil {
			return nil, err
		}
	}
	return teams, nil
}

func (s *PostgresStore) Update(ctx context.Context, team *models.Team) error {
	if team == nil {
		return fmt.Errorf("team is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update team: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	res, err := tx.ExecContext(ctx,
		`UPDATE teams SET channel_name = $3, number = $4, updated_at = $5
		 WHERE pool_id = $1 AND name = $2`,
		team.PoolID, team.Name, team.ChannelName, team.Number, now,
	)
	if err != nil {
		return fmt.Errorf("update team: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update team rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	_, err = tx.ExecContext(ctx,
		`DELETE FROM team_members WHERE pool_id = $1 AND team_name = $2`,
		team.PoolID, team.Name,
	)
	if err != nil {
		return fmt.Errorf("clear team members: %w", err)
	}
	if err := insertMembers(ctx, tx, team); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update team: %w", err)
	}
	team.UpdatedAt = now
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, poolID, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete team: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM team_members WHERE pool_id = $1 AND team_name = $2`,
		poolID, name,
	)
	if err != nil {
		return fmt.Errorf("delete team members: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM teams WHERE pool_id = $1 AND name = $2`,
		poolID, name,
	)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete team rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete team: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByMember(ctx context.Context, poolID, userID string) (*models.Team, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT team_name FROM team_members WHERE pool_id = $1 AND user_id = $2`,
		poolID, userID,
	).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find team by member: %w", err)
	}
	return s.Get(ctx, poolID, name)
}

func (s *PostgresStore) MaxNumber(ctx context.Context, poolID string) (int, error) {
	var max int
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(number), 0) FROM teams WHERE pool_id = $1`,
		poolID,
	).Scan(&max)
	if err != nil {
		return 0, fmt.Errorf("max team number: %w", err)
	}
	return max, nil
}

func (s *PostgresStore) loadMembers(ctx context.Context, team *models.Team) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, username, display_name, role_title, profile
		 FROM team_members WHERE pool_id = $1 AND team_name = $2`,
		team.PoolID, team.Name,
	)
	if err != nil {
		return fmt.Errorf("load team members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		member := &models.Member{}
		var profile []byte
		if err := rows.Scan(&member.UserID, &member.Username, &member.DisplayName, &member.RoleTitle, &profile); err != nil {
			return fmt.Errorf("scan team member: %w", err)
		}
		if len(profile) > 0 {
			if err := json.Unmarshal(profile, &member.ProfileData); err != nil {
				return fmt.Errorf("decode member profile: %w", err)
			}
		}
		team.Members[member.UserID] = member
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate team members: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, tx *sql.Tx, team *models.Team) error {
	for _, member := range team.Members {
		profile, err := json.Marshal(member.ProfileData)
		if err != nil {
			return fmt.Errorf("encode member profile: %w", err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO team_members (pool_id, team_name, user_id, username, display_name, role_title, profile)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			team.PoolID, team.Name, member.UserID, member.Username, member.DisplayName, member.RoleTitle, profile,
		)
		if err != nil {
			return fmt.Errorf("insert team member: %w", err)
		}
	}
	return nil
}
