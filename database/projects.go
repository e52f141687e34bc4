package database

import (
	"context"
	"errors"
	"fmt"
	"projectmanager/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// projectColumns selects a project row joined with its assignee's username.
// Every query below aliases the project relation as p and users as u.
const projectColumns = `
	p.id, p.name, p.description, p.start_date, p.end_date,
	p.assignee_id, p.is_done, p.created_at, p.updated_at,
	COALESCE(u.username, '')
`

func (db *DB) CreateProject(ctx context.Context, fields models.ProjectFields) (*models.Project, error) {
	query := `
		WITH p AS (
			INSERT INTO projects (name, description, start_date, end_date, assignee_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING *
		)
		SELECT ` + projectColumns + `
		FROM p
		LEFT JOIN users u ON u.id = p.assignee_id
	`

	project, err := scanProject(db.Pool.QueryRow(ctx, query,
		fields.Name, fields.Description, fields.StartDate, fields.EndDate, fields.AssigneeID))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	db.logger.Info("Created project", zap.String("name", project.Name), zap.Stringer("id", project.ID))
	return project, nil
}

// UpdateProject overwrites every admin-editable field and refreshes updated_at.
// is_done is left untouched so an edit can never reopen a finished project.
func (db *DB) UpdateProject(ctx context.Context, projectID uuid.UUID, fields models.ProjectFields) (*models.Project, error) {
	query := `
		WITH p AS (
			UPDATE projects
			SET name = $2, description = $3, start_date = $4, end_date = $5,
				assignee_id = $6, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		)
		SELECT ` + projectColumns + `
		FROM p
		LEFT JOIN users u ON u.id = p.assignee_id
	`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID,
		fields.Name, fields.Description, fields.StartDate, fields.EndDate, fields.AssigneeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	db.logger.Info("Updated project", zap.String("name", project.Name), zap.Stringer("id", project.ID))
	return project, nil
}

// MarkProjectDone sets is_done. There is intentionally no inverse.
func (db *DB) MarkProjectDone(ctx context.Context, projectID uuid.UUID) error {
	query := `UPDATE projects SET is_done = TRUE, updated_at = NOW() WHERE id = $1`

	result, err := db.Pool.Exec(ctx, query, projectID)
	if err != nil {
		return fmt.Errorf("failed to mark project done: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	db.logger.Info("Marked project done", zap.Stringer("id", projectID))
	return nil
}

// ListProjects returns every project, newest first.
func (db *DB) ListProjects(ctx context.Context) ([]models.Project, error) {
	return db.listProjects(ctx, NewQueryBuilder())
}

// ListProjectsByAssignee returns the projects assigned to userID, newest first.
func (db *DB) ListProjectsByAssignee(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	qb := NewQueryBuilder()
	qb.AddCondition(columnAssigneeID, userID)
	return db.listProjects(ctx, qb)
}

func (db *DB) listProjects(ctx context.Context, qb *QueryBuilder) ([]models.Project, error) {
	// SAFETY: WhereClause only contains fixed column names; values are parameterized.
	query := fmt.Sprintf(`
		SELECT %s
		FROM projects p
		LEFT JOIN users u ON u.id = p.assignee_id
		%s
		ORDER BY %s DESC, %s DESC
	`, projectColumns, qb.WhereClause(), columnCreatedAt, columnID)

	rows, err := db.Pool.Query(ctx, query, qb.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

func (db *DB) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM projects p
		LEFT JOIN users u ON u.id = p.assignee_id
		WHERE p.id = $1
	`

	project, err := scanProject(db.Pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

func (db *DB) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	query := `DELETE FROM projects WHERE id = $1`

	result, err := db.Pool.Exec(ctx, query, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrProjectNotFound
	}

	db.logger.Info("Deleted project", zap.Stringer("id", projectID))
	return nil
}

// Helper functions

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var project models.Project
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.StartDate,
		&project.EndDate,
		&project.AssigneeID,
		&project.IsDone,
		&project.CreatedAt,
		&project.UpdatedAt,
		&project.AssigneeUsername,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanProjects(rows rowsScanner) ([]models.Project, error) {
	projects := []models.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *project)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}
