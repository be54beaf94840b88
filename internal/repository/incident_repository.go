package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/policy"
)

// IncidentFilter captures listing parameters. Scope carries the visibility
// constraints computed by the policy; it is applied in the query itself, not
// as a post-filter.
type IncidentFilter struct {
	Scope  policy.ScopeFilter
	States []domain.IncidentState
	Limit  int
	Offset int
}

// IncidentRepository encapsulates incident persistence.
type IncidentRepository interface {
	Create(ctx context.Context, inc *domain.Incident) error
	Update(ctx context.Context, inc *domain.Incident) error
	GetByID(ctx context.Context, id int64) (*domain.Incident, error)
	ListWithFilter(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error)
}

type incidentRepository struct {
	pool *pgxpool.Pool
}

// NewIncidentRepository instantiates repository.
func NewIncidentRepository(pool *pgxpool.Pool) IncidentRepository {
	return &incidentRepository{pool: pool}
}

func (r *incidentRepository) Create(ctx context.Context, inc *domain.Incident) error {
	const query = `
        INSERT INTO incidents (description, state, requester_id, assigned_technician_id, resolved_at, time_spent_minutes, materials, cost)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		inc.Description,
		inc.State,
		inc.RequesterID,
		inc.AssignedTechnicianID,
		inc.ResolvedAt,
		inc.TimeSpentMinutes,
		inc.Materials,
		inc.Cost,
	).Scan(&inc.ID, &inc.CreatedAt, &inc.UpdatedAt)
}

func (r *incidentRepository) Update(ctx context.Context, inc *domain.Incident) error {
	const query = `
        UPDATE incidents SET state=$1, assigned_technician_id=$2, resolved_at=$3,
            time_spent_minutes=$4, materials=$5, cost=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.pool.Exec(ctx, query,
		inc.State,
		inc.AssignedTechnicianID,
		inc.ResolvedAt,
		inc.TimeSpentMinutes,
		inc.Materials,
		inc.Cost,
		inc.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *incidentRepository) GetByID(ctx context.Context, id int64) (*domain.Incident, error) {
	const query = `
        SELECT id, description, state, requester_id, assigned_technician_id,
               resolved_at, time_spent_minutes, materials, cost, created_at, updated_at
        FROM incidents WHERE id=$1`

	var inc domain.Incident
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&inc.ID,
		&inc.Description,
		&inc.State,
		&inc.RequesterID,
		&inc.AssignedTechnicianID,
		&inc.ResolvedAt,
		&inc.TimeSpentMinutes,
		&inc.Materials,
		&inc.Cost,
		&inc.CreatedAt,
		&inc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &inc, nil
}

func (r *incidentRepository) ListWithFilter(ctx context.Context, filter IncidentFilter) ([]domain.Incident, error) {
	base := `SELECT id, description, state, requester_id, assigned_technician_id,
                    resolved_at, time_spent_minutes, materials, cost, created_at, updated_at
             FROM incidents`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Scope.RequesterID != nil {
		args = append(args, *filter.Scope.RequesterID)
		clauses = append(clauses, fmt.Sprintf("requester_id=$%d", len(args)))
	}
	if filter.Scope.AssignedTechnicianID != nil {
		args = append(args, *filter.Scope.AssignedTechnicianID)
		clauses = append(clauses, fmt.Sprintf("assigned_technician_id=$%d", len(args)))
	}
	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, state := range filter.States {
			args = append(args, state)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("state IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanIncidents(rows)
}

func scanIncidents(rows pgx.Rows) ([]domain.Incident, error) {
	var result []domain.Incident
	for rows.Next() {
		var inc domain.Incident
		if err := rows.Scan(
			&inc.ID,
			&inc.Description,
			&inc.State,
			&inc.RequesterID,
			&inc.AssignedTechnicianID,
			&inc.ResolvedAt,
			&inc.TimeSpentMinutes,
			&inc.Materials,
			&inc.Cost,
			&inc.CreatedAt,
			&inc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, inc)
	}
	return result, rows.Err()
}
