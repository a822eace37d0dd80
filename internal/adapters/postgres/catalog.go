package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tixgate/event-ticketing-backend/internal/domain"
)

func (r *Repository) CreateEvent(ctx context.Context, e domain.Event) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO events (id, name, description, type, price, start_date, available_seat,
		                    organizer_id, category_id, location_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, e.ID, e.Name, e.Description, e.Type, e.Price, e.StartDate, e.AvailableSeat,
		e.OrganizerID, e.CategoryID, e.LocationID, e.CreatedAt)
	return mapError(err)
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	var e domain.Event
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, type, price, start_date, available_seat,
		       organizer_id, category_id, location_id, created_at
		FROM events WHERE id = $1
	`, id).Scan(&e.ID, &e.Name, &e.Description, &e.Type, &e.Price, &e.StartDate,
		&e.AvailableSeat, &e.OrganizerID, &e.CategoryID, &e.LocationID, &e.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) ListEvents(ctx context.Context, limit, offset int) ([]domain.Event, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, type, price, start_date, available_seat,
		       organizer_id, category_id, location_id, created_at
		FROM events ORDER BY start_date LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.Type, &e.Price, &e.StartDate,
			&e.AvailableSeat, &e.OrganizerID, &e.CategoryID, &e.LocationID, &e.CreatedAt); err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *Repository) UpdateEvent(ctx context.Context, e domain.Event) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE events SET name = $2, description = $3, type = $4, price = $5,
		       start_date = $6, available_seat = $7, category_id = $8, location_id = $9
		WHERE id = $1
	`, e.ID, e.Name, e.Description, e.Type, e.Price, e.StartDate, e.AvailableSeat, e.CategoryID, e.LocationID)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) CreateCategory(ctx context.Context, c domain.Category) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)`, c.ID, c.Name)
	return mapError(err)
}

func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return r.listNamed(ctx, `SELECT id, name FROM categories ORDER BY name`)
}

func (r *Repository) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, `DELETE FROM categories WHERE id = $1`, id)
}

func (r *Repository) CreateLocation(ctx context.Context, l domain.Location) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO locations (id, name) VALUES ($1, $2)`, l.ID, l.Name)
	return mapError(err)
}

func (r *Repository) ListLocations(ctx context.Context) ([]domain.Location, error) {
	named, err := r.listNamed(ctx, `SELECT id, name FROM locations ORDER BY name`)
	if err != nil {
		return nil, err
	}
	locations := make([]domain.Location, len(named))
	for i, c := range named {
		locations[i] = domain.Location(c)
	}
	return locations, nil
}

func (r *Repository) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	return r.deleteByID(ctx, `DELETE FROM locations WHERE id = $1`, id)
}

func (r *Repository) listNamed(ctx context.Context, query string) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) deleteByID(ctx context.Context, query string, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return mapError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
