package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"taskadee/internal/model"
)

const habitColumns = `id, user_id, name, frequency, created_at`

type HabitRepository struct {
	db     DBTX
	logger *zap.Logger
}

func NewHabitRepository(db DBTX, logger *zap.Logger) *HabitRepository {
	return &HabitRepository{
		db:     db,
		logger: logger,
	}
}

func (r *HabitRepository) Insert(ctx context.Context, h *model.Habit) error {
	r.logger.Debug("Inserting habit",
		zap.Int("user_id", h.UserID),
		zap.String("name", h.Name),
		zap.String("frequency", h.Frequency),
	)

	query := `
        INSERT INTO habits (user_id, name, frequency)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `
	err := r.db.QueryRow(ctx, query,
		h.UserID,
		h.Name,
		h.Frequency,
	).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to insert habit", zap.Error(err))
		return fmt.Errorf("insert habit: %w", err)
	}

	r.logger.Info("Habit inserted successfully",
		zap.Int("id", h.ID),
		zap.Int("user_id", h.UserID),
	)
	return nil
}

// ListByUser returns the user's habits in creation order.
func (r *HabitRepository) ListByUser(ctx context.Context, userID int) ([]model.Habit, error) {
	r.logger.Debug("Listing habits for user", zap.Int("user_id", userID))

	query := `
        SELECT ` + habitColumns + `
        FROM habits
        WHERE user_id = $1
        ORDER BY created_at ASC, id ASC
    `

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list habits", zap.Error(err))
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	habits := []model.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			r.logger.Error("Failed to scan habit", zap.Error(err))
			return nil, fmt.Errorf("scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate habits: %w", err)
	}

	r.logger.Debug("Listed habits",
		zap.Int("user_id", userID),
		zap.Int("count", len(habits)),
	)
	return habits, nil
}

// ListWithCheckins returns the user's habits in creation order, each with its
// check-ins most recent first. Check-ins are read with a single query.
func (r *HabitRepository) ListWithCheckins(ctx context.Context, userID int) ([]model.HabitWithCheckins, error) {
	habits, err := r.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(habits) == 0 {
		return []model.HabitWithCheckins{}, nil
	}

	query := `
        SELECT c.id, c.habit_id, c.checkin_date
        FROM habit_checkins c
        JOIN habits h ON h.id = c.habit_id
        WHERE h.user_id = $1
        ORDER BY c.habit_id, c.checkin_date DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list check-ins", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	byHabit := make(map[int][]model.HabitCheckin, len(habits))
	count := 0
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			r.logger.Error("Failed to scan check-in", zap.Error(err))
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		byHabit[c.HabitID] = append(byHabit[c.HabitID], c)
		count++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkins: %w", err)
	}

	result := make([]model.HabitWithCheckins, 0, len(habits))
	for _, h := range habits {
		checkins := byHabit[h.ID]
		if checkins == nil {
			checkins = []model.HabitCheckin{}
		}
		result = append(result, model.HabitWithCheckins{Habit: h, Checkins: checkins})
	}

	r.logger.Debug("Listed habits with check-ins",
		zap.Int("user_id", userID),
		zap.Int("habits", len(result)),
		zap.Int("checkins", count),
	)
	return result, nil
}

func (r *HabitRepository) Get(ctx context.Context, userID, habitID int) (*model.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`

	h, err := scanHabit(r.db.QueryRow(ctx, query, habitID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to get habit", zap.Error(err), zap.Int("habit_id", habitID))
		return nil, fmt.Errorf("get habit: %w", err)
	}
	return &h, nil
}

func (r *HabitRepository) Update(ctx context.Context, h *model.Habit) error {
	result, err := r.db.Exec(ctx,
		`UPDATE habits SET name = $1, frequency = $2 WHERE id = $3 AND user_id = $4`,
		h.Name, h.Frequency, h.ID, h.UserID,
	)
	if err != nil {
		r.logger.Error("Failed to update habit", zap.Error(err), zap.Int("habit_id", h.ID))
		return fmt.Errorf("update habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Habit updated", zap.Int("habit_id", h.ID))
	return nil
}

// Delete removes a habit; its check-ins go with it (ON DELETE CASCADE).
func (r *HabitRepository) Delete(ctx context.Context, userID, habitID int) error {
	result, err := r.db.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		r.logger.Error("Failed to delete habit", zap.Error(err), zap.Int("habit_id", habitID))
		return fmt.Errorf("delete habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	r.logger.Info("Habit deleted",
		zap.Int("habit_id", habitID),
		zap.Int("user_id", userID),
	)
	return nil
}

// InsertCheckin records a check-in. A second check-in for the same habit and day
// returns ErrAlreadyCheckedIn.
func (r *HabitRepository) InsertCheckin(ctx context.Context, habitID int, date model.Date) (*model.HabitCheckin, error) {
	r.logger.Debug("Inserting check-in",
		zap.Int("habit_id", habitID),
		zap.Stringer("date", date),
	)

	query := `
        INSERT INTO habit_checkins (habit_id, checkin_date)
        VALUES ($1, $2)
        ON CONFLICT (habit_id, checkin_date) DO NOTHING
        RETURNING id, habit_id, checkin_date
    `
	c, err := scanCheckin(r.db.QueryRow(ctx, query, habitID, date))
	if errors.Is(err, pgx.ErrNoRows) || isUniqueViolation(err) {
		return nil, ErrAlreadyCheckedIn
	}
	if err != nil {
		r.logger.Error("Failed to insert check-in", zap.Error(err), zap.Int("habit_id", habitID))
		return nil, fmt.Errorf("insert checkin: %w", err)
	}

	r.logger.Info("Check-in recorded",
		zap.Int("checkin_id", c.ID),
		zap.Int("habit_id", habitID),
		zap.Stringer("date", date),
	)
	return &c, nil
}

// ListCheckins returns a habit's check-ins, most recent first.
func (r *HabitRepository) ListCheckins(ctx context.Context, habitID int) ([]model.HabitCheckin, error) {
	query := `
        SELECT id, habit_id, checkin_date
        FROM habit_checkins
        WHERE habit_id = $1
        ORDER BY checkin_date DESC
    `
	rows, err := r.db.Query(ctx, query, habitID)
	if err != nil {
		r.logger.Error("Failed to list check-ins", zap.Error(err), zap.Int("habit_id", habitID))
		return nil, fmt.Errorf("list checkins: %w", err)
	}
	defer rows.Close()

	checkins := []model.HabitCheckin{}
	for rows.Next() {
		c, err := scanCheckin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkin: %w", err)
		}
		checkins = append(checkins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checkins: %w", err)
	}
	return checkins, nil
}

// LastCheckins returns the most recent check-in day per habit of the user.
// Habits without check-ins are absent from the map.
func (r *HabitRepository) LastCheckins(ctx context.Context, userID int) (map[int]model.Date, error) {
	query := `
        SELECT c.habit_id, MAX(c.checkin_date)
        FROM habit_checkins c
        JOIN habits h ON h.id = c.habit_id
        WHERE h.user_id = $1
        GROUP BY c.habit_id
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query last check-ins", zap.Error(err), zap.Int("user_id", userID))
		return nil, fmt.Errorf("last checkins: %w", err)
	}
	defer rows.Close()

	last := make(map[int]model.Date)
	for rows.Next() {
		var habitID int
		var d model.Date
		if err := rows.Scan(&habitID, &d); err != nil {
			return nil, fmt.Errorf("scan last checkin: %w", err)
		}
		last[habitID] = d
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate last checkins: %w", err)
	}
	return last, nil
}

func scanHabit(row pgx.Row) (model.Habit, error) {
	var h model.Habit
	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Frequency,
		&h.CreatedAt,
	)
	return h, err
}

func scanCheckin(row pgx.Row) (model.HabitCheckin, error) {
	var c model.HabitCheckin
	err := row.Scan(&c.ID, &c.HabitID, &c.CheckinDate)
	return c, err
}
