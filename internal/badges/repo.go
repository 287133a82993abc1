package badges

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"
	"github.com/azelenovic/fitcoach/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, badge Badge) (_ *Badge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.badges.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if badge.CreatedAt.IsZero() {
		badge.CreatedAt = time.Now()
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO badges (name, description, icon_url, created_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		badge.Name, badge.Description, badge.IconURL, badge.CreatedAt,
	).Scan(&badge.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("badge.id", badge.ID))

	return &badge, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Badge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.badges.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var badge Badge
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, description, icon_url, created_at FROM badges WHERE id = $1;`,
		id,
	).Scan(&badge.ID, &badge.Name, &badge.Description, &badge.IconURL, &badge.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBadgeNotFound
		}
		return nil, err
	}

	return &badge, nil
}

func (r *Repo) List(ctx context.Context) (_ []Badge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.badges.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, description, icon_url, created_at FROM badges ORDER BY id;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	badges := make([]Badge, 0)
	for rows.Next() {
		var badge Badge
		if err := rows.Scan(&badge.ID, &badge.Name, &badge.Description, &badge.IconURL, &badge.CreatedAt); err != nil {
			return nil, err
		}
		badges = append(badges, badge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return badges, nil
}

func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.badges.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM badges WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBadgeNotFound
	}

	return nil
}

// Award grants a badge to a user. Each badge can be held once, a second
// award for the same pair hits the unique constraint.
func (r *Repo) Award(ctx context.Context, badgeID, userID, awardedBy int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.badges.award")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("badge.id", badgeID))
	span.SetAttributes(attribute.Int("user.id", userID))

	_, err = r.db.Exec(
		ctx,
		`INSERT INTO user_badges (user_id, badge_id, awarded_at, awarded_by)
			VALUES ($1, $2, $3, $4);`,
		userID, badgeID, time.Now(), awardedBy,
	)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return ErrDuplicateAward
		}
		if pkg.IsForeignKeyViolationError(err) {
			return ErrBadgeNotFound
		}
		return err
	}

	return nil
}

func (r *Repo) ListForUser(ctx context.Context, userID int) (_ []UserBadge, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.badges.listforuser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT b.id, b.name, b.description, b.icon_url, ub.awarded_at, ub.awarded_by
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = $1
		ORDER BY ub.awarded_at DESC;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	userBadges := make([]UserBadge, 0)
	for rows.Next() {
		var ub UserBadge
		if err := rows.Scan(&ub.BadgeID, &ub.Name, &ub.Description, &ub.IconURL, &ub.AwardedAt, &ub.AwardedBy); err != nil {
			return nil, err
		}
		userBadges = append(userBadges, ub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return userBadges, nil
}
