package completions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"

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

func (r *Repo) Record(ctx context.Context, completion Completion) (_ *Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.completions.record")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", completion.UserID))
	span.SetAttributes(attribute.Int("session.id", completion.SessionID))

	if completion.CompletedAt.IsZero() {
		completion.CompletedAt = time.Now()
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO session_completions
			(user_id, program_id, session_id, completed_at, duration_minutes, photo_url, notes, feeling)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id;`,
		completion.UserID, completion.ProgramID, completion.SessionID, completion.CompletedAt,
		completion.DurationMinutes, completion.PhotoURL, completion.Notes, completion.Feeling,
	).Scan(&completion.ID)
	if err != nil {
		return nil, err
	}

	return &completion, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID int) ([]Completion, error) {
	return r.list(ctx, "user_id", userID)
}

func (r *Repo) ListByProgram(ctx context.Context, programID int) ([]Completion, error) {
	return r.list(ctx, "program_id", programID)
}

func (r *Repo) ListBySession(ctx context.Context, sessionID int) ([]Completion, error) {
	return r.list(ctx, "session_id", sessionID)
}

// list filters by one of the three id columns. The column name is never
// caller-supplied, so building the query with Sprintf stays safe.
func (r *Repo) list(ctx context.Context, column string, id int) (_ []Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.completions.list."+column)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int(column, id))

	rows, err := r.db.Query(
		ctx,
		fmt.Sprintf(
			`SELECT id, user_id, program_id, session_id, completed_at, duration_minutes, photo_url, notes, feeling
				FROM session_completions
				WHERE %s = $1
				ORDER BY completed_at DESC;`,
			column,
		),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	completions := make([]Completion, 0)
	for rows.Next() {
		var c Completion
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.ProgramID, &c.SessionID, &c.CompletedAt,
			&c.DurationMinutes, &c.PhotoURL, &c.Notes, &c.Feeling,
		); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return completions, nil
}

// UserProgramStats computes the (user, program) aggregate in one query.
// Zero completions is a zero-valued result, not an error.
func (r *Repo) UserProgramStats(ctx context.Context, userID, programID int) (_ *UserProgramStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.completions.userprogramstats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("program.id", programID))

	var stats UserProgramStats
	err = r.db.QueryRow(
		ctx,
		`SELECT
			COUNT(*),
			COUNT(DISTINCT session_id),
			COALESCE(SUM(duration_minutes), 0),
			MAX(completed_at)
		FROM session_completions
		WHERE user_id = $1 AND program_id = $2;`,
		userID, programID,
	).Scan(&stats.TotalCompletions, &stats.UniqueSessionsCompleted, &stats.TotalMinutes, &stats.LastCompletion)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// ActivityFeed returns the most recent completions for a program, newest
// first, joined with the user display name and session title.
func (r *Repo) ActivityFeed(ctx context.Context, programID, limit int) (_ []FeedItem, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.completions.activityfeed")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))
	span.SetAttributes(attribute.Int("limit", limit))

	rows, err := r.db.Query(
		ctx,
		`SELECT
			sc.id, sc.user_id, u.display_name, sc.session_id, s.title, sc.completed_at,
			sc.duration_minutes, sc.feeling
		FROM session_completions sc
		JOIN users u ON u.id = sc.user_id
		JOIN sessions s ON s.id = sc.session_id
		WHERE sc.program_id = $1
		ORDER BY sc.completed_at DESC
		LIMIT $2;`,
		programID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	feed := make([]FeedItem, 0)
	for rows.Next() {
		var item FeedItem
		if err := rows.Scan(
			&item.CompletionID, &item.UserID, &item.UserDisplayName, &item.SessionID,
			&item.SessionTitle, &item.CompletedAt, &item.DurationMinutes, &item.Feeling,
		); err != nil {
			return nil, err
		}
		feed = append(feed, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return feed, nil
}

// Delete hard-deletes one completion row. Aggregates need no touch-up,
// they are recomputed from the remaining rows on the next read.
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.completions.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM session_completions WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCompletionNotFound
	}

	return nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Completion, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.completions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var c Completion
	err = r.db.QueryRow(
		ctx,
		`SELECT id, user_id, program_id, session_id, completed_at, duration_minutes, photo_url, notes, feeling
			FROM session_completions WHERE id = $1;`,
		id,
	).Scan(
		&c.ID, &c.UserID, &c.ProgramID, &c.SessionID, &c.CompletedAt,
		&c.DurationMinutes, &c.PhotoURL, &c.Notes, &c.Feeling,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCompletionNotFound
		}
		return nil, err
	}

	return &c, nil
}
