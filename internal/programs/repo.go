package programs

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

var (
	ErrProgramNotFound = errors.New("program not found")
	ErrSessionNotFound = errors.New("session not found")
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) AddProgram(ctx context.Context, program Program) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if program.CreatedAt.IsZero() {
		program.CreatedAt = time.Now()
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO programs (title, description, difficulty, duration_weeks, coach_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		program.Title, program.Description, program.Difficulty,
		program.DurationWeeks, program.CoachID, program.CreatedAt,
	).Scan(&program.ID)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("program.id", program.ID))

	return &program, nil
}

func (r *Repo) GetProgram(ctx context.Context, id int) (_ *Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var program Program
	err = r.db.QueryRow(
		ctx,
		`SELECT id, title, description, difficulty, duration_weeks, coach_id, created_at
			FROM programs WHERE id = $1;`,
		id,
	).Scan(
		&program.ID, &program.Title, &program.Description, &program.Difficulty,
		&program.DurationWeeks, &program.CoachID, &program.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	return &program, nil
}

func (r *Repo) ListPrograms(ctx context.Context) (_ []Program, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	rows, err := r.db.Query(
		ctx,
		`SELECT id, title, description, difficulty, duration_weeks, coach_id, created_at
			FROM programs ORDER BY created_at DESC;`,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	programs := make([]Program, 0)
	for rows.Next() {
		var program Program
		if err := rows.Scan(
			&program.ID, &program.Title, &program.Description, &program.Difficulty,
			&program.DurationWeeks, &program.CoachID, &program.CreatedAt,
		); err != nil {
			return nil, err
		}
		programs = append(programs, program)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return programs, nil
}

func (r *Repo) UpdateProgram(ctx context.Context, program Program) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", program.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE programs SET title = $1, description = $2, difficulty = $3, duration_weeks = $4
			WHERE id = $5;`,
		program.Title, program.Description, program.Difficulty, program.DurationWeeks, program.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProgramNotFound
	}

	return nil
}

func (r *Repo) DeleteProgram(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM programs WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProgramNotFound
	}

	return nil
}

func (r *Repo) AddSession(ctx context.Context, session Session) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.addsession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO sessions (program_id, title, description, day_number, duration_minutes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id;`,
		session.ProgramID, session.Title, session.Description,
		session.DayNumber, session.DurationMinutes, session.CreatedAt,
	).Scan(&session.ID)
	if err != nil {
		return nil, err
	}

	return &session, nil
}

func (r *Repo) GetSession(ctx context.Context, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.getsession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	var session Session
	err = r.db.QueryRow(
		ctx,
		`SELECT id, program_id, title, description, day_number, duration_minutes, created_at
			FROM sessions WHERE id = $1;`,
		id,
	).Scan(
		&session.ID, &session.ProgramID, &session.Title, &session.Description,
		&session.DayNumber, &session.DurationMinutes, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}

func (r *Repo) ListSessions(ctx context.Context, programID int) (_ []Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.listsessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, program_id, title, description, day_number, duration_minutes, created_at
			FROM sessions WHERE program_id = $1 ORDER BY day_number;`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		var session Session
		if err := rows.Scan(
			&session.ID, &session.ProgramID, &session.Title, &session.Description,
			&session.DayNumber, &session.DurationMinutes, &session.CreatedAt,
		); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return sessions, nil
}

func (r *Repo) DeleteSession(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.deletesession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(ctx, `DELETE FROM sessions WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}

	return nil
}

// SessionsCount returns the number of sessions defined for a program.
func (r *Repo) SessionsCount(ctx context.Context, programID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.programs.sessionscount")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	err = r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM sessions WHERE program_id = $1;`,
		programID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}
