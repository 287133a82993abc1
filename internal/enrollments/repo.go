package enrollments

import (
	"context"
	"fmt"
	"time"

	"github.com/azelenovic/fitcoach/internal/telemetry/tracing"
	"github.com/azelenovic/fitcoach/pkg"

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

func (r *Repo) Enroll(ctx context.Context, userID, programID int) (_ *Enrollment, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.enrollments.enroll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("program.id", programID))

	enrollment := Enrollment{
		UserID:     userID,
		ProgramID:  programID,
		EnrolledAt: time.Now(),
		Status:     StatusActive,
	}

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO enrollments (user_id, program_id, status, enrolled_at)
			VALUES ($1, $2, $3, $4)
		RETURNING id;`,
		enrollment.UserID, enrollment.ProgramID, enrollment.Status, enrollment.EnrolledAt,
	).Scan(&enrollment.ID)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrDuplicateEnrollment
		}
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}

	return &enrollment, nil
}

// Unenroll hard-deletes the enrollment row. Completion history for the
// pair is left untouched.
func (r *Repo) Unenroll(ctx context.Context, userID, programID int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.enrollments.unenroll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM enrollments WHERE user_id = $1 AND program_id = $2;`,
		userID, programID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}

	return nil
}

func (r *Repo) UpdateStatus(ctx context.Context, userID, programID int, status Status) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.enrollments.updatestatus")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("status", string(status)))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE enrollments SET status = $1 WHERE user_id = $2 AND program_id = $3;`,
		status, userID, programID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}

	return nil
}

func (r *Repo) IsEnrolled(ctx context.Context, userID, programID int) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.enrollments.isenrolled")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var enrolled bool
	err = r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id = $1 AND program_id = $2);`,
		userID, programID,
	).Scan(&enrolled)
	if err != nil {
		return false, err
	}

	return enrolled, nil
}

func (r *Repo) UsersByProgram(ctx context.Context, programID int) (_ []EnrolledUser, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.enrollments.usersbyprogram")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	rows, err := r.db.Query(
		ctx,
		`SELECT
			u.id, u.display_name, e.status, e.enrolled_at,
			(SELECT COUNT(*) FROM session_completions sc
				WHERE sc.user_id = u.id AND sc.program_id = e.program_id) AS completions
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		WHERE e.program_id = $1
		ORDER BY e.enrolled_at;`,
		programID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	users := make([]EnrolledUser, 0)
	for rows.Next() {
		var u EnrolledUser
		if err := rows.Scan(&u.UserID, &u.DisplayName, &u.Status, &u.EnrolledAt, &u.Completions); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return users, nil
}

func (r *Repo) ProgramsByUser(ctx context.Context, userID int) (_ []UserProgram, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.enrollments.programsbyuser")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT
			p.id, p.title, p.difficulty, e.status, e.enrolled_at,
			(SELECT COUNT(*) FROM session_completions sc
				WHERE sc.user_id = e.user_id AND sc.program_id = p.id) AS completions
		FROM enrollments e
		JOIN programs p ON p.id = e.program_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	programs := make([]UserProgram, 0)
	for rows.Next() {
		var p UserProgram
		if err := rows.Scan(&p.ProgramID, &p.Title, &p.Difficulty, &p.Status, &p.EnrolledAt, &p.Completions); err != nil {
			return nil, err
		}
		programs = append(programs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return programs, nil
}

// ProgramStats aggregates over raw rows on every call. Completion volume
// per program is small enough that no counter caching is warranted.
func (r *Repo) ProgramStats(ctx context.Context, programID int) (_ *ProgramStats, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.enrollments.programstats")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("program.id", programID))

	var stats ProgramStats
	err = r.db.QueryRow(
		ctx,
		`SELECT
			(SELECT COUNT(*) FROM enrollments WHERE program_id = $1),
			(SELECT COUNT(*) FROM enrollments WHERE program_id = $1 AND status = 'active'),
			(SELECT COUNT(*) FROM session_completions WHERE program_id = $1);`,
		programID,
	).Scan(&stats.TotalEnrolled, &stats.ActiveUsers, &stats.TotalCompletions)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
