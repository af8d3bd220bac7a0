package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const leaveColumns = `id, staff_id, staff_name, start_date, end_date, reason, status, created_at`

func scanLeaveRequest(row pgx.Row) (LeaveRequest, error) {
	var l LeaveRequest
	err := row.Scan(&l.ID, &l.StaffID, &l.StaffName, &l.StartDate,
		&l.EndDate, &l.Reason, &l.Status, &l.CreatedAt)
	return l, err
}

type CreateLeaveRequestParams struct {
	StaffID   uuid.UUID
	StaffName string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

func (s *Store) CreateLeaveRequest(ctx context.Context, arg CreateLeaveRequestParams) (LeaveRequest, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO leave_requests (id, staff_id, staff_name, start_date, end_date, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+leaveColumns,
		uuid.New(), arg.StaffID, arg.StaffName, arg.StartDate, arg.EndDate, arg.Reason)
	return scanLeaveRequest(row)
}

func (s *Store) GetLeaveRequest(ctx context.Context, id uuid.UUID) (LeaveRequest, error) {
	row := s.db.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leave_requests WHERE id = $1`, id)
	return scanLeaveRequest(row)
}

// ListLeaveRequests returns every request, newest first. Admin view.
func (s *Store) ListLeaveRequests(ctx context.Context) ([]LeaveRequest, error) {
	rows, err := s.db.Query(ctx, `SELECT `+leaveColumns+` FROM leave_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectLeaveRequests(rows)
}

// ListLeaveRequestsByStaff returns one staff member's own requests.
func (s *Store) ListLeaveRequestsByStaff(ctx context.Context, staffID uuid.UUID) ([]LeaveRequest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+leaveColumns+` FROM leave_requests
		WHERE staff_id = $1 ORDER BY created_at DESC`, staffID)
	if err != nil {
		return nil, err
	}
	return collectLeaveRequests(rows)
}

func collectLeaveRequests(rows pgx.Rows) ([]LeaveRequest, error) {
	defer rows.Close()
	requests := []LeaveRequest{}
	for rows.Next() {
		l, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, l)
	}
	return requests, rows.Err()
}

// DecideLeaveRequest moves a Pending request to Approved or Denied. The
// WHERE clause makes the decision atomic: a request that was already
// decided matches no row and comes back as pgx.ErrNoRows.
func (s *Store) DecideLeaveRequest(ctx context.Context, id uuid.UUID, status string) (LeaveRequest, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE leave_requests SET status = $2
		WHERE id = $1 AND status = 'Pending'
		RETURNING `+leaveColumns, id, status)
	return scanLeaveRequest(row)
}
