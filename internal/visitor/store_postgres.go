package visitor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gatehouse/pkg/platform/sentinel"
)

const pqUniqueViolation = "23505"

const recordColumns = `
	id, record_id, full_name, visitor_type, id_number, phone, company,
	photo, visitor_card_photo, id_card_photo, purpose, access_area, notes,
	vehicle_plate, check_in_time, check_out_time, status, recorded_by,
	consent_type, consent_time, consent_signature, qr_code, qr_expiry,
	created_at, updated_at`

// PostgresStore persists visitor records in PostgreSQL. Correctness of the
// exactly-once IN to OUT transition relies on the conditional single-row
// update in CompleteCheckOut, not on any in-process lock.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore constructs a PostgreSQL-backed visitor store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, record Record) (int64, error) {
	query := `
		INSERT INTO visitor_records (
			record_id, full_name, visitor_type, id_number, phone, company,
			photo, visitor_card_photo, id_card_photo, purpose, access_area, notes,
			vehicle_plate, check_in_time, status, recorded_by,
			consent_type, consent_time, consent_signature, qr_code, qr_expiry,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $22)
		RETURNING id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, query,
		record.RecordID, record.FullName, string(record.VisitorType),
		record.IDNumber, record.Phone, record.Company,
		record.Photo, record.VisitorCardPhoto, record.IDCardPhoto,
		record.Purpose, record.AccessArea, record.Notes,
		record.VehiclePlate, record.CheckInTime, string(record.Status), record.RecordedBy,
		string(record.ConsentType), nullTime(record.ConsentTime), record.ConsentSignature,
		record.QRCode, nullTime(record.QRExpiry), record.CreatedAt,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, sentinel.ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("create visitor record: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	return s.list(ctx, `SELECT `+recordColumns+` FROM visitor_records ORDER BY check_in_time DESC, id DESC`)
}

func (s *PostgresStore) ListActive(ctx context.Context) ([]Record, error) {
	return s.list(ctx, `SELECT `+recordColumns+` FROM visitor_records WHERE status = 'IN' ORDER BY check_in_time DESC, id DESC`)
}

func (s *PostgresStore) list(ctx context.Context, query string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list visitor records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate visitor records: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) FindByRecordID(ctx context.Context, recordID string) (Record, error) {
	return s.findOne(ctx, `SELECT `+recordColumns+` FROM visitor_records WHERE record_id = $1`, recordID)
}

func (s *PostgresStore) FindByQRCode(ctx context.Context, token string) (Record, error) {
	return s.findOne(ctx, `SELECT `+recordColumns+` FROM visitor_records WHERE qr_code = $1`, token)
}

func (s *PostgresStore) findOne(ctx context.Context, query, arg string) (Record, error) {
	row := s.db.QueryRowContext(ctx, query, arg)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

// CompleteCheckOut is the conditional write that makes the transition
// race-free: concurrent callers race on WHERE status = 'IN' and exactly one
// wins. The follow-up read only distinguishes the two failure shapes.
func (s *PostgresStore) CompleteCheckOut(ctx context.Context, recordID string, at time.Time) error {
	query := `
		UPDATE visitor_records
		SET status = 'OUT', check_out_time = $2, updated_at = $2
		WHERE record_id = $1 AND status = 'IN'
	`
	res, err := s.db.ExecContext(ctx, query, recordID, at)
	if err != nil {
		return fmt.Errorf("complete check-out: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete check-out: %w", err)
	}
	if affected == 1 {
		return nil
	}

	var status string
	err = s.db.QueryRowContext(ctx, `SELECT status FROM visitor_records WHERE record_id = $1`, recordID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("complete check-out: %w", err)
	}
	return sentinel.ErrAlreadyCheckedOut
}

// Update merges the patch into the stored row and writes the mutable fields
// back as a whole. record_id, check_in_time and status are never touched.
func (s *PostgresStore) Update(ctx context.Context, recordID string, patch Patch) error {
	record, err := s.FindByRecordID(ctx, recordID)
	if err != nil {
		return err
	}
	patch.Apply(&record)
	query := `
		UPDATE visitor_records
		SET full_name = $2, visitor_type = $3, id_number = $4, phone = $5,
			company = $6, photo = $7, visitor_card_photo = $8, id_card_photo = $9,
			purpose = $10, access_area = $11, notes = $12, vehicle_plate = $13,
			updated_at = $14
		WHERE record_id = $1
	`
	_, err = s.db.ExecContext(ctx, query,
		recordID, record.FullName, string(record.VisitorType), record.IDNumber, record.Phone,
		record.Company, record.Photo, record.VisitorCardPhoto, record.IDCardPhoto,
		record.Purpose, record.AccessArea, record.Notes, record.VehiclePlate,
		time.Now())
	if err != nil {
		return fmt.Errorf("update visitor record: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, recordID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitor_records WHERE record_id = $1`, recordID)
	if err != nil {
		return fmt.Errorf("delete visitor record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete visitor record: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context, dayStart, dayEnd time.Time) (DailyStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE check_in_time >= $1 AND check_in_time < $2),
			COUNT(*) FILTER (WHERE check_out_time >= $1 AND check_out_time < $2),
			COUNT(*) FILTER (WHERE status = 'IN')
		FROM visitor_records
	`
	var stats DailyStats
	err := s.db.QueryRowContext(ctx, query, dayStart, dayEnd).Scan(&stats.TodayIn, &stats.TodayOut, &stats.Pending)
	if err != nil {
		return DailyStats{}, fmt.Errorf("visitor stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var visitorType, status, consentType string
	var checkOutTime, consentTime, qrExpiry sql.NullTime
	err := row.Scan(
		&record.ID, &record.RecordID, &record.FullName, &visitorType,
		&record.IDNumber, &record.Phone, &record.Company,
		&record.Photo, &record.VisitorCardPhoto, &record.IDCardPhoto,
		&record.Purpose, &record.AccessArea, &record.Notes,
		&record.VehiclePlate, &record.CheckInTime, &checkOutTime, &status, &record.RecordedBy,
		&consentType, &consentTime, &record.ConsentSignature,
		&record.QRCode, &qrExpiry, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("scan visitor record: %w", err)
	}
	record.VisitorType = Type(visitorType)
	record.Status = Status(status)
	record.ConsentType = ConsentType(consentType)
	record.CheckOutTime = timePtr(checkOutTime)
	record.ConsentTime = timePtr(consentTime)
	record.QRExpiry = timePtr(qrExpiry)
	return record, nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation
}
