package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gunvolt24/kbridge/internal/domain"
	"github.com/Gunvolt24/kbridge/internal/ports"
)

// Проверка, что DeliveryRepository удовлетворяет интерфейсу.
var _ ports.DeliveryRepository = (*DeliveryRepository)(nil)

const defaultListLimit = 20

// DeliveryRepository — архив доставленных записей на Postgres (pgxpool).
type DeliveryRepository struct {
	pool *pgxpool.Pool
}

// NewDeliveryRepository — конструктор DeliveryRepository.
func NewDeliveryRepository(pool *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{pool: pool}
}

// SaveBatch — вставка пачки одним pgx.Batch в транзакции.
// Повторная доставка той же записи (endpoint, topic, partition, offset) игнорируется.
func (r *DeliveryRepository) SaveBatch(ctx context.Context, records []*domain.DeliveredRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	transaction, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		// При уже завершённой транзакции Rollback вернёт ErrTxClosed — игнорируем.
		if rbErr := transaction.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			_ = rbErr
		}
	}()

	batch := &pgx.Batch{}
	for _, rec := range records {
		if rec == nil {
			continue
		}
		batch.Queue(`
			INSERT INTO delivered_records (
				endpoint, topic, partition_id, record_offset,
				record_key, record_value, headers, record_time, delivered_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (endpoint, topic, partition_id, record_offset) DO NOTHING
		`,
			rec.Endpoint, rec.Topic, rec.Partition, rec.Offset,
			rec.Key, rec.Value, rec.Headers, nullTime(rec), rec.DeliveredAt,
		)
	}

	results := transaction.SendBatch(ctx, batch)
	inserted := 0
	for i := 0; i < batch.Len(); i++ {
		tag, execErr := results.Exec()
		if execErr != nil {
			_ = results.Close()
			return 0, fmt.Errorf("insert delivered record #%d: %w", i, execErr)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close batch: %w", err)
	}

	if err := transaction.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// ListRecent — постраничный список от новых к старым; пустой endpoint — все конечные точки.
func (r *DeliveryRepository) ListRecent(ctx context.Context, endpoint string, limit, offset int) ([]*domain.DeliveredRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.pool.Query(ctx, `
		SELECT endpoint, topic, partition_id, record_offset,
			record_key, record_value, headers, record_time, delivered_at
		FROM delivered_records
		WHERE ($1 = '' OR endpoint = $1)
		ORDER BY delivered_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, endpoint, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("select delivered records: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.DeliveredRecord, 0, limit)
	for rows.Next() {
		rec := &domain.DeliveredRecord{}
		var recordTime *time.Time
		if err := rows.Scan(
			&rec.Endpoint, &rec.Topic, &rec.Partition, &rec.Offset,
			&rec.Key, &rec.Value, &rec.Headers, &recordTime, &rec.DeliveredAt,
		); err != nil {
			return nil, fmt.Errorf("scan delivered record: %w", err)
		}
		if recordTime != nil {
			rec.RecordTime = *recordTime
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("delivered rows: %w", err)
	}
	return out, nil
}

// LastIDs — ключи последних n сохранённых записей (для прогрева кэша).
func (r *DeliveryRepository) LastIDs(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT endpoint, topic, partition_id, record_offset
		FROM delivered_records
		ORDER BY id DESC
		LIMIT $1
	`, n)
	if err != nil {
		return nil, fmt.Errorf("select last ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, n)
	for rows.Next() {
		var (
			endpoint, topic string
			partition       int32
			offset          int64
		)
		if err := rows.Scan(&endpoint, &topic, &partition, &offset); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, domain.RecordID(endpoint, topic, partition, offset))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("last rows: %w", err)
	}
	return ids, nil
}

// nullTime — нулевое время записи сохраняется как NULL.
func nullTime(rec *domain.DeliveredRecord) *time.Time {
	if rec.RecordTime.IsZero() {
		return nil
	}
	t := rec.RecordTime
	return &t
}
