package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/Gunvolt24/kbridge/internal/domain"
	"github.com/Gunvolt24/kbridge/internal/ports"
)

var (
	_ ports.DeliveryArchive     = (*ArchiveService)(nil)
	_ ports.DeliveryReadService = (*ArchiveService)(nil)
)

// ArchiveService — архив доставок: кэш уже сохранённых ключей перед хранилищем.
type ArchiveService struct {
	repo  ports.DeliveryRepository
	cache ports.DeliveryCache
	log   ports.Logger
}

// NewArchiveService — DI-конструктор.
func NewArchiveService(repo ports.DeliveryRepository, cache ports.DeliveryCache, log ports.Logger) *ArchiveService {
	return &ArchiveService{repo: repo, cache: cache, log: log}
}

// Archive — сохранить записи, которых ещё нет в кэше.
// Шаги:
//  1. отсеять ключи, уже отмеченные в кэше (повторная доставка после отката);
//  2. идемпотентная вставка остатка;
//  3. отметить в кэше все ключи остатка, включая отброшенные хранилищем как дубли.
func (s *ArchiveService) Archive(ctx context.Context, records []*domain.DeliveredRecord) (int, error) {
	fresh := make([]*domain.DeliveredRecord, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		id := rec.ID()
		if s.cache.Seen(ctx, id) {
			continue
		}
		fresh = append(fresh, rec)
		ids = append(ids, id)
	}
	if len(fresh) == 0 {
		s.log.Debugf(ctx, "archive: all %d records already stored", len(records))
		return 0, nil
	}

	inserted, err := s.repo.SaveBatch(ctx, fresh)
	if err != nil {
		s.log.Errorf(ctx, "repo.SaveBatch failed records=%d err=%v", len(fresh), err)
		return 0, fmt.Errorf("archive records: %w", err)
	}
	s.cache.MarkSeen(ctx, ids...)

	if dup := len(fresh) - inserted; dup > 0 {
		s.log.Infof(ctx, "archived %d records, %d duplicates skipped by storage", inserted, dup)
	} else {
		s.log.Infof(ctx, "archived %d records", inserted)
	}
	return inserted, nil
}

// RecentDeliveries — проксирование в репозиторий (пагинация уже валидирована на верхнем уровне).
func (s *ArchiveService) RecentDeliveries(
	ctx context.Context,
	endpoint string,
	limit, offset int,
) ([]*domain.DeliveredRecord, error) {
	return s.repo.ListRecent(ctx, endpoint, limit, offset)
}

// WarmUpCache — прогрев кэша ключами последних N записей из БД.
// Если n <= 0, прогрев не выполняется (но это не ошибка).
func (s *ArchiveService) WarmUpCache(ctx context.Context, n int) error {
	if n <= 0 {
		s.log.Warnf(ctx, "cache warm-up skipped: n <= 0 (n=%d)", n)
		return nil
	}

	start := time.Now()
	ids, err := s.repo.LastIDs(ctx, n)
	if err != nil {
		s.log.Errorf(ctx, "repo.LastIDs failed n=%d err=%v", n, err)
		return err
	}
	if warmUpErr := s.cache.WarmUp(ctx, ids); warmUpErr != nil {
		s.log.Warnf(ctx, "cache.WarmUp failed err=%v", warmUpErr)
	}
	s.log.Infof(ctx, "cache warmed with %d record ids in %s", len(ids), time.Since(start))
	return nil
}
