package blocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/groovetime/booking-engine/internal/domain"
	blockRepo "github.com/groovetime/booking-engine/internal/infra/storage/block"
	"github.com/groovetime/booking-engine/internal/service/blocks/models"
)

// Service сервис административных блокировок дат
// Блокировка не трогает существующие бронирования, только закрывает дату
// для новых
type Service struct {
	blockRepo BlockRepository
	registry  ProviderRegistry
	cache     AvailabilityCache
	logger    Logger
}

// NewService создает новый экземпляр сервиса блокировок
// cache может быть nil, если кеширование выключено
func NewService(
	blockRepo BlockRepository,
	registry ProviderRegistry,
	cache AvailabilityCache,
	logger Logger,
) *Service {
	return &Service{
		blockRepo: blockRepo,
		registry:  registry,
		cache:     cache,
		logger:    logger,
	}
}

// CreateBlock блокирует дату провайдера
// Доступно только администраторам
func (s *Service) CreateBlock(ctx context.Context, req *models.CreateBlockRequest) (*models.BlockResponse, error) {
	s.logger.Info("CreateBlock: provider=%s, date=%s", req.ProviderID, req.BlockDate.Format(domain.DateFormat))

	if domain.ActorRole(req.ActorRole) != domain.RoleAdmin {
		s.logger.Warn("CreateBlock: access denied, admin role required")
		return nil, ErrAccessDenied
	}
	if req.ProviderID == "" {
		return nil, fmt.Errorf("%w: providerID is required", ErrInvalidInput)
	}
	if req.BlockDate.IsZero() {
		return nil, fmt.Errorf("%w: blockDate is required", ErrInvalidInput)
	}

	if _, err := s.registry.Get(req.ProviderID); err != nil {
		s.logger.Warn("CreateBlock: provider %s not found", req.ProviderID)
		return nil, ErrProviderNotFound
	}

	block := &domain.AvailabilityBlock{
		ProviderID: req.ProviderID,
		BlockDate:  req.BlockDate,
		Reason:     req.Reason,
		CreatedBy:  req.ActorID,
	}

	created, err := s.blockRepo.Create(ctx, block)
	if err != nil {
		if errors.Is(err, blockRepo.ErrBlockExists) {
			s.logger.Warn("CreateBlock: date %s already blocked for provider %s",
				req.BlockDate.Format(domain.DateFormat), req.ProviderID)
			return nil, ErrBlockExists
		}
		s.logger.Error("CreateBlock: repository error: %v", err)
		return nil, fmt.Errorf("%w: CreateBlock - repository error: %w", ErrInternal, err)
	}

	s.invalidateCache(ctx, created.ProviderID, created.BlockDate)

	s.logger.Info("CreateBlock: created block id=%d for provider %s", created.ID, created.ProviderID)
	return models.FromDomainBlock(created), nil
}

// DeleteBlock снимает блокировку даты
// Доступно только администраторам
func (s *Service) DeleteBlock(ctx context.Context, req *models.DeleteBlockRequest) error {
	s.logger.Info("DeleteBlock: block id=%d", req.BlockID)

	if domain.ActorRole(req.ActorRole) != domain.RoleAdmin {
		s.logger.Warn("DeleteBlock: access denied, admin role required")
		return ErrAccessDenied
	}

	// Блокировка читается до удаления ради инвалидации кеша нужного месяца
	block, err := s.blockRepo.GetByID(ctx, req.BlockID)
	if err != nil {
		if errors.Is(err, blockRepo.ErrBlockNotFound) {
			s.logger.Warn("DeleteBlock: block id=%d not found", req.BlockID)
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: repository error for block id=%d: %v", req.BlockID, err)
		return fmt.Errorf("%w: DeleteBlock - repository error: %w", ErrInternal, err)
	}

	if err := s.blockRepo.Delete(ctx, req.BlockID); err != nil {
		if errors.Is(err, blockRepo.ErrBlockNotFound) {
			return ErrBlockNotFound
		}
		s.logger.Error("DeleteBlock: failed to delete block id=%d: %v", req.BlockID, err)
		return fmt.Errorf("%w: DeleteBlock - failed to delete: %w", ErrInternal, err)
	}

	s.invalidateCache(ctx, block.ProviderID, block.BlockDate)

	s.logger.Info("DeleteBlock: deleted block id=%d", req.BlockID)
	return nil
}

func (s *Service) invalidateCache(ctx context.Context, providerID string, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, providerID, date); err != nil {
		s.logger.Warn("blocks: cache invalidation failed for provider %s: %v", providerID, err)
	}
}
