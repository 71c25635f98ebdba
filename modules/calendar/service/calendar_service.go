package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"schedulr-api/core/constants"
	"schedulr-api/core/errors"
	"schedulr-api/core/logger"
	"schedulr-api/core/worker"
	availEntity "schedulr-api/modules/availability/entity"
	availRepository "schedulr-api/modules/availability/repository"
	availService "schedulr-api/modules/availability/service"
	"schedulr-api/modules/calendar/dto"
	"schedulr-api/modules/calendar/entity"
	"schedulr-api/modules/calendar/repository"
)

// CalendarService mirrors external calendar busy windows into blocked
// times so the availability engine subtracts them like any other block.
type CalendarService interface {
	ListConnections(ctx context.Context, organizerID uuid.UUID) ([]dto.ConnectionResponse, *errors.AppError)
	Connect(ctx context.Context, organizerID uuid.UUID, req *dto.ConnectRequest) (*dto.ConnectionResponse, *errors.AppError)
	Disconnect(ctx context.Context, organizerID, connectionID uuid.UUID) *errors.AppError
	SyncOrganizer(ctx context.Context, organizerID uuid.UUID) ([]dto.SyncResultResponse, *errors.AppError)

	// HandleSyncTask is the asynq handler for calendar sync tasks. An empty
	// payload sweeps every sync-enabled connection.
	HandleSyncTask(ctx context.Context, payload []byte) error
}

type calendarService struct {
	repo      repository.CalendarRepository
	availRepo availRepository.AvailabilityRepository
	availSvc  availService.AvailabilityService
	fetcher   BusyFetcher
	client    *worker.Client
	now       func() time.Time
}

func NewCalendarService(
	repo repository.CalendarRepository,
	availRepo availRepository.AvailabilityRepository,
	availSvc availService.AvailabilityService,
	fetcher BusyFetcher,
	client *worker.Client,
) CalendarService {
	return &calendarService{
		repo:      repo,
		availRepo: availRepo,
		availSvc:  availSvc,
		fetcher:   fetcher,
		client:    client,
		now:       time.Now,
	}
}

func (s *calendarService) ListConnections(ctx context.Context, organizerID uuid.UUID) ([]dto.ConnectionResponse, *errors.AppError) {
	conns, err := s.repo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list calendar connections", err)
	}

	out := make([]dto.ConnectionResponse, 0, len(conns))
	for i := range conns {
		out = append(out, *dto.NewConnectionResponse(&conns[i]))
	}
	return out, nil
}

func (s *calendarService) Connect(ctx context.Context, organizerID uuid.UUID, req *dto.ConnectRequest) (*dto.ConnectionResponse, *errors.AppError) {
	if req.Provider != entity.ProviderGoogle {
		return nil, errors.NewAppError(errors.ErrValidation, "provider must be google", nil)
	}
	if req.AccessToken == "" || req.RefreshToken == "" {
		return nil, errors.NewAppError(errors.ErrValidation, "access_token and refresh_token are required", nil)
	}
	calendarID := req.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}

	created, err := s.repo.Create(ctx, &entity.CalendarConnection{
		OrganizerID:  organizerID,
		Provider:     req.Provider,
		CalendarID:   calendarID,
		AccountEmail: req.AccountEmail,
		AccessToken:  req.AccessToken,
		RefreshToken: req.RefreshToken,
		TokenExpiry:  req.TokenExpiry,
		SyncEnabled:  true,
	})
	if err != nil {
		logger.Error("CalendarService:Connect:Error", "organizer_id", organizerID, "error", err)
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to save calendar connection", err)
	}

	s.enqueueSync(created.ID)

	logger.Info("CalendarService:Connect:Success",
		"organizer_id", organizerID, "connection_id", created.ID, "calendar_id", calendarID)
	return dto.NewConnectionResponse(created), nil
}

func (s *calendarService) enqueueSync(connectionID uuid.UUID) {
	payload, err := json.Marshal(syncTask{ConnectionID: &connectionID})
	if err != nil {
		return
	}
	if err := s.client.Enqueue(constants.TaskCalendarSync, payload); err != nil {
		logger.Error("CalendarService:EnqueueSync:Error", "connection_id", connectionID, "error", err)
	}
}

func (s *calendarService) Disconnect(ctx context.Context, organizerID, connectionID uuid.UUID) *errors.AppError {
	conn, err := s.repo.GetByID(ctx, connectionID)
	if err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to load calendar connection", err)
	}
	if conn == nil || conn.OrganizerID != organizerID {
		return errors.NewAppError(errors.ErrNotFound, "Calendar connection not found", nil)
	}

	if err := s.repo.Delete(ctx, organizerID, connectionID); err != nil {
		return errors.NewAppError(errors.ErrInternalServer, "Failed to delete calendar connection", err)
	}

	// Retire the mirrored blocks once no google connection remains.
	remaining, err := s.repo.ListByOrganizer(ctx, organizerID)
	if err == nil && !hasProvider(remaining, entity.ProviderGoogle) {
		if derr := s.availRepo.DeactivateMissingExternal(ctx, organizerID, availEntity.SourceGoogleCalendar, nil); derr != nil {
			logger.Error("CalendarService:Disconnect:DeactivateError", "organizer_id", organizerID, "error", derr)
		}
		s.availSvc.InvalidateSlotCache(ctx, organizerID)
	}

	logger.Info("CalendarService:Disconnect:Success",
		"organizer_id", organizerID, "connection_id", connectionID)
	return nil
}

func hasProvider(conns []entity.CalendarConnection, provider string) bool {
	for i := range conns {
		if conns[i].Provider == provider {
			return true
		}
	}
	return false
}

func (s *calendarService) SyncOrganizer(ctx context.Context, organizerID uuid.UUID) ([]dto.SyncResultResponse, *errors.AppError) {
	conns, err := s.repo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to list calendar connections", err)
	}

	results := make([]dto.SyncResultResponse, 0, len(conns))
	for i := range conns {
		if !conns[i].SyncEnabled {
			continue
		}
		result, serr := s.syncConnection(ctx, &conns[i])
		if serr != nil {
			logger.Error("CalendarService:SyncOrganizer:SyncError",
				"connection_id", conns[i].ID, "error", serr)
			continue
		}
		results = append(results, *result)
	}
	return results, nil
}

// syncConnection pulls the provider's busy windows for the scheduling
// horizon and mirrors them into blocked_times. Entries missing upstream
// are deactivated rather than deleted.
func (s *calendarService) syncConnection(ctx context.Context, conn *entity.CalendarConnection) (*dto.SyncResultResponse, error) {
	now := s.now().UTC()
	from := now
	to := now.AddDate(0, 0, constants.DefaultHorizonDays)

	busy, rotated, err := s.fetcher.FreeBusy(ctx, conn, from, to)
	if err != nil {
		return nil, err
	}
	if rotated != nil {
		refresh := rotated.RefreshToken
		if refresh == "" {
			refresh = conn.RefreshToken
		}
		if uerr := s.repo.UpdateTokens(ctx, conn.ID, rotated.AccessToken, refresh, rotated.Expiry); uerr != nil {
			logger.Error("CalendarService:Sync:TokenPersistError", "connection_id", conn.ID, "error", uerr)
		}
	}

	seen := make([]string, 0, len(busy))
	for _, b := range busy {
		externalID := fmt.Sprintf("%s:%d", conn.CalendarID, b.Start.Unix())
		syncedAt := now
		if uerr := s.availRepo.UpsertExternalBlockedTime(ctx, &availEntity.BlockedTime{
			OrganizerID:       conn.OrganizerID,
			StartDatetime:     b.Start,
			EndDatetime:       b.End,
			Reason:            "Busy (Google Calendar)",
			Source:            availEntity.SourceGoogleCalendar,
			ExternalID:        externalID,
			ExternalUpdatedAt: &syncedAt,
		}); uerr != nil {
			return nil, fmt.Errorf("upsert blocked time: %w", uerr)
		}
		seen = append(seen, externalID)
	}

	if err := s.availRepo.DeactivateMissingExternal(ctx, conn.OrganizerID, availEntity.SourceGoogleCalendar, seen); err != nil {
		return nil, fmt.Errorf("deactivate missing entries: %w", err)
	}
	if err := s.repo.UpdateLastSynced(ctx, conn.ID, now); err != nil {
		logger.Error("CalendarService:Sync:LastSyncedError", "connection_id", conn.ID, "error", err)
	}
	s.availSvc.InvalidateSlotCache(ctx, conn.OrganizerID)

	logger.Info("CalendarService:Sync:Success",
		"connection_id", conn.ID,
		"organizer_id", conn.OrganizerID,
		"busy_intervals", len(busy),
	)
	return &dto.SyncResultResponse{
		ConnectionID:  conn.ID,
		BusyIntervals: len(busy),
		SyncedAt:      now,
	}, nil
}

type syncTask struct {
	ConnectionID *uuid.UUID `json:"connection_id,omitempty"`
}

func (s *calendarService) HandleSyncTask(ctx context.Context, payload []byte) error {
	var task syncTask
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &task); err != nil {
			return fmt.Errorf("decode sync payload: %w", err)
		}
	}

	if task.ConnectionID != nil {
		conn, err := s.repo.GetByID(ctx, *task.ConnectionID)
		if err != nil {
			return fmt.Errorf("load connection %s: %w", *task.ConnectionID, err)
		}
		if conn == nil || !conn.SyncEnabled {
			return nil
		}
		_, err = s.syncConnection(ctx, conn)
		return err
	}

	conns, err := s.repo.ListSyncEnabled(ctx)
	if err != nil {
		return fmt.Errorf("list sync-enabled connections: %w", err)
	}
	for i := range conns {
		if _, serr := s.syncConnection(ctx, &conns[i]); serr != nil {
			logger.Error("CalendarService:HandleSyncTask:SyncError",
				"connection_id", conns[i].ID, "error", serr)
		}
	}
	return nil
}
