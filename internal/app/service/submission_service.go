package service

import (
	"context"
	"fmt"
	"log/slog"

	"gradebox/internal/assets"
	"gradebox/internal/common"
	"gradebox/internal/domain/model"
	"gradebox/internal/domain/repository"

	"github.com/google/uuid"
)

const maxSourceBytes = 256 * 1024

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	userRepo       repository.UserRepository
	assets         *assets.Store
	logger         *slog.Logger
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	userRepo repository.UserRepository,
	assetStore *assets.Store,
	logger *slog.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		userRepo:       userRepo,
		assets:         assetStore,
		logger:         logger,
	}
}

type CreateSubmissionRequest struct {
	ProblemID string `json:"problem_id"`
	Language  string `json:"language"`
	Source    string `json:"source"`
}

// Enqueue stores the source on disk, snapshots the problem's max score and
// the submitter's display name, and inserts a queued row. It returns without
// waiting for judging; a judge worker picks the row up through the store.
func (s *SubmissionService) Enqueue(ctx context.Context, userID string, req CreateSubmissionRequest) (*model.Submission, error) {
	if req.Source == "" {
		return nil, common.Errorf("source is required: %w", common.ErrBadRequest)
	}
	if len(req.Source) > maxSourceBytes {
		return nil, common.Errorf("source exceeds %d bytes: %w", maxSourceBytes, common.ErrBadRequest)
	}
	language := model.Language(req.Language)
	if !language.Valid() {
		return nil, common.Errorf("unsupported language %q: %w", req.Language, common.ErrBadRequest)
	}

	problem, err := s.problemRepo.FindByID(ctx, req.ProblemID)
	if err != nil {
		return nil, common.Errorf("problem not found: %w", err)
	}
	if problem.TestcaseCount == 0 {
		return nil, common.Errorf("problem has no test cases yet: %w", common.ErrConflict)
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, common.Errorf("user not found: %w", err)
	}

	sub := &model.Submission{
		ID:        uuid.NewString(),
		ProblemID: problem.ID,
		UserID:    user.ID,
		UserName:  user.DisplayName,
		Language:  language,
		Status:    model.StatusQueued,
		MaxScore:  problem.MaxScore,
	}

	sourcePath, err := s.assets.SaveSource(sub.ID, language.SourceFilename(), []byte(req.Source))
	if err != nil {
		return nil, fmt.Errorf("failed to store source: %w", err)
	}
	sub.SourcePath = sourcePath

	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	s.logger.Info("submission enqueued", "submission_id", sub.ID,
		"problem_id", problem.ID, "user_id", user.ID, "language", language)
	return sub, nil
}

// RequestRerun pushes a terminal submission back into the queue, clearing its
// previous judging fields. Asking again while it is still queued is a no-op;
// a running pass is never interrupted.
func (s *SubmissionService) RequestRerun(ctx context.Context, id string) error {
	if err := s.submissionRepo.ResetForRerun(ctx, id); err != nil {
		return err
	}
	s.logger.Info("submission requeued for rerun", "submission_id", id)
	return nil
}

func (s *SubmissionService) Get(ctx context.Context, id string) (*model.Submission, error) {
	return s.submissionRepo.FindByID(ctx, id)
}

func (s *SubmissionService) ListMine(ctx context.Context, userID string, limit, offset int) ([]model.Submission, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.submissionRepo.ListByUser(ctx, userID, limit, offset)
}
