package app

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

// TransferService persists one-shot file submissions. It holds no state
// between calls and is unrelated to any streaming session.
type TransferService struct {
	store   ports.UploadStore
	logger  ports.Logger
	emitter TransferEmitter
}

// NewTransferService creates a service writing to store. A nil emitter is allowed.
func NewTransferService(store ports.UploadStore, logger ports.Logger, emitter TransferEmitter) *TransferService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	return &TransferService{
		store:   store,
		logger:  logger,
		emitter: emitter,
	}
}

// Store validates req and writes its content, overwriting any file of the
// same name. Invalid names wrap domain.ErrInvalidFileName, a missing body
// wraps domain.ErrMissingFile; anything else is a storage failure. There is
// no retry and no partial-success reporting.
func (s *TransferService) Store(ctx context.Context, req domain.TransferRequest) (domain.TransferResult, error) {
	if err := s.validate(req); err != nil {
		s.emitter.OnTransferFailed(req.FileName, err)
		return domain.TransferResult{}, err
	}

	start := time.Now()
	obj, err := s.store.Put(ctx, req.FileName, req.Content)
	if err != nil {
		s.logger.Error("transfer failed",
			ports.String("file", req.FileName),
			ports.Err(err),
		)
		s.emitter.OnTransferFailed(req.FileName, err)
		return domain.TransferResult{}, fmt.Errorf("store %q: %w", req.FileName, err)
	}
	elapsed := time.Since(start)

	result := domain.TransferResult{
		Path:     obj.Path,
		FileName: req.FileName,
		Size:     obj.Size,
		Digest:   obj.Digest,
	}
	s.emitter.OnTransferStored(result, elapsed)
	s.logger.Info("transfer stored",
		ports.String("file", result.FileName),
		ports.String("path", result.Path),
		ports.Int64("bytes", result.Size),
		ports.Duration("elapsed", elapsed),
	)
	return result, nil
}

func (s *TransferService) validate(req domain.TransferRequest) error {
	if req.Content == nil {
		return domain.ErrMissingFile
	}
	return domain.ValidateFileName(req.FileName)
}
