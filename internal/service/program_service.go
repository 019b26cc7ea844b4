package service

import (
	"context"
	"errors"
	"time"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProgramNotFound    = errors.New("program not found")
	ErrProgramNotTemplate = errors.New("program is not a template")
	ErrProgramInUse       = errors.New("program is assigned to a client and cannot be deleted")
)

type ProgramService interface {
	CreateProgram(ctx context.Context, program *domain.Program) (*domain.Program, error)
	GetProgram(ctx context.Context, id, gymID primitive.ObjectID) (*domain.Program, error)
	ListPrograms(ctx context.Context, gymID primitive.ObjectID, templatesOnly bool) ([]domain.Program, error)
	UpdateProgram(ctx context.Context, program *domain.Program) error
	DeleteProgram(ctx context.Context, id, gymID primitive.ObjectID) error

	// AssignProgram deep-copies a template into a client-owned program and
	// resets the client's progression pointer to the start.
	AssignProgram(ctx context.Context, templateID, clientID, gymID, assignedBy primitive.ObjectID) (*domain.Program, error)
	UnassignProgram(ctx context.Context, clientID, gymID primitive.ObjectID) error
}

type programService struct {
	programRepo repository.ProgramRepository
	clientRepo  repository.ClientRepository
}

func NewProgramService(programRepo repository.ProgramRepository, clientRepo repository.ClientRepository) ProgramService {
	return &programService{
		programRepo: programRepo,
		clientRepo:  clientRepo,
	}
}

func (s *programService) CreateProgram(ctx context.Context, program *domain.Program) (*domain.Program, error) {
	if program.Name == "" || program.GymID.IsZero() {
		return nil, errors.New("program name and gym are required")
	}
	if err := validateBlocks(program.Blocks); err != nil {
		return nil, err
	}

	id, err := s.programRepo.Create(ctx, program)
	if err != nil {
		return nil, err
	}
	program.ID = id
	return program, nil
}

func (s *programService) GetProgram(ctx context.Context, id, gymID primitive.ObjectID) (*domain.Program, error) {
	program, err := s.programRepo.GetByID(ctx, id, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, err
	}
	return program, nil
}

func (s *programService) ListPrograms(ctx context.Context, gymID primitive.ObjectID, templatesOnly bool) ([]domain.Program, error) {
	return s.programRepo.GetByGym(ctx, gymID, templatesOnly)
}

// UpdateProgram saves a structural edit. Clients whose pointer now falls past
// the new shape are not touched; the stale pointer surfaces as an
// out-of-bounds error when their workout is next read.
func (s *programService) UpdateProgram(ctx context.Context, program *domain.Program) error {
	if program.Name == "" {
		return errors.New("program name is required")
	}
	if err := validateBlocks(program.Blocks); err != nil {
		return err
	}
	err := s.programRepo.Update(ctx, program)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProgramNotFound
	}
	return err
}

func (s *programService) DeleteProgram(ctx context.Context, id, gymID primitive.ObjectID) error {
	program, err := s.GetProgram(ctx, id, gymID)
	if err != nil {
		return err
	}
	if program.ClientID != nil {
		return ErrProgramInUse
	}
	err = s.programRepo.Delete(ctx, id, gymID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProgramNotFound
	}
	return err
}

// AssignProgram clones the template for the client. The copy gets fresh
// activity IDs, references the template it came from, and the client's
// pointer is reset to block 0, week 0 with the start date stamped.
func (s *programService) AssignProgram(ctx context.Context, templateID, clientID, gymID, assignedBy primitive.ObjectID) (*domain.Program, error) {
	template, err := s.GetProgram(ctx, templateID, gymID)
	if err != nil {
		return nil, err
	}
	if !template.IsTemplate {
		return nil, ErrProgramNotTemplate
	}

	client, err := s.clientRepo.GetByIDOrUserID(ctx, clientID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}

	assigned := &domain.Program{
		GymID:      gymID,
		Name:       template.Name,
		Blocks:     domain.DeepCopyBlocks(template.Blocks),
		IsTemplate: false,
		TemplateID: &template.ID,
		ClientID:   &client.ID,
		CreatedBy:  assignedBy,
	}
	programID, err := s.programRepo.Create(ctx, assigned)
	if err != nil {
		return nil, err
	}
	assigned.ID = programID

	if err := s.clientRepo.SetProgram(ctx, client.ID, &programID, assigned.CreatedAt); err != nil {
		return nil, err
	}
	return assigned, nil
}

// UnassignProgram clears the client's program reference and pointer.
func (s *programService) UnassignProgram(ctx context.Context, clientID, gymID primitive.ObjectID) error {
	client, err := s.clientRepo.GetByIDOrUserID(ctx, clientID, gymID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	// The client-owned program copy is kept so session history pinned to it
	// still resolves.
	return s.clientRepo.SetProgram(ctx, client.ID, nil, time.Now().UTC())
}

// validateBlocks rejects structurally broken programs at write time: every
// block needs at least one week so the progression odometer has a radix.
func validateBlocks(blocks []domain.Block) error {
	for _, block := range blocks {
		if len(block.Weeks) == 0 {
			return errors.New("every block must contain at least one week")
		}
		for _, week := range block.Weeks {
			if len(week.Days) == 0 {
				return errors.New("every week must contain at least one day")
			}
		}
	}
	return nil
}
