package services

import (
	"context"
	"log"

	"github.com/google/uuid"

	"bouquet-studio-backend/internal/models"
)

type DesignService struct {
	designs DesignStore
	objects ObjectStore
}

func NewDesignService(designs DesignStore, objects ObjectStore) *DesignService {
	return &DesignService{designs: designs, objects: objects}
}

func (s *DesignService) List(ctx context.Context, userID string) ([]models.Design, error) {
	uid, err := parseUser(userID)
	if err != nil {
		return nil, err
	}
	return s.designs.ListDesigns(ctx, uid)
}

// Delete removes the design row and then its image. A failed image delete
// is logged and otherwise ignored.
func (s *DesignService) Delete(ctx context.Context, userID string, designID uuid.UUID) error {
	uid, err := parseUser(userID)
	if err != nil {
		return err
	}
	design, err := s.designs.DeleteDesign(ctx, designID, uid)
	if err != nil {
		return err
	}
	if design.StoragePath != "" {
		if err := s.objects.Delete(ctx, design.StoragePath); err != nil {
			log.Printf("Failed to delete image %s of design %s: %v", design.StoragePath, designID, err)
		}
	}
	return nil
}
