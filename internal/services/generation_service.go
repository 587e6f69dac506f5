package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"bouquet-studio-backend/internal/editor"
	"bouquet-studio-backend/internal/flux"
	"bouquet-studio-backend/internal/models"
	"bouquet-studio-backend/internal/prompt"
	"bouquet-studio-backend/internal/supabase"
)

// Stage names one step of a generation run.
type Stage string

const (
	StageRasterize Stage = "rasterize"
	StageGenerate  Stage = "generate"
	StageDownload  Stage = "download"
	StageUpload    Stage = "upload"
	StagePersist   Stage = "persist"
)

// GenerationError reports the step a generation run failed in.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s step failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// UserMessage returns the message shown to the user for a failed run.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotAuthenticated):
		return "Bitte melde dich an, um ein Bild zu generieren."
	case errors.Is(err, ErrDraftRequired):
		return "Bitte speichere zuerst einen Entwurf."
	case errors.Is(err, flux.ErrPollingExhausted):
		return "Die Generierung hat zu lange gedauert. Bitte versuche es erneut."
	case errors.Is(err, flux.ErrGenerationFailed):
		return "Die Generierung ist fehlgeschlagen."
	case errors.Is(err, flux.ErrSubmitFailed):
		return "Die Generierung konnte nicht gestartet werden."
	case errors.Is(err, flux.ErrMissingResult):
		return "Die Generierung hat kein Bild geliefert."
	}

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		return "Unbekannter Fehler."
	}
	switch genErr.Stage {
	case StageRasterize:
		return "Export der Leinwand fehlgeschlagen."
	case StageGenerate:
		return "Die Generierung konnte nicht abgeschlossen werden."
	case StageDownload:
		return "Bild konnte nicht abgerufen werden"
	case StageUpload:
		return "Upload fehlgeschlagen"
	default:
		return "Speichern fehlgeschlagen."
	}
}

type GenerationService struct {
	rasterizer Rasterizer
	generator  ImageGenerator
	objects    ObjectStore
	designs    DesignStore
	events     EventPublisher
}

func NewGenerationService(
	rasterizer Rasterizer,
	generator ImageGenerator,
	objects ObjectStore,
	designs DesignStore,
	events EventPublisher,
) *GenerationService {
	return &GenerationService{
		rasterizer: rasterizer,
		generator:  generator,
		objects:    objects,
		designs:    designs,
		events:     events,
	}
}

// Generate renders the snapshot, sends it with the assembled prompt to the
// image model and stores the result as a new design. No design row is
// written unless every step succeeds.
func (s *GenerationService) Generate(ctx context.Context, snap editor.Snapshot) (design *models.Design, err error) {
	userID, err := parseUser(snap.UserID)
	if err != nil {
		generationsTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if snap.DraftID == uuid.Nil {
		generationsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrDraftRequired
	}

	start := time.Now()
	s.publish(ctx, userID, supabase.EventGenerationStarted, supabase.GenerationStartedPayload(snap.DraftID))
	defer func() {
		if err != nil {
			var genErr *GenerationError
			stage := "unknown"
			if errors.As(err, &genErr) {
				stage = string(genErr.Stage)
			}
			generationsTotal.WithLabelValues("failed_" + stage).Inc()
			log.Printf("Generation for draft %s failed: %v", snap.DraftID, err)
			s.publish(context.WithoutCancel(ctx), userID, supabase.EventGenerationFailed,
				supabase.GenerationFailedPayload(snap.DraftID, stage, UserMessage(err)))
			return
		}
		generationsTotal.WithLabelValues("completed").Inc()
		generationDuration.Observe(time.Since(start).Seconds())
		s.publish(ctx, userID, supabase.EventGenerationCompleted,
			supabase.GenerationCompletedPayload(snap.DraftID, design.ID, design.ImageURL))
	}()

	png, err := s.rasterizer.Rasterize(ctx, snap.Items)
	if err != nil {
		return nil, &GenerationError{Stage: StageRasterize, Err: err}
	}

	text := prompt.Build(snap.Items, snap.BackgroundSnippet)
	materials := prompt.Materials(snap.Items)

	ref, err := s.generator.Generate(ctx, png, text)
	if err != nil {
		return nil, &GenerationError{Stage: StageGenerate, Err: err}
	}

	image, err := s.generator.Download(ctx, ref)
	if err != nil {
		return nil, &GenerationError{Stage: StageDownload, Err: err}
	}

	contentType := http.DetectContentType(image)
	key, err := s.objects.Upload(ctx, userID, image, contentType)
	if err != nil {
		return nil, &GenerationError{Stage: StageUpload, Err: err}
	}

	title := snap.DraftTitle
	if title == "" {
		title = models.UntitledDraft
	}
	design = &models.Design{
		UserID:       userID,
		DraftID:      uuid.NullUUID{UUID: snap.DraftID, Valid: true},
		Title:        title,
		ImageURL:     s.objects.PublicURL(key),
		StoragePath:  key,
		Prompt:       text,
		MaterialsCSV: materials,
	}
	if err := s.designs.CreateDesign(ctx, design); err != nil {
		if delErr := s.objects.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			log.Printf("Failed to remove orphaned design image %s: %v", key, delErr)
		}
		return nil, &GenerationError{Stage: StagePersist, Err: err}
	}

	log.Printf("Design %s created for draft %s", design.ID, snap.DraftID)
	return design, nil
}

func (s *GenerationService) publish(ctx context.Context, userID uuid.UUID, event string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishUserEvent(ctx, userID, event, payload); err != nil {
		log.Printf("Failed to publish %s event: %v", event, err)
	}
}
