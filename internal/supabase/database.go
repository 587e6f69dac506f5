package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/database"
	"bouquet-studio-backend/internal/models"
)

var ErrNotFound = errors.New("record not found")

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an existing handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDraft(row rowScanner) (*models.Draft, error) {
	var (
		draft      models.Draft
		elements   []byte
		background sql.NullString
	)
	err := row.Scan(
		&draft.ID, &draft.UserID, &draft.Title, &elements,
		&draft.Sleeve, &background, &draft.CreatedAt, &draft.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	draft.Elements = decodeElements(draft.ID, elements)
	draft.Background = background.String
	return &draft, nil
}

// decodeElements decodes the stored element list one entry at a time.
// Malformed entries are skipped so a single bad element never hides the
// draft.
func decodeElements(draftID uuid.UUID, data []byte) []canvas.Item {
	if len(data) == 0 {
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("Warning: draft %s has malformed elements: %v", draftID, err)
		return []canvas.Item{}
	}
	items := make([]canvas.Item, 0, len(raw))
	for i, r := range raw {
		var it canvas.Item
		if err := json.Unmarshal(r, &it); err != nil {
			log.Printf("Warning: skipping element %d of draft %s: %v", i, draftID, err)
			continue
		}
		items = append(items, it)
	}
	return items
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (d *DatabaseClient) CreateDraft(ctx context.Context, draft *models.Draft) (*models.Draft, error) {
	elements, err := json.Marshal(draft.Elements)
	if err != nil {
		return nil, fmt.Errorf("failed to encode draft elements: %w", err)
	}
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}

	created, err := scanDraft(d.db.QueryRowContext(ctx, database.InsertDraft,
		draft.ID, draft.UserID, draft.Title, elements, draft.Sleeve, nullString(draft.Background),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	return created, nil
}

// UpdateDraft overwrites the content of a draft. A nil title keeps the
// stored one.
func (d *DatabaseClient) UpdateDraft(ctx context.Context, draft *models.Draft, title *string) error {
	elements, err := json.Marshal(draft.Elements)
	if err != nil {
		return fmt.Errorf("failed to encode draft elements: %w", err)
	}

	var titleArg sql.NullString
	if title != nil {
		titleArg = sql.NullString{String: *title, Valid: true}
	}

	res, err := d.db.ExecContext(ctx, database.UpdateDraft,
		draft.ID, draft.UserID, elements, draft.Sleeve, nullString(draft.Background), titleArg,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}
	return expectRow(res)
}

func (d *DatabaseClient) GetDraft(ctx context.Context, draftID, userID uuid.UUID) (*models.Draft, error) {
	draft, err := scanDraft(d.db.QueryRowContext(ctx, database.SelectDraft, draftID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	return draft, nil
}

func (d *DatabaseClient) ListDrafts(ctx context.Context, userID uuid.UUID) ([]models.Draft, error) {
	rows, err := d.db.QueryContext(ctx, database.SelectDrafts, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []models.Draft{}
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		drafts = append(drafts, *draft)
	}

	return drafts, rows.Err()
}

func (d *DatabaseClient) RenameDraft(ctx context.Context, draftID, userID uuid.UUID, title string) error {
	res, err := d.db.ExecContext(ctx, database.RenameDraft, draftID, userID, title)
	if err != nil {
		return fmt.Errorf("failed to rename draft: %w", err)
	}
	return expectRow(res)
}

func (d *DatabaseClient) DeleteDraft(ctx context.Context, draftID, userID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, database.DeleteDraft, draftID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return expectRow(res)
}

func (d *DatabaseClient) CreateDesign(ctx context.Context, design *models.Design) error {
	if design.ID == uuid.Nil {
		design.ID = uuid.New()
	}
	err := d.db.QueryRowContext(ctx, database.InsertDesign,
		design.ID, design.UserID, design.DraftID, design.Title, design.ImageURL,
		design.StoragePath, design.Prompt, design.MaterialsCSV,
	).Scan(&design.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create design: %w", err)
	}
	return nil
}

func (d *DatabaseClient) ListDesigns(ctx context.Context, userID uuid.UUID) ([]models.Design, error) {
	rows, err := d.db.QueryContext(ctx, database.SelectDesigns, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	defer rows.Close()

	designs := []models.Design{}
	for rows.Next() {
		var design models.Design
		err := rows.Scan(
			&design.ID, &design.UserID, &design.DraftID, &design.Title, &design.ImageURL,
			&design.StoragePath, &design.Prompt, &design.MaterialsCSV, &design.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan design: %w", err)
		}
		designs = append(designs, design)
	}

	return designs, rows.Err()
}

// DeleteDesign removes a design and returns the deleted row so that its
// stored image can be cleaned up.
func (d *DatabaseClient) DeleteDesign(ctx context.Context, designID, userID uuid.UUID) (*models.Design, error) {
	var design models.Design
	err := d.db.QueryRowContext(ctx, database.DeleteDesign, designID, userID).Scan(
		&design.ID, &design.UserID, &design.DraftID, &design.Title, &design.ImageURL,
		&design.StoragePath, &design.Prompt, &design.MaterialsCSV, &design.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete design: %w", err)
	}

	return &design, nil
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
