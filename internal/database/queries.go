package database

// Draft queries. Every statement is scoped by user_id.
const (
	InsertDraft = `
		INSERT INTO user_drafts (id, user_id, title, elements, sleeve, background)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, title, elements, sleeve, background, created_at, updated_at`

	// $6 is the title override; NULL keeps the stored title.
	UpdateDraft = `
		UPDATE user_drafts
		SET elements = $3, sleeve = $4, background = $5, title = COALESCE($6, title)
		WHERE id = $1 AND user_id = $2`

	SelectDraft = `
		SELECT id, user_id, title, elements, sleeve, background, created_at, updated_at
		FROM user_drafts
		WHERE id = $1 AND user_id = $2`

	SelectDrafts = `
		SELECT id, user_id, title, elements, sleeve, background, created_at, updated_at
		FROM user_drafts
		WHERE user_id = $1
		ORDER BY updated_at DESC`

	RenameDraft = `
		UPDATE user_drafts
		SET title = $3
		WHERE id = $1 AND user_id = $2`

	DeleteDraft = `
		DELETE FROM user_drafts
		WHERE id = $1 AND user_id = $2`
)

// Design queries.
const (
	InsertDesign = `
		INSERT INTO user_designs (id, user_id, draft_id, title, image_url, storage_path, prompt, materials_csv)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	SelectDesigns = `
		SELECT id, user_id, draft_id, title, image_url, storage_path, prompt, materials_csv, created_at
		FROM user_designs
		WHERE user_id = $1
		ORDER BY created_at DESC`

	DeleteDesign = `
		DELETE FROM user_designs
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, draft_id, title, image_url, storage_path, prompt, materials_csv, created_at`
)
