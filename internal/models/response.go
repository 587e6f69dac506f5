package models

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
}

type KeyResponse struct {
	Removed string `json:"removed,omitempty"`
}

type DraftListResponse struct {
	Drafts []Draft `json:"drafts"`
}

type DesignListResponse struct {
	Designs []Design `json:"designs"`
}

type GenerateResponse struct {
	Design *Design `json:"design"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
