package dto

type ChatQueryRequest struct {
	SessionId string `json:"session_id"`
	Query     string `json:"query" validate:"required_without=ImageRef"`
	ImageRef  string `json:"image_ref"`
}

type ChatQueryResponse struct {
	SessionId       string   `json:"session_id"`
	Text            string   `json:"text"`
	SourceDocuments []string `json:"source_documents"`
}
