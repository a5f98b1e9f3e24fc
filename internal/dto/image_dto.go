package dto

type SearchImagesRequest struct {
	Query   string `json:"query" validate:"required,min=1"`
	PerPage int    `json:"per_page"`
}

type ImageResult struct {
	Id          string `json:"id"`
	Description string `json:"description,omitempty"`
	Url         string `json:"url"`
	ThumbUrl    string `json:"thumb_url"`
	Author      string `json:"author,omitempty"`
}

type SearchImagesResponse struct {
	Total   int           `json:"total"`
	Results []ImageResult `json:"results"`
}

type GenerateImageRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1"`
}

type GenerateImageResponse struct {
	Url string `json:"url"`
}
