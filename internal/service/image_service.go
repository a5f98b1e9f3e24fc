package service

import (
	"context"
	"strings"

	"hello-ai-be/internal/dto"
	"hello-ai-be/internal/pkg/logger"
	"hello-ai-be/pkg/deepai"
	"hello-ai-be/pkg/genai"
	"hello-ai-be/pkg/unsplash"
)

const keywordSystemPrompt = "Extract 2-4 short search keywords from the user's request. " +
	"Respond with the keywords only, space separated, no punctuation, no explanation."

// KeywordExtractor distills a free-form prompt into search keywords.
// *genai.GeminiClient satisfies it.
type KeywordExtractor interface {
	GetGeminiResponse(ctx context.Context, systemPrompt string, chatHistories []*genai.ChatHistory, prompt string) (string, error)
}

// PhotoSearcher is the stock-photo search client. *unsplash.Client
// satisfies it.
type PhotoSearcher interface {
	SearchPhotos(ctx context.Context, query string, perPage int) (*unsplash.SearchResponse, error)
}

// ImageGenerator is the text-to-image client. *deepai.Client satisfies it.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*deepai.GenerateResponse, error)
}

type IImageService interface {
	Search(ctx context.Context, req *dto.SearchImagesRequest) (*dto.SearchImagesResponse, error)
	Generate(ctx context.Context, req *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error)
}

type imageService struct {
	extractor KeywordExtractor
	searcher  PhotoSearcher
	generator ImageGenerator
	logger    logger.ILogger
}

func NewImageService(
	extractor KeywordExtractor,
	searcher PhotoSearcher,
	generator ImageGenerator,
	log logger.ILogger,
) IImageService {
	return &imageService{
		extractor: extractor,
		searcher:  searcher,
		generator: generator,
		logger:    log,
	}
}

// Search turns the prompt into keywords with the model, then queries the
// photo catalogue. A failed extraction falls back to the raw prompt.
func (s *imageService) Search(ctx context.Context, req *dto.SearchImagesRequest) (*dto.SearchImagesResponse, error) {
	query := req.Query
	keywords, err := s.extractor.GetGeminiResponse(ctx, keywordSystemPrompt, nil, req.Query)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("ImageService", "Keyword extraction failed, using raw query", map[string]interface{}{
				"error": err.Error(),
			})
		}
	} else if trimmed := strings.TrimSpace(keywords); trimmed != "" {
		query = trimmed
	}

	searchRes, err := s.searcher.SearchPhotos(ctx, query, req.PerPage)
	if err != nil {
		return nil, err
	}

	res := dto.SearchImagesResponse{
		Total:   searchRes.Total,
		Results: make([]dto.ImageResult, 0, len(searchRes.Results)),
	}
	for _, photo := range searchRes.Results {
		res.Results = append(res.Results, dto.ImageResult{
			Id:          photo.Id,
			Description: photo.Description,
			Url:         photo.Urls.Regular,
			ThumbUrl:    photo.Urls.Thumb,
			Author:      photo.User.Name,
		})
	}
	return &res, nil
}

func (s *imageService) Generate(ctx context.Context, req *dto.GenerateImageRequest) (*dto.GenerateImageResponse, error) {
	generated, err := s.generator.GenerateImage(ctx, req.Prompt)
	if err != nil {
		return nil, err
	}
	return &dto.GenerateImageResponse{Url: generated.OutputUrl}, nil
}
