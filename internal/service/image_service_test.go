package service

import (
	"context"
	"errors"
	"testing"

	"hello-ai-be/internal/dto"
	"hello-ai-be/pkg/deepai"
	"hello-ai-be/pkg/genai"
	"hello-ai-be/pkg/unsplash"

	"github.com/stretchr/testify/assert"
)

type fakeExtractor struct {
	keywords  string
	err       error
	gotPrompt string
	gotSystem string
}

func (f *fakeExtractor) GetGeminiResponse(ctx context.Context, systemPrompt string, chatHistories []*genai.ChatHistory, prompt string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotPrompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.keywords, nil
}

type fakeSearcher struct {
	response   *unsplash.SearchResponse
	err        error
	gotQuery   string
	gotPerPage int
}

func (f *fakeSearcher) SearchPhotos(ctx context.Context, query string, perPage int) (*unsplash.SearchResponse, error) {
	f.gotQuery = query
	f.gotPerPage = perPage
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeImageGenerator struct {
	response  *deepai.GenerateResponse
	err       error
	gotPrompt string
}

func (f *fakeImageGenerator) GenerateImage(ctx context.Context, prompt string) (*deepai.GenerateResponse, error) {
	f.gotPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func catalogueOf(photos ...unsplash.Photo) *unsplash.SearchResponse {
	return &unsplash.SearchResponse{Total: len(photos), Results: photos}
}

func TestSearchUsesExtractedKeywords(t *testing.T) {
	extractor := &fakeExtractor{keywords: "sunset beach"}
	searcher := &fakeSearcher{response: catalogueOf(unsplash.Photo{Id: "p1"})}
	service := NewImageService(extractor, searcher, &fakeImageGenerator{}, nil)

	res, err := service.Search(context.Background(), &dto.SearchImagesRequest{
		Query:   "show me a beautiful sunset at the beach please",
		PerPage: 12,
	})

	assert.NoError(t, err)
	assert.Equal(t, "show me a beautiful sunset at the beach please", extractor.gotPrompt)
	assert.Equal(t, "sunset beach", searcher.gotQuery)
	assert.Equal(t, 12, searcher.gotPerPage)
	assert.Equal(t, 1, res.Total)
}

func TestSearchFallsBackToRawQueryOnExtractorError(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("model unavailable")}
	searcher := &fakeSearcher{response: catalogueOf()}
	service := NewImageService(extractor, searcher, &fakeImageGenerator{}, nil)

	_, err := service.Search(context.Background(), &dto.SearchImagesRequest{Query: "red pandas"})

	assert.NoError(t, err)
	assert.Equal(t, "red pandas", searcher.gotQuery)
}

func TestSearchFallsBackToRawQueryOnBlankKeywords(t *testing.T) {
	extractor := &fakeExtractor{keywords: "   "}
	searcher := &fakeSearcher{response: catalogueOf()}
	service := NewImageService(extractor, searcher, &fakeImageGenerator{}, nil)

	_, err := service.Search(context.Background(), &dto.SearchImagesRequest{Query: "red pandas"})

	assert.NoError(t, err)
	assert.Equal(t, "red pandas", searcher.gotQuery)
}

func TestSearchMapsPhotoFields(t *testing.T) {
	photo := unsplash.Photo{Id: "abc", Description: "a cat"}
	photo.Urls.Regular = "https://img.example/abc"
	photo.Urls.Thumb = "https://img.example/abc-thumb"
	photo.User.Name = "Jane Doe"

	extractor := &fakeExtractor{keywords: "cat"}
	searcher := &fakeSearcher{response: catalogueOf(photo)}
	service := NewImageService(extractor, searcher, &fakeImageGenerator{}, nil)

	res, err := service.Search(context.Background(), &dto.SearchImagesRequest{Query: "cat"})

	assert.NoError(t, err)
	assert.Len(t, res.Results, 1)
	assert.Equal(t, "abc", res.Results[0].Id)
	assert.Equal(t, "a cat", res.Results[0].Description)
	assert.Equal(t, "https://img.example/abc", res.Results[0].Url)
	assert.Equal(t, "https://img.example/abc-thumb", res.Results[0].ThumbUrl)
	assert.Equal(t, "Jane Doe", res.Results[0].Author)
}

func TestSearchPropagatesSearcherError(t *testing.T) {
	extractor := &fakeExtractor{keywords: "cat"}
	searcher := &fakeSearcher{err: errors.New("rate limited")}
	service := NewImageService(extractor, searcher, &fakeImageGenerator{}, nil)

	_, err := service.Search(context.Background(), &dto.SearchImagesRequest{Query: "cat"})

	assert.ErrorContains(t, err, "rate limited")
}

func TestGenerateReturnsOutputUrl(t *testing.T) {
	generator := &fakeImageGenerator{response: &deepai.GenerateResponse{Id: "g1", OutputUrl: "https://img.example/generated.png"}}
	service := NewImageService(&fakeExtractor{}, &fakeSearcher{}, generator, nil)

	res, err := service.Generate(context.Background(), &dto.GenerateImageRequest{Prompt: "a castle in the clouds"})

	assert.NoError(t, err)
	assert.Equal(t, "a castle in the clouds", generator.gotPrompt)
	assert.Equal(t, "https://img.example/generated.png", res.Url)
}

func TestGeneratePropagatesError(t *testing.T) {
	generator := &fakeImageGenerator{err: errors.New("quota exceeded")}
	service := NewImageService(&fakeExtractor{}, &fakeSearcher{}, generator, nil)

	_, err := service.Generate(context.Background(), &dto.GenerateImageRequest{Prompt: "anything"})

	assert.ErrorContains(t, err, "quota exceeded")
}
