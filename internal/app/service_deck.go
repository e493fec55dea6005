package app

import (
	"context"
	"net/http"
	"strings"

	"docgen/api/internal/export"
	"docgen/api/internal/vector"
)

// DeckPreview is the HTML rendering of a planned deck.
type DeckPreview struct {
	HTMLPreview string `json:"htmlPreview"`
	NumSlides   int    `json:"numSlides"`
	TextCount   int    `json:"textCount"`
	ImageCount  int    `json:"imageCount"`
}

type deckPlan struct {
	deck       export.Deck
	textCount  int
	imageCount int
}

// planDeck pulls passages and images for query and lays out the slides. Text is required; images are optional.
func (s *Service) planDeck(ctx context.Context, numSlides int, query string) (deckPlan, error) {
	if numSlides <= 0 || strings.TrimSpace(query) == "" {
		return deckPlan{}, validationError("Number of slides and query are required")
	}
	if s.content == nil {
		return deckPlan{}, domainError(http.StatusServiceUnavailable, "CONTEXT_UNAVAILABLE", "Failed to connect to Pinecone service for text data", vector.ErrUnavailable.Error())
	}
	topK := vector.TopK(numSlides)

	passages, err := s.content.Passages(ctx, query, topK)
	if err != nil {
		s.logger.Warn().Err(err).Msg("deck text retrieval failed")
		s.metrics.Degraded("deck_text")
		return deckPlan{}, domainError(http.StatusServiceUnavailable, "CONTEXT_UNAVAILABLE", "Failed to connect to Pinecone service for text data", err.Error())
	}
	texts := make([]export.DeckText, 0, len(passages))
	for _, p := range passages {
		if body := strings.TrimSpace(p.Body()); body != "" {
			texts = append(texts, export.DeckText{Title: p.Title, Body: body})
		}
	}
	if len(texts) == 0 {
		return deckPlan{}, domainError(http.StatusNotFound, "NOT_FOUND", "No text content found in Pinecone database for your query", nil)
	}

	var urls []string
	images, err := s.content.Images(ctx, query, topK)
	if err != nil {
		s.logger.Warn().Err(err).Msg("deck image retrieval failed, continuing without images")
		s.metrics.Degraded("deck_images")
	}
	for _, img := range images {
		urls = append(urls, img.URL())
	}

	return deckPlan{
		deck:       export.PlanDeck(numSlides, texts, urls, s.now()),
		textCount:  len(texts),
		imageCount: len(images),
	}, nil
}

func (s *Service) Presentation(ctx context.Context, numSlides int, query string) (*export.Result, error) {
	plan, err := s.planDeck(ctx, numSlides, query)
	if err != nil {
		return nil, err
	}
	s.logger.Info().Int("slides", len(plan.deck.Slides)).Int("texts", plan.textCount).Int("images", plan.imageCount).Msg("presentation planned")
	return s.exporter.Presentation(ctx, plan.deck)
}

func (s *Service) PreviewPresentation(ctx context.Context, numSlides int, query string) (DeckPreview, error) {
	plan, err := s.planDeck(ctx, numSlides, query)
	if err != nil {
		return DeckPreview{}, err
	}
	return DeckPreview{
		HTMLPreview: plan.deck.PreviewHTML(),
		NumSlides:   len(plan.deck.Slides),
		TextCount:   plan.textCount,
		ImageCount:  plan.imageCount,
	}, nil
}
