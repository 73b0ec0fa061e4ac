package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "marketplace-backend/internal/errors"
	"marketplace-backend/internal/logger"
	"marketplace-backend/internal/repository"
	"marketplace-backend/internal/search"
)

// Search message policies applied when the AI filters match nothing
const (
	MessagePolicyKeepAI        = "keep_ai"
	MessagePolicyAlwaysGeneric = "always_generic"
)

const (
	foundMessage      = "Aqui está o que encontrei para você!"
	noExactMatch      = "Não achei com os filtros da IA... Mas veja se é um destes:"
	notUnderstoodTmpl = "Desculpe, não consegui entender a busca. Fiz uma busca ampla por '%s'."
)

// AISearchResponse is the result of a natural-language search
type AISearchResponse struct {
	Products        []ProductResponse    `json:"products"`
	FriendlyMessage string               `json:"friendlyMessage"`
	ResolvedFilters search.SearchFilters `json:"resolvedFilters"`
	Fallback        bool                 `json:"fallback"`
}

// SearchService runs manual and AI-assisted product searches
type SearchService struct {
	products   repository.ProductRepositoryInterface
	translator Translator
	timeout    time.Duration
	policy     string
}

// NewSearchService creates a new search service. An unknown policy means keep_ai.
func NewSearchService(products repository.ProductRepositoryInterface, translator Translator, timeout time.Duration, policy string) *SearchService {
	if policy != MessagePolicyAlwaysGeneric {
		policy = MessagePolicyKeepAI
	}
	return &SearchService{
		products:   products,
		translator: translator,
		timeout:    timeout,
		policy:     policy,
	}
}

// ManualSearch returns the visible products matching filters
func (s *SearchService) ManualSearch(ctx context.Context, filters search.SearchFilters) ([]ProductResponse, error) {
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return nil, apperrors.ErrInvalidPriceRange
	}

	products, err := s.products.Find(ctx, search.Build(filters))
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return toProductResponses(products), nil
}

// NaturalLanguageSearch translates query into filters and runs them. When the
// translator fails or its filters match nothing, a lexical search over name,
// description and category is run instead. Translator failures are never returned.
func (s *SearchService) NaturalLanguageSearch(ctx context.Context, query string) (*AISearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrEmptySearchQuery
	}
	log := logger.WithContext(ctx).WithField("query", query)

	translation, err := s.translate(ctx, query)
	if err != nil {
		log.WithField("error", err.Error()).Warn("translator unavailable, falling back to lexical search")
		return s.fallback(ctx, fmt.Sprintf(notUnderstoodTmpl, query), query)
	}

	q := search.Build(translation.Filters)
	products, err := s.products.Find(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	aiMessage := strings.TrimSpace(translation.FriendlyMessage)
	if len(products) > 0 {
		if aiMessage == "" {
			aiMessage = foundMessage
		}
		return &AISearchResponse{
			Products:        toProductResponses(products),
			FriendlyMessage: aiMessage,
			ResolvedFilters: search.Describe(q),
		}, nil
	}

	log.Debug("AI filters matched nothing, falling back to lexical search")
	message := aiMessage
	if s.policy == MessagePolicyAlwaysGeneric || message == "" {
		message = noExactMatch
	}

	var terms []string
	if name := search.Describe(q).Name; name != nil && !strings.EqualFold(*name, query) {
		terms = append(terms, *name)
	}
	terms = append(terms, query)
	return s.fallback(ctx, message, terms...)
}

// translate calls the translator under its own deadline. A panic inside the
// translator is reported as an error.
func (s *SearchService) translate(ctx context.Context, query string) (*Translation, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	type result struct {
		translation *Translation
		err         error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: apperrors.NewUpstreamUnavailableError(translatorService, fmt.Errorf("translator panic: %v", r))}
			}
		}()
		translation, err := s.translator.Translate(ctx, query)
		if err == nil && translation == nil {
			err = fmt.Errorf("translator returned no result")
		}
		done <- result{translation: translation, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, apperrors.NewUpstreamUnavailableError(translatorService, ctx.Err())
	case r := <-done:
		if r.err != nil && !apperrors.IsUpstreamUnavailable(r.err) {
			return nil, apperrors.NewUpstreamUnavailableError(translatorService, r.err)
		}
		return r.translation, r.err
	}
}

// fallback tries each term lexically and returns the first non-empty result
func (s *SearchService) fallback(ctx context.Context, message string, terms ...string) (*AISearchResponse, error) {
	resp := &AISearchResponse{
		Products:        []ProductResponse{},
		FriendlyMessage: message,
		Fallback:        true,
	}

	for _, term := range terms {
		products, err := s.products.Find(ctx, search.Query{Where: search.Lexical(term)})
		if err != nil {
			return nil, fmt.Errorf("failed to run fallback search: %w", err)
		}
		used := term
		resp.ResolvedFilters = search.SearchFilters{Name: &used}
		if len(products) > 0 {
			resp.Products = toProductResponses(products)
			break
		}
	}
	return resp, nil
}
