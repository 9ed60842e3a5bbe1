package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/alanyoungcy/polyresolver/internal/domain"
)

// UniverseSource serves the shared market-universe snapshot.
type UniverseSource interface {
	Get(ctx context.Context, forceRefresh bool) ([]domain.MarketRecord, error)
}

// Engine is the resolution cascade orchestrator. It owns the universe cache,
// the conversation store, the clock, and the provider, and is the single
// entry point the chat/API layer consumes.
type Engine struct {
	provider domain.MarketDataProvider
	universe UniverseSource
	contexts domain.ConversationStore
	hydrator *Hydrator
	clock    domain.Clock
	logger   *slog.Logger

	minSimilarity float64
}

// EngineConfig bundles the Engine's dependencies and tuning knobs.
type EngineConfig struct {
	Provider domain.MarketDataProvider
	Universe UniverseSource
	Contexts domain.ConversationStore
	Clock    domain.Clock
	Logger   *slog.Logger
	// MinSimilarity gates the free-text and search-fallback stages; zero
	// means DefaultMinSimilarity.
	MinSimilarity float64
}

// NewEngine creates an Engine with all required dependencies.
func NewEngine(cfg EngineConfig) *Engine {
	minSim := cfg.MinSimilarity
	if minSim == 0 {
		minSim = DefaultMinSimilarity
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		provider:      cfg.Provider,
		universe:      cfg.Universe,
		contexts:      cfg.Contexts,
		hydrator:      NewHydrator(cfg.Provider, logger),
		clock:         cfg.Clock,
		logger:        logger,
		minSimilarity: minSim,
	}
}

// resolveState carries per-invocation scratch across cascade stages: the
// parsed hints, the universe snapshot, and memoized remote lookups so that
// several stages probing the same slug cost one round-trip.
type resolveState struct {
	intent domain.ResolutionIntent
	hints  domain.ReferenceHints

	universe       []domain.MarketRecord
	universeLoaded bool

	events      map[string]*domain.EventRecord
	slugFetches map[string]*domain.MarketRecord
}

// loadUniverse fetches the universe snapshot once per resolution. Its error
// is the only provider failure that aborts the cascade, and only when the
// cache has never been populated.
func (e *Engine) loadUniverse(ctx context.Context, st *resolveState) ([]domain.MarketRecord, error) {
	if st.universeLoaded {
		return st.universe, nil
	}
	markets, err := e.universe.Get(ctx, false)
	if err != nil {
		return nil, err
	}
	st.universe = markets
	st.universeLoaded = true
	return markets, nil
}

// event fetches the parent event for a slug, memoized per resolution. A miss
// or provider failure is cached as nil so repeat probes are free.
func (e *Engine) event(ctx context.Context, st *resolveState, slug string) *domain.EventRecord {
	if ev, ok := st.events[slug]; ok {
		return ev
	}
	ev, err := e.provider.FetchEventBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			e.logger.DebugContext(ctx, "resolver: event lookup failed",
				slog.String("slug", slug),
				slog.String("error", err.Error()),
			)
		}
		st.events[slug] = nil
		return nil
	}
	st.events[slug] = &ev
	return &ev
}

// marketBySlug fetches a market by exact slug, memoized per resolution.
func (e *Engine) marketBySlug(ctx context.Context, st *resolveState, slug string) *domain.MarketRecord {
	if m, ok := st.slugFetches[slug]; ok {
		return m
	}
	m, err := e.provider.FetchMarketBySlug(ctx, slug)
	if err != nil {
		st.slugFetches[slug] = nil
		return nil
	}
	st.slugFetches[slug] = &m
	return &m
}

// Resolve runs the identification cascade over the intent and returns the
// first confident match, hydrated, or (nil, nil) when every stage comes up
// empty. The only returned error is an initial universe-population failure.
func (e *Engine) Resolve(ctx context.Context, intent domain.ResolutionIntent) (*domain.ResolvedMarket, error) {
	if intent.PolymarketUser != "" && !common.IsHexAddress(intent.PolymarketUser) {
		e.logger.WarnContext(ctx, "resolver: ignoring malformed wallet address",
			slog.String("wallet", intent.PolymarketUser),
		)
		intent.PolymarketUser = ""
	}

	st := &resolveState{
		intent:      intent,
		hints:       deriveHints(intent),
		events:      make(map[string]*domain.EventRecord),
		slugFetches: make(map[string]*domain.MarketRecord),
	}

	stages := []struct {
		name string
		run  func(context.Context, *resolveState) (*domain.ResolvedMarket, error)
	}{
		{"context", e.stageContext},
		{"marketId", e.stageDirectID},
		{"marketSlug", e.stageMarketSlug},
		{"slug", e.stageSlug},
		{"token", e.stageToken},
		{"similarity", e.stageSimilarity},
		{"search", e.stageSearch},
	}

	for _, s := range stages {
		res, err := s.run(ctx, st)
		if err != nil {
			return nil, err
		}
		if res != nil {
			res.Market = e.hydrator.Hydrate(ctx, res.Market)
			e.logger.DebugContext(ctx, "resolver: matched",
				slog.String("stage", s.name),
				slog.String("market_id", res.Market.ID),
				slog.Float64("similarity", res.Similarity),
			)
			return res, nil
		}
	}

	e.logger.DebugContext(ctx, "resolver: no match",
		slog.String("hint_type", string(st.hints.Type)),
	)
	return nil, nil
}

// ResolveConversation is the conversational entry point: it feeds any stored
// context into the intent, resolves, and persists the outcome under the given
// context id, generating one when the caller supplied none. The returned id
// is the key for follow-up turns.
func (e *Engine) ResolveConversation(ctx context.Context, contextID string, intent domain.ResolutionIntent) (*domain.ResolvedMarket, string, error) {
	var prior domain.ConversationContext
	if contextID != "" {
		if cc, err := e.contexts.Get(ctx, contextID); err == nil {
			prior = cc
			if cc.MatchedMarket != nil && intent.ExistingMarket == nil {
				intent.ExistingMarket = cc.MatchedMarket
			}
		}
	}

	res, err := e.Resolve(ctx, intent)
	if err != nil || res == nil {
		return res, contextID, err
	}

	if contextID == "" {
		contextID = uuid.NewString()
	}

	prior.MatchedMarket = &res.Market
	if err := e.contexts.Save(ctx, contextID, prior); err != nil {
		e.logger.WarnContext(ctx, "resolver: context save failed",
			slog.String("context_id", contextID),
			slog.String("error", err.Error()),
		)
	}

	return res, contextID, nil
}

// Context returns the stored conversation context for id, if it is live.
func (e *Engine) Context(ctx context.Context, id string) (domain.ConversationContext, error) {
	return e.contexts.Get(ctx, id)
}

// SaveContext upserts the conversation context under id. The chat layer uses
// this to append messages and analysis after formatting a response.
func (e *Engine) SaveContext(ctx context.Context, id string, cc domain.ConversationContext) error {
	return e.contexts.Save(ctx, id, cc)
}

// deriveHints parses the intent's reference-bearing fields, preferring the
// first one that yields a structured identifier.
func deriveHints(intent domain.ResolutionIntent) domain.ReferenceHints {
	if intent.MarketID != "" {
		if h := ParseReference(intent.MarketID); h.Type != domain.RefQuery {
			return h
		}
	}
	if intent.Query != "" {
		if h := ParseReference(intent.Query); h.Type != domain.RefQuery {
			return h
		}
		return domain.ReferenceHints{Type: domain.RefQuery, Value: strings.TrimSpace(intent.Query)}
	}
	if intent.MarketID != "" {
		return ParseReference(intent.MarketID)
	}
	return domain.ReferenceHints{Type: domain.RefQuery, Value: strings.TrimSpace(intent.MarketQuestion)}
}

// stageContext reuses the previous turn's market when the caller supplied no
// other identifying field.
func (e *Engine) stageContext(_ context.Context, st *resolveState) (*domain.ResolvedMarket, error) {
	if st.intent.ExistingMarket == nil {
		return nil, nil
	}
	if st.intent.MarketID != "" || st.intent.Query != "" || st.intent.MarketQuestion != "" {
		return nil, nil
	}
	return &domain.ResolvedMarket{
		Market:     *st.intent.ExistingMarket,
		Similarity: 1,
		Source:     domain.SourceContext,
	}, nil
}

// stageDirectID matches a structured market/condition id against the
// universe, then falls back to one targeted remote fetch.
func (e *Engine) stageDirectID(ctx context.Context, st *resolveState) (*domain.ResolvedMarket, error) {
	h := st.hints
	if h.Type != domain.RefMarketID && h.Type != domain.RefConditionID && h.Type != domain.RefUUID {
		return nil, nil
	}

	universe, err := e.loadUniverse(ctx, st)
	if err != nil {
		return nil, err
	}
	for i := range universe {
		if universe[i].ID == h.Value || universe[i].ConditionID == h.Value {
			return &domain.ResolvedMarket{Market: universe[i], Similarity: 1, Source: domain.SourceMarketID}, nil
		}
	}

	m, err := e.provider.FetchMarketByID(ctx, h.Value)
	if err != nil {
		return nil, nil
	}
	return &domain.ResolvedMarket{Market: m, Similarity: 1, Source: domain.SourceMarketID}, nil
}

// stageMarketSlug probes the market sub-path candidates of an event URL.
func (e *Engine) stageMarketSlug(ctx context.Context, st *resolveState) (*domain.ResolvedMarket, error) {
	if st.hints.MarketSlug == "" {
		return nil, nil
	}
	return e.resolveSlugCandidates(ctx, st, SlugCandidates(st.hints.MarketSlug))
}

// stageSlug probes the top-level slug candidates, then falls back to the
// parent event for each candidate, picking the best contained market.
func (e *Engine) stageSlug(ctx context.Context, st *resolveState) (*domain.ResolvedMarket, error) {
	slug := st.hints.Slug
	if slug == "" && st.hints.Type == domain.RefSlug {
		slug = st.hints.Value
	}
	if slug == "" {
		return nil, nil
	}

	candidates := SlugCandidates(slug)
	if res, err := e.resolveSlugCandidates(ctx, st, candidates); res != nil || err != nil {
		return res, err
	}

	for _, cand := range candidates {
		ev := e.event(ctx, st, cand)
		if ev == nil || len(ev.Markets) == 0 {
			continue
		}
		m := pickEventMarket(ev, st.hints)
		return &domain.ResolvedMarket{Market: m, Similarity: 1, Source: domain.SourceEvent, Event: ev}, nil
	}

	return nil, nil
}

// resolveSlugCandidates tries each candidate against the universe first, then
// as a targeted remote fetch, longest candidate first so the most specific
// match wins.
func (e *Engine) resolveSlugCandidates(ctx context.Context, st *resolveState, candidates []string) (*domain.ResolvedMarket, error) {
	universe, err := e.loadUniverse(ctx, st)
	if err != nil {
		return nil, err
	}

	for _, cand := range candidates {
		for i := range universe {
			if universe[i].Slug == cand {
				return &domain.ResolvedMarket{Market: universe[i], Similarity: 1, Source: domain.SourceSlug}, nil
			}
		}
		if m := e.marketBySlug(ctx, st, cand); m != nil {
			return &domain.ResolvedMarket{Market: *m, Similarity: 1, Source: domain.SourceSlug}, nil
		}
	}
	return nil, nil
}

// pickEventMarket selects one market out of an event: the one holding the
// token-id hint, else the one matching the market-slug hint, else the first.
func pickEventMarket(ev *domain.EventRecord, hints domain.ReferenceHints) domain.MarketRecord {
	if hints.TokenID != "" {
		for i := range ev.Markets {
			if ev.Markets[i].HasToken(hints.TokenID) {
				return ev.Markets[i]
			}
		}
	}
	if hints.MarketSlug != "" {
		for i := range ev.Markets {
			if ev.Markets[i].Slug == hints.MarketSlug {
				return ev.Markets[i]
			}
		}
	}
	return ev.Markets[0]
}

// stageToken scans the universe for a market holding the token-id hint, then
// retries the (memoized) event lookups as a last resort.
func (e *Engine) stageToken(ctx context.Context, st *resolveState) (*domain.ResolvedMarket, error) {
	if st.hints.TokenID == "" {
		return nil, nil
	}

	universe, err := e.loadUniverse(ctx, st)
	if err != nil {
		return nil, err
	}
	for i := range universe {
		if universe[i].HasToken(st.hints.TokenID) {
			return &domain.ResolvedMarket{Market: universe[i], Similarity: 1, Source: domain.SourceToken}, nil
		}
	}

	slug := st.hints.Slug
	if slug == "" {
		return nil, nil
	}
	for _, cand := range SlugCandidates(slug) {
		ev := e.event(ctx, st, cand)
		if ev == nil {
			continue
		}
		for i := range ev.Markets {
			if ev.Markets[i].HasToken(st.hints.TokenID) {
				return &domain.ResolvedMarket{Market: ev.Markets[i], Similarity: 1, Source: domain.SourceToken, Event: ev}, nil
			}
		}
	}

	return nil, nil
}

// stageSimilarity scores the free text against the whole universe and accepts
// the best match at or above the similarity threshold.
func (e *Engine) stageSimilarity(ctx context.Context, st *resolveState) (*domain.ResolvedMarket, error) {
	text := st.intent.MarketQuestion
	if text == "" {
		text = st.intent.Query
	}
	if text == "" && st.hints.Type == domain.RefQuery {
		text = st.hints.Value
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	universe, err := e.loadUniverse(ctx, st)
	if err != nil {
		return nil, err
	}

	matches := FindBestMatchingMarkets(universe, text, MatchOptions{
		MinSimilarity: e.minSimilarity,
		MaxResults:    1,
	})
	if len(matches) == 0 {
		return nil, nil
	}
	return &domain.ResolvedMarket{
		Market:     matches[0].Market,
		Similarity: matches[0].Similarity,
		Source:     domain.SourceSimilarity,
	}, nil
}

// stageSearch is the remote full-text fallback. It tries a fixed ladder of
// search terms and vets each candidate against the token-id hint and, when a
// query was supplied, the similarity threshold.
func (e *Engine) stageSearch(ctx context.Context, st *resolveState) (*domain.ResolvedMarket, error) {
	for _, term := range searchTerms(st) {
		result, err := e.provider.FetchSearchMarkets(ctx, term)
		if err != nil {
			continue
		}

		candidate := result.Market
		if candidate == nil && result.Event != nil && len(result.Event.Markets) > 0 {
			candidate = &result.Event.Markets[0]
		}
		if candidate == nil {
			continue
		}

		if st.hints.TokenID != "" && !candidate.HasToken(st.hints.TokenID) {
			continue
		}

		sim := 1.0
		if st.intent.Query != "" {
			sim = Score(st.intent.Query, candidate.Question)
			if sim < e.minSimilarity {
				continue
			}
		}

		return &domain.ResolvedMarket{
			Market:     *candidate,
			Similarity: sim,
			Source:     domain.SourceSearch,
			Event:      result.Event,
		}, nil
	}

	return nil, nil
}

// searchTerms builds the ordered, deduplicated search-term ladder: combined
// question+query, raw query, raw question, the slug with its trailing hash
// stripped, and the first four slug words as a phrase.
func searchTerms(st *resolveState) []string {
	var terms []string
	seen := map[string]bool{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t != "" && !seen[t] {
			seen[t] = true
			terms = append(terms, t)
		}
	}

	if st.intent.MarketQuestion != "" && st.intent.Query != "" {
		add(st.intent.MarketQuestion + " " + st.intent.Query)
	}
	add(st.intent.Query)
	add(st.intent.MarketQuestion)

	if slug := st.hints.Slug; slug != "" {
		cands := SlugCandidates(slug)
		add(strings.ReplaceAll(cands[len(cands)-1], "-", " "))

		words := strings.Split(slug, "-")
		if len(words) > 4 {
			words = words[:4]
		}
		add(strings.Join(words, " "))
	}

	return terms
}
