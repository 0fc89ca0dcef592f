package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/maberrio/cornerscout/internal/domain/quote"
	"github.com/maberrio/cornerscout/internal/platform/logging"
	"github.com/maberrio/cornerscout/internal/usecase"
)

type Handler struct {
	searchService *usecase.SearchService
	exportService *usecase.ExportService
	logger        *logging.Logger
	validator     *validator.Validate
}

func NewHandler(
	searchService *usecase.SearchService,
	exportService *usecase.ExportService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		searchService: searchService,
		exportService: exportService,
		logger:        logger,
		validator:     validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Readyz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) SearchCorners(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SearchCorners")
	defer span.End()

	input, err := h.decodeSearchRequest(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	output, err := h.searchService.Search(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "corner search failed", "provider", string(input.Provider), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, searchOutputToDTO(output))
}

func (h *Handler) ExportCorners(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportCorners")
	defer span.End()

	input, err := h.decodeSearchRequest(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	output, err := h.searchService.Search(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "corner search for export failed", "provider", string(input.Provider), "error", err)
		writeError(ctx, w, err)
		return
	}

	filename, data, err := h.exportService.Export(ctx, input.Provider, input.Day, input.Line, output.Results)
	if err != nil {
		h.logger.WarnContext(ctx, "export failed", "provider", string(input.Provider), "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) decodeSearchRequest(ctx context.Context, r *http.Request) (usecase.SearchInput, error) {
	var req cornerSearchRequest
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return usecase.SearchInput{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	if err := h.validateRequest(ctx, req); err != nil {
		return usecase.SearchInput{}, err
	}

	provider, ok := quote.ParseProviderKind(req.Provider)
	if !ok {
		return usecase.SearchInput{}, fmt.Errorf("%w: unknown provider %q", usecase.ErrInvalidInput, req.Provider)
	}
	day, err := time.ParseInLocation("2006-01-02", req.Day, time.UTC)
	if err != nil {
		return usecase.SearchInput{}, fmt.Errorf("%w: day must be YYYY-MM-DD: %v", usecase.ErrInvalidInput, err)
	}

	return usecase.SearchInput{
		Provider:        provider,
		Token:           req.Token,
		Day:             day,
		Line:            req.Line,
		FirstSideMin:    req.OverMin,
		SecondSideMin:   req.UnderMin,
		LeagueIDs:       req.LeagueIDs,
		BookmakerIDs:    req.BookmakerIDs,
		KnownBookmakers: req.KnownBookmakers,
	}, nil
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type cornerSearchRequest struct {
	Provider        string            `json:"provider" validate:"required"`
	Day             string            `json:"day" validate:"required,datetime=2006-01-02"`
	Token           string            `json:"token"`
	Line            float64           `json:"line" validate:"required,gt=0"`
	OverMin         float64           `json:"overMin" validate:"gte=0"`
	UnderMin        float64           `json:"underMin" validate:"gte=0"`
	LeagueIDs       []string          `json:"leagueIds" validate:"omitempty,dive,required"`
	BookmakerIDs    []string          `json:"bookmakerIds" validate:"omitempty,dive,required"`
	KnownBookmakers map[string]string `json:"knownBookmakers"`
}

type resultRowDTO struct {
	EventID    string   `json:"eventId"`
	Match      string   `json:"match"`
	Kickoff    string   `json:"kickoff"`
	Bookmaker  string   `json:"bookmaker"`
	MarketKind string   `json:"marketKind"`
	Line       float64  `json:"line"`
	Over       *float64 `json:"over,omitempty"`
	Under      *float64 `json:"under,omitempty"`
	Home       *float64 `json:"home,omitempty"`
	Away       *float64 `json:"away,omitempty"`
	MaxPrice   float64  `json:"maxPrice"`
}

type searchResponseDTO struct {
	Results         []resultRowDTO      `json:"results"`
	Stats           usecase.SearchStats `json:"stats"`
	KnownBookmakers map[string]string   `json:"knownBookmakers"`
}

func searchOutputToDTO(output usecase.SearchOutput) searchResponseDTO {
	items := make([]resultRowDTO, 0, len(output.Results))
	for _, row := range output.Results {
		items = append(items, resultRowDTO{
			EventID:    row.EventID,
			Match:      row.MatchName,
			Kickoff:    row.KickoffRaw,
			Bookmaker:  row.Bookmaker,
			MarketKind: string(row.Kind),
			Line:       row.Line,
			Over:       row.OverPrice,
			Under:      row.UnderPrice,
			Home:       row.HomePrice,
			Away:       row.AwayPrice,
			MaxPrice:   row.RankPrice,
		})
	}

	return searchResponseDTO{
		Results:         items,
		Stats:           output.Stats,
		KnownBookmakers: output.KnownBookmakers,
	}
}
