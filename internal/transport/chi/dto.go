package chi

import (
	"github.com/kailas-cloud/visearch/internal/domain/batch"
	"github.com/kailas-cloud/visearch/internal/domain/hit"
	"github.com/kailas-cloud/visearch/internal/domain/product"
	"github.com/kailas-cloud/visearch/internal/domain/report"
)

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned to clients.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeUnauthorized     = "unauthorized"
	codeDimMismatch      = "vector_dim_mismatch"
	codeIndexingBusy     = "indexing_busy"
	codeProviderError    = "embedding_provider_error"
	codeStoreUnavailable = "store_unavailable"
	codeInternalError    = "internal_error"
)

// textSearchRequest is the POST /search/text body.
type textSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// productDTO carries catalog display fields. Vectors are never serialized.
type productDTO struct {
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
	ProductURL string  `json:"product_url,omitempty"`
	Price      float64 `json:"price"`
	InStock    bool    `json:"in_stock"`
}

// hitDTO is one search result.
type hitDTO struct {
	ID       string      `json:"id"`
	Score    float64     `json:"score"`
	Modality string      `json:"modality"`
	Product  *productDTO `json:"product,omitempty"`
}

// searchResponse is the body of every search endpoint.
type searchResponse struct {
	Hits  []hitDTO `json:"hits"`
	Total int      `json:"total"`
}

// importItem is one product in the POST /products body.
type importItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	ImageURL   string  `json:"image_url"`
	ProductURL string  `json:"product_url,omitempty"`
	Price      float64 `json:"price,omitempty"`
	InStock    bool    `json:"in_stock,omitempty"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

// importRequest is the POST /products body.
type importRequest struct {
	Products []importItem `json:"products"`
}

// importResultDTO is the per-item import outcome.
type importResultDTO struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// importResponse is the POST /products response.
type importResponse struct {
	Items     []importResultDTO `json:"items"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
}

// skipDTO is one skipped product in an indexing report.
type skipDTO struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// reportDTO summarizes an indexing run.
type reportDTO struct {
	Attempted int       `json:"attempted"`
	Stored    int       `json:"stored"`
	Skipped   []skipDTO `json:"skipped"`
}

// indexStatusResponse is the GET /index/status body.
type indexStatusResponse struct {
	Running bool       `json:"running"`
	LastRun *reportDTO `json:"last_run,omitempty"`
}

// healthResponse is the GET /health body.
type healthResponse struct {
	Status          string            `json:"status"`
	Checks          map[string]string `json:"checks"`
	PendingProducts *int              `json:"pending_products,omitempty"`
}

// catalogProductDTO is the GET /products/{id} body.
type catalogProductDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	ImageURL   string  `json:"image_url,omitempty"`
	ProductURL string  `json:"product_url,omitempty"`
	Price      float64 `json:"price"`
	InStock    bool    `json:"in_stock"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
	IndexState string  `json:"index_state"`
}

func productToDTO(p *product.Product) catalogProductDTO {
	return catalogProductDTO{
		ID:         p.ID(),
		Name:       p.Name(),
		Category:   p.Category(),
		ImageURL:   p.ImageURL(),
		ProductURL: p.ProductURL(),
		Price:      p.Price(),
		InStock:    p.InStock(),
		UpdatedAt:  p.UpdatedAt(),
		IndexState: string(p.State()),
	}
}

func hitToDTO(h *hit.Hit) hitDTO {
	dto := hitDTO{
		ID:       h.ID(),
		Score:    h.Score(),
		Modality: string(h.Modality()),
	}
	if h.Joined() {
		p := h.Product()
		dto.Product = &productDTO{
			Name:       p.Name(),
			Category:   p.Category(),
			ImageURL:   p.ImageURL(),
			ProductURL: p.ProductURL(),
			Price:      p.Price(),
			InStock:    p.InStock(),
		}
	}
	return dto
}

func hitsToResponse(hits []hit.Hit) searchResponse {
	items := make([]hitDTO, 0, len(hits))
	for i := range hits {
		items = append(items, hitToDTO(&hits[i]))
	}
	return searchResponse{Hits: items, Total: len(items)}
}

func importItemToProduct(item importItem) product.Product {
	return product.New(
		item.ID, item.Name, item.Category,
		item.ImageURL, item.ProductURL,
		item.Price, item.InStock, item.UpdatedAt,
	)
}

func importResultsToResponse(results []batch.Result) importResponse {
	resp := importResponse{Items: make([]importResultDTO, len(results))}
	for i, r := range results {
		dto := importResultDTO{ID: r.ID(), Status: string(r.Status())}
		if r.Err() != nil {
			dto.Error = r.Err().Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Items[i] = dto
	}
	return resp
}

func reportToDTO(rep report.Report) reportDTO {
	dto := reportDTO{
		Attempted: rep.Attempted(),
		Stored:    rep.Stored(),
		Skipped:   make([]skipDTO, 0, len(rep.Skipped())),
	}
	for _, s := range rep.Skipped() {
		dto.Skipped = append(dto.Skipped, skipDTO{ID: s.ID(), Reason: s.Reason()})
	}
	return dto
}
