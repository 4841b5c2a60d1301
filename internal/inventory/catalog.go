package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/domain"
)

// ListParams are the catalog listing filters.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Category string
}

// ProductPage is one page of catalog results.
type ProductPage struct {
	Count    int              `json:"count"`
	Results  []domain.Product `json:"results"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// TotalPages derives the page count from Count and PageSize.
func (p *ProductPage) TotalPages() int {
	if p.PageSize <= 0 || p.Count <= 0 {
		return 1
	}
	pages := p.Count / p.PageSize
	if p.Count%p.PageSize != 0 {
		pages++
	}
	return pages
}

// ProductInput is the write shape for product create/update.
type ProductInput struct {
	Name        string  `json:"nombre"`
	Description string  `json:"descripcion,omitempty"`
	Price       float64 `json:"precio"`
	Stock       int     `json:"stock"`
	CategoryID  int64   `json:"categoria,omitempty"`
	Image       string  `json:"imagen,omitempty"`
}

// ListProducts fetches one page of the catalog. The service answers either
// with a {count, results} envelope or a bare array; both are accepted.
func (c *Client) ListProducts(ctx context.Context, params ListParams) (*ProductPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 9
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("page_size", strconv.Itoa(params.PageSize))
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Category != "" {
		query.Set("categoria", params.Category)
	}

	body, status, err := c.do(ctx, http.MethodGet, "/productos/", query, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, rejectionFromBody(body, fmt.Sprintf("catalog request failed: status %d", status))
	}

	count, results, err := decodeList[domain.Product](body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal product list: %w", err)
	}

	return &ProductPage{
		Count:    count,
		Results:  results,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// ListCategories fetches the full category list.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	body, status, err := c.do(ctx, http.MethodGet, "/categorias/", nil, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, rejectionFromBody(body, fmt.Sprintf("category request failed: status %d", status))
	}

	_, results, err := decodeList[domain.Category](body)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal category list: %w", err)
	}
	return results, nil
}

// CategoryInput is the write shape for category creation.
type CategoryInput struct {
	Name        string `json:"nombre"`
	Description string `json:"descripcion,omitempty"`
}

// CreateCategory creates a catalog category (staff only upstream).
func (c *Client) CreateCategory(ctx context.Context, input CategoryInput) (*domain.Category, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/categorias/crear/", nil, input)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, rejectionFromBody(body, fmt.Sprintf("create category failed: status %d", status))
	}

	var category domain.Category
	if err := json.Unmarshal(body, &category); err != nil {
		return nil, fmt.Errorf("failed to unmarshal category: %w", err)
	}
	return &category, nil
}

// CreateProduct creates a catalog product (staff only upstream).
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*domain.Product, error) {
	body, status, err := c.do(ctx, http.MethodPost, "/productos/crear/", nil, input)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, rejectionFromBody(body, fmt.Sprintf("create product failed: status %d", status))
	}

	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

// UpdateProduct replaces a catalog product.
func (c *Client) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*domain.Product, error) {
	path := fmt.Sprintf("/productos/%d/", id)
	body, status, err := c.do(ctx, http.MethodPut, path, nil, input)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, rejectionFromBody(body, fmt.Sprintf("update product failed: status %d", status))
	}

	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return &product, nil
}

// DeleteProduct removes a catalog product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/productos/%d/eliminar/", id)
	body, status, err := c.do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		return rejectionFromBody(body, fmt.Sprintf("delete product failed: status %d", status))
	}

	c.logger.Info("Product deleted", zap.Int64("product_id", id))
	return nil
}

// decodeList accepts either a bare JSON array or a {count, results}
// envelope and returns the total count plus the page items.
func decodeList[T any](data []byte) (int, []T, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return 0, nil, err
		}
		return len(items), items, nil
	}

	var envelope struct {
		Count   int `json:"count"`
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return 0, nil, err
	}
	return envelope.Count, envelope.Results, nil
}

// rejectionFromBody turns an error response body into a RejectionError,
// falling back to a generic message when the body is not the service's
// {error, detalles} shape.
func rejectionFromBody(body []byte, fallback string) error {
	var payload struct {
		Error   string   `json:"error"`
		Detail  string   `json:"detail"`
		Details []string `json:"detalles"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		msg := payload.Error
		if msg == "" {
			msg = payload.Detail
		}
		if msg != "" || len(payload.Details) > 0 {
			return &RejectionError{Message: msg, Details: payload.Details}
		}
	}
	return &RejectionError{Message: fallback}
}
