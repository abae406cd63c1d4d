// Package backend is the client for the remote storefront API: catalog
// reads, order placement and the fire-and-forget user tracking call.
// Nothing here retries; every failure is surfaced once and the user
// re-initiates the action.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/cloudonauts/storefront/pkg/models"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// OrderItem is one line of a place-order request. The remote API keys
// products by integer pid.
type OrderItem struct {
	PID      int `json:"pid"`
	Quantity int `json:"quantity"`
}

// ListProducts fetches the full catalog listing.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.getJSON(ctx, "/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches a single product by pid.
func (c *Client) GetProduct(ctx context.Context, pid int) (models.Product, error) {
	var product models.Product
	if err := c.getJSON(ctx, fmt.Sprintf("/products/%d", pid), &product); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

// PlaceOrder submits the cart's items for the given user and returns the
// new order id.
func (c *Client) PlaceOrder(ctx context.Context, userSub string, items []OrderItem) (int, error) {
	payload := map[string]interface{}{
		"user_sub": userSub,
		"products": items,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("failed to encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/place-order", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		OrderID int `json:"order_id"`
	}
	if err := c.do(req, &result); err != nil {
		return 0, err
	}
	return result.OrderID, nil
}

// UserOrders fetches every order placed by the given subject.
func (c *Client) UserOrders(ctx context.Context, userSub string) ([]models.Order, error) {
	var orders []models.Order
	if err := c.getJSON(ctx, "/user-orders/"+userSub, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// TrackUser mirrors the authenticated profile into the remote user table.
// Callers treat a failure as log-only; it never blocks login.
func (c *Client) TrackUser(ctx context.Context, profile models.Profile, bearerToken string) error {
	body, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/users", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}
	return c.do(req, nil)
}

// AddProduct submits the new-product form as multipart, including the
// product image when one was provided. Returns the uploaded image URL if
// the API reports one.
func (c *Client) AddProduct(ctx context.Context, form models.AddProductRequest, image io.Reader, imageName string) (string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := map[string]string{
		"category":    form.Category,
		"gender":      form.Gender,
		"productName": form.ProductName,
		"size":        form.Size,
		"price":       form.Price,
		"count":       form.Count,
		"description": form.Description,
	}
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return "", fmt.Errorf("failed to encode form field %q: %w", name, err)
		}
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", imageName)
		if err != nil {
			return "", fmt.Errorf("failed to attach image: %w", err)
		}
		if _, err := io.Copy(part, image); err != nil {
			return "", fmt.Errorf("failed to copy image: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/add-product", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var result struct {
		ImageURL string `json:"imageUrl"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}
	return result.ImageURL, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// do runs the request and decodes the response, turning non-2xx statuses
// into errors built from the API's {"error": ...} body when present.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", req.URL.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s: %s", req.URL.Path, apiErr.Error)
		}
		return fmt.Errorf("%s: unexpected status %d", req.URL.Path, resp.StatusCode)
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
	}
	return nil
}
