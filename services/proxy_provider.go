package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"autoapply/models"
)

// ProxyProvider is the upstream API that owns the actual network identities.
type ProxyProvider interface {
	List(ctx context.Context) ([]*models.ProxyIdentity, error)
	Create(ctx context.Context, country, label string) (*models.ProxyIdentity, error)
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context, id string) error
}

// ProxyProviderClient talks to the provider's JSON-over-HTTP API.
type ProxyProviderClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewProxyProviderClient(baseURL, apiKey string) *ProxyProviderClient {
	return &ProxyProviderClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
}

type providerProxy struct {
	ID       string `json:"id"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Country  string `json:"country"`
}

func (p providerProxy) toIdentity() *models.ProxyIdentity {
	return &models.ProxyIdentity{
		ID:       p.ID,
		Endpoint: fmt.Sprintf("%s:%d", p.Host, p.Port),
		Username: p.Username,
		Password: p.Password,
		Country:  p.Country,
	}
}

func (c *ProxyProviderClient) List(ctx context.Context) ([]*models.ProxyIdentity, error) {
	var listed []providerProxy
	if err := c.do(ctx, "GET", "/proxies", nil, &listed); err != nil {
		return nil, fmt.Errorf("failed to list proxies: %w", err)
	}

	identities := make([]*models.ProxyIdentity, len(listed))
	for i, proxy := range listed {
		identities[i] = proxy.toIdentity()
	}
	return identities, nil
}

func (c *ProxyProviderClient) Create(ctx context.Context, country, label string) (*models.ProxyIdentity, error) {
	payload := map[string]string{"country": country, "label": label}
	var created providerProxy
	if err := c.do(ctx, "POST", "/proxies", payload, &created); err != nil {
		return nil, fmt.Errorf("failed to provision proxy: %w", err)
	}
	return created.toIdentity(), nil
}

func (c *ProxyProviderClient) Delete(ctx context.Context, id string) error {
	if err := c.do(ctx, "DELETE", "/proxies/"+id, nil, nil); err != nil {
		return fmt.Errorf("failed to delete proxy %s: %w", id, err)
	}
	return nil
}

func (c *ProxyProviderClient) Refresh(ctx context.Context, id string) error {
	if err := c.do(ctx, "POST", "/proxies/"+id+"/refresh", nil, nil); err != nil {
		return fmt.Errorf("failed to refresh proxy %s: %w", id, err)
	}
	return nil
}

func (c *ProxyProviderClient) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("provider returned status %d: %s", resp.StatusCode, respBody)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
