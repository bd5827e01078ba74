package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

var _ Interface = &RestClient{}

type RestClient struct {
	baseURL    string
	headers    map[string]string
	httpClient *http.Client
}

// NewRestClient builds a client for baseURL. Headers passed here are attached
// to every request and win over per-call headers. No client-side timeout is
// set; callers bound requests through the context.
func NewRestClient(baseURL string, headers map[string]string) *RestClient {
	return &RestClient{
		baseURL:    baseURL,
		headers:    headers,
		httpClient: &http.Client{},
	}
}

func (c *RestClient) setHeaders(req *http.Request, headers map[string]string) {
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
}

func (c *RestClient) doRequest(ctx context.Context, request *http.Request) ([]byte, int, error) {
	request = request.WithContext(ctx)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, 0, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	return body, response.StatusCode, err
}

func (c *RestClient) Get(ctx context.Context, endpoint string, headers map[string]string) ([]byte, int, error) {
	url := c.baseURL + endpoint
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	c.setHeaders(request, headers)
	return c.doRequest(ctx, request)
}

func (c *RestClient) Post(ctx context.Context, endpoint string, body any, headers map[string]string) ([]byte, int, error) {
	url := c.baseURL + endpoint
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, 0, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, 0, err
	}
	c.setHeaders(request, headers)
	return c.doRequest(ctx, request)
}
