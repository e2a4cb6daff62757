// Package meta implements the outbound Graph API client used by the signup
// and sync flows.
package meta

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kodecrm/wacoex/core/config"
	domainMeta "github.com/kodecrm/wacoex/domains/meta"
	"github.com/sirupsen/logrus"
)

const httpTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

var _ domainMeta.IClient = (*Client)(nil)

func NewClient(cfg config.MetaConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
}

// SetHTTPClient overrides the transport (used in tests).
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.httpClient = hc
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, strings.TrimLeft(path, "/"))
}

func (c *Client) ExchangeCode(ctx context.Context, appID, appSecret, code string) (*domainMeta.TokenResponse, error) {
	q := url.Values{}
	q.Set("client_id", appID)
	q.Set("client_secret", appSecret)
	q.Set("code", code)

	var resp domainMeta.TokenResponse
	err := c.jsonRequest(ctx, http.MethodGet, c.endpoint("oauth/access_token")+"?"+q.Encode(), "", nil, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("token exchange returned empty access_token")
	}
	return &resp, nil
}

func (c *Client) GetPhoneNumber(ctx context.Context, phoneNumberID, accessToken string) (*domainMeta.PhoneNumber, error) {
	reqURL := c.endpoint(phoneNumberID) + "?fields=verified_name,display_phone_number,platform_type,quality_rating"
	var resp domainMeta.PhoneNumber
	if err := c.jsonRequest(ctx, http.MethodGet, reqURL, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListPhoneNumbers(ctx context.Context, wabaID, accessToken string) ([]domainMeta.PhoneNumber, error) {
	var resp struct {
		Data []domainMeta.PhoneNumber `json:"data"`
	}
	reqURL := c.endpoint(wabaID+"/phone_numbers") + "?fields=id,verified_name,display_phone_number,platform_type"
	if err := c.jsonRequest(ctx, http.MethodGet, reqURL, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) RegisterPhone(ctx context.Context, phoneNumberID, accessToken, pin string) error {
	body := map[string]any{"messaging_product": "whatsapp", "pin": pin}
	return c.jsonRequest(ctx, http.MethodPost, c.endpoint(phoneNumberID+"/register"), accessToken, body, nil)
}

func (c *Client) SubscribeApp(ctx context.Context, wabaID, accessToken string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, c.endpoint(wabaID+"/subscribed_apps"), accessToken, nil, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("subscribed_apps returned success=false")
	}
	return nil
}

func (c *Client) ListTemplates(ctx context.Context, wabaID, accessToken string) ([]domainMeta.Template, error) {
	var resp struct {
		Data []domainMeta.Template `json:"data"`
	}
	reqURL := c.endpoint(wabaID+"/message_templates") + "?fields=id,name,status,category,language&limit=250"
	if err := c.jsonRequest(ctx, http.MethodGet, reqURL, accessToken, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) RequestSMBAppData(ctx context.Context, phoneNumberID, accessToken, syncType string) error {
	body := map[string]any{"messaging_product": "whatsapp", "sync_type": syncType}
	return c.jsonRequest(ctx, http.MethodPost, c.endpoint(phoneNumberID+"/smb_app_data"), accessToken, body, nil)
}

func (c *Client) jsonRequest(ctx context.Context, method, reqURL, token string, body any, dest any) error {
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode >= 400 {
		logrus.Debugf("[META] %s %s failed: status=%d body=%s", method, req.URL.Path, resp.StatusCode, string(data))
		return fmt.Errorf("graph api request failed: status=%d body=%s", resp.StatusCode, string(data))
	}

	if dest != nil {
		return json.Unmarshal(data, dest)
	}
	return nil
}
