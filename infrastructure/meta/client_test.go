package meta

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/kodecrm/wacoex/core/config"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(handler roundTripperFunc) *Client {
	c := NewClient(config.MetaConfig{
		BaseURL:    "https://graph.test",
		APIVersion: "v23.0",
	})
	c.SetHTTPClient(&http.Client{Transport: handler})
	return c
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestExchangeCode(t *testing.T) {
	var gotURL string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotURL = req.URL.String()
		return jsonResponse(http.StatusOK, `{"access_token":"tok-123","token_type":"bearer"}`), nil
	})

	resp, err := client.ExchangeCode(context.Background(), "app-1", "secret-1", "code-1")
	if err != nil {
		t.Fatalf("ExchangeCode() unexpected error: %v", err)
	}
	if resp.AccessToken != "tok-123" {
		t.Fatalf("unexpected access token: %q", resp.AccessToken)
	}
	if !strings.HasPrefix(gotURL, "https://graph.test/v23.0/oauth/access_token?") {
		t.Fatalf("unexpected URL: %q", gotURL)
	}
	for _, want := range []string{"client_id=app-1", "client_secret=secret-1", "code=code-1"} {
		if !strings.Contains(gotURL, want) {
			t.Fatalf("URL %q missing %q", gotURL, want)
		}
	}
}

func TestExchangeCodeEmptyToken(t *testing.T) {
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	if _, err := client.ExchangeCode(context.Background(), "app", "secret", "code"); err == nil {
		t.Fatal("expected error for empty access_token, got nil")
	}
}

func TestGetPhoneNumberSendsBearerToken(t *testing.T) {
	var gotAuth string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotAuth = req.Header.Get("Authorization")
		return jsonResponse(http.StatusOK, `{"id":"100","verified_name":"Acme","display_phone_number":"+1 555-0100","platform_type":"SMB_APP"}`), nil
	})

	pn, err := client.GetPhoneNumber(context.Background(), "100", "tok-abc")
	if err != nil {
		t.Fatalf("GetPhoneNumber() unexpected error: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth)
	}
	if pn.VerifiedName != "Acme" || pn.PlatformType != "SMB_APP" {
		t.Fatalf("unexpected phone number: %+v", pn)
	}
}

func TestSubscribeAppFailsOnSuccessFalse(t *testing.T) {
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":false}`), nil
	})

	if err := client.SubscribeApp(context.Background(), "waba-1", "tok"); err == nil {
		t.Fatal("expected error for success=false, got nil")
	}
}

func TestRequestSMBAppDataBody(t *testing.T) {
	var gotBody []byte
	var gotPath string
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		gotPath = req.URL.Path
		gotBody, _ = io.ReadAll(req.Body)
		return jsonResponse(http.StatusOK, `{"success":true}`), nil
	})

	if err := client.RequestSMBAppData(context.Background(), "100", "tok", "smb_app_state_sync"); err != nil {
		t.Fatalf("RequestSMBAppData() unexpected error: %v", err)
	}
	if gotPath != "/v23.0/100/smb_app_data" {
		t.Fatalf("unexpected path: %q", gotPath)
	}

	var payload map[string]any
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("failed to unmarshal body: %v", err)
	}
	if payload["sync_type"] != "smb_app_state_sync" {
		t.Fatalf("unexpected sync_type: %#v", payload["sync_type"])
	}
	if payload["messaging_product"] != "whatsapp" {
		t.Fatalf("unexpected messaging_product: %#v", payload["messaging_product"])
	}
}

func TestJSONRequestErrorIncludesBody(t *testing.T) {
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"error":{"message":"bad code"}}`), nil
	})

	_, err := client.ExchangeCode(context.Background(), "app", "secret", "expired")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "bad code") {
		t.Fatalf("error should carry the response body, got: %v", err)
	}
}
