package imagegen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/images/generations" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		var req generationRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.N != 1 || req.Model != "dall-e-3" {
			t.Errorf("request: %+v", req)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"created": 1700000000,
			"data": []map[string]any{{
				"url":            "https://img.example/out.png",
				"revised_prompt": "a portrait",
			}},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "dall-e-3", nil)
	res, err := c.Generate(context.Background(), Request{Prompt: "a portrait", Size: "1024x1024"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.URL != "https://img.example/out.png" {
		t.Errorf("url: got %q", res.URL)
	}
}

func TestGenerateContentPolicyViolation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"code":    "content_policy_violation",
				"message": "Your request was rejected by the safety system.",
				"type":    "invalid_request_error",
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "dall-e-3", nil)
	_, err := c.Generate(context.Background(), Request{Prompt: "something disallowed"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsContentPolicyViolation(err) {
		t.Errorf("expected content policy classification, got %v", err)
	}
	if IsQuota(err) {
		t.Error("policy violation misclassified as quota")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected *APIError")
	}
	if apiErr.Code != "content_policy_violation" {
		t.Errorf("code: got %q", apiErr.Code)
	}
}

func TestGeneratePolicyDetectedFromMessageOnly(t *testing.T) {
	err := &APIError{StatusCode: 400, Message: "Rejected by our safety system."}
	if !IsContentPolicyViolation(err) {
		t.Error("expected message-text fallback to classify as policy violation")
	}
}

func TestGenerateQuota(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": "rate_limit_exceeded", "message": "slow down"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "dall-e-3", nil)
	_, err := c.Generate(context.Background(), Request{Prompt: "a portrait"})
	if !IsQuota(err) {
		t.Errorf("expected quota classification, got %v", err)
	}
	if IsContentPolicyViolation(err) {
		t.Error("quota misclassified as policy violation")
	}
}

func TestGenerateEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key", "dall-e-3", nil)
	_, err := c.Generate(context.Background(), Request{Prompt: "a portrait"})
	if !errors.Is(err, ErrNoImage) {
		t.Fatalf("expected ErrNoImage, got %v", err)
	}
	if IsContentPolicyViolation(err) || IsQuota(err) {
		t.Errorf("misclassified: %v", err)
	}
}
