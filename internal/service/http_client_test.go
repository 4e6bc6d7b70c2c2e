package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer поднимает сервер с одним обработчиком на path.
func newTestServer(t *testing.T, path string, handler func(t *testing.T, body map[string]any) (int, any)) *HTTPClient {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != path {
			t.Errorf("expected path %s, got %s", path, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}

		status, resp := handler(t, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch v := resp.(type) {
		case string:
			io.WriteString(w, v)
		default:
			json.NewEncoder(w).Encode(v)
		}
	}))
	t.Cleanup(srv.Close)

	return NewHTTPClient(HTTPClientConfig{BaseURL: srv.URL + "/", Logger: discardLogger()})
}

func TestHTTPClient_Transform(t *testing.T) {
	c := newTestServer(t, "/unified", func(t *testing.T, body map[string]any) (int, any) {
		if body["text"] != "### User Prompt:\nx" {
			t.Errorf("unexpected text %v", body["text"])
		}
		return http.StatusOK, `{"result":{"converted_code":"new","suggestions":["a","b"]}}`
	})

	res, err := c.Transform(context.Background(), "### User Prompt:\nx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ConvertedCode != "new" {
		t.Errorf("expected converted code, got %q", res.ConvertedCode)
	}
	if res.Suggestions.Text() != "a\nb" {
		t.Errorf("unexpected suggestions %q", res.Suggestions.Text())
	}
}

func TestHTTPClient_Transform_MissingResult(t *testing.T) {
	c := newTestServer(t, "/unified", func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, `{}`
	})

	_, err := c.Transform(context.Background(), "x")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestHTTPClient_Transform_HTTPError(t *testing.T) {
	c := newTestServer(t, "/unified", func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusBadGateway, `{"detail":"upstream down"}`
	})

	_, err := c.Transform(context.Background(), "x")
	if !IsHTTPError(err) {
		t.Fatalf("expected HTTPError, got %v", err)
	}

	var httpErr *HTTPError
	errors.As(err, &httpErr)
	if httpErr.StatusCode != http.StatusBadGateway || httpErr.Operation != OpTransform {
		t.Errorf("unexpected error details: %+v", httpErr)
	}
}

func TestHTTPClient_TransformBatch(t *testing.T) {
	c := newTestServer(t, "/multi", func(t *testing.T, body map[string]any) (int, any) {
		if body["prompt"] != "to go" {
			t.Errorf("unexpected prompt %v", body["prompt"])
		}
		files, _ := body["files"].([]any)
		if len(files) != 2 {
			t.Errorf("expected 2 files, got %v", body["files"])
		}
		return http.StatusOK, `{"files":[{"file_name":"A.java","content":"A2","suggestions":"use go"}]}`
	})

	res, err := c.TransformBatch(context.Background(), "to go", []BatchFile{
		{FileName: "A.java", Content: "A"},
		{FileName: "B.java", Content: "B"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, ok := res.Find("A.java")
	if !ok || a.Content != "A2" || a.Suggestions.Text() != "use go" {
		t.Errorf("unexpected A result: %+v", a)
	}
	if _, ok := res.Find("B.java"); ok {
		t.Error("B.java should be absent")
	}
}

func TestHTTPClient_TransformBatch_MissingFiles(t *testing.T) {
	c := newTestServer(t, "/multi", func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, `{"status":"ok"}`
	})

	_, err := c.TransformBatch(context.Background(), "p", nil)
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestHTTPClient_GenerateArtifacts(t *testing.T) {
	c := newTestServer(t, "/deployment-files", func(t *testing.T, body map[string]any) (int, any) {
		if body["file_name"] != "A.java" || body["content"] != "code" {
			t.Errorf("unexpected body %v", body)
		}
		return http.StatusOK, Artifacts{Dockerfile: "FROM alpine", YAML: "kind: Job"}
	})

	art, err := c.GenerateArtifacts(context.Background(), "A.java", "code")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if art.Dockerfile != "FROM alpine" || art.YAML != "kind: Job" {
		t.Errorf("unexpected artifacts %+v", art)
	}
}

func TestHTTPClient_Deploy(t *testing.T) {
	c := newTestServer(t, "/deploy", func(t *testing.T, body map[string]any) (int, any) {
		files, _ := body["code_files"].([]any)
		if len(files) != 1 {
			t.Errorf("expected one code file, got %v", body["code_files"])
			return http.StatusBadRequest, `{}`
		}
		f := files[0].(map[string]any)
		if f["filename"] != "A.java" || f["content"] != EncodeBase64("class A {}") {
			t.Errorf("unexpected code file %v", f)
		}
		if body["job_yaml"] != EncodeBase64("kind: Job") {
			t.Errorf("job_yaml should be base64, got %v", body["job_yaml"])
		}
		return http.StatusOK, DeployResult{Status: "success", KubectlLogs: EncodeBase64("pod ok")}
	})

	payload := NewDeployPayload("A.java", "class A {}", Artifacts{Dockerfile: "FROM x", YAML: "kind: Job"})
	res, err := c.Deploy(context.Background(), payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Succeeded() {
		t.Errorf("expected success, got %q", res.Status)
	}

	logs, ok, err := res.Logs()
	if err != nil || !ok || logs != "pod ok" {
		t.Errorf("unexpected logs %q %v %v", logs, ok, err)
	}
}

func TestHTTPClient_GenerateUnitTest(t *testing.T) {
	c := newTestServer(t, "/unit-test", func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, map[string]string{"unit_test": "class ATest {}"}
	})

	code, err := c.GenerateUnitTest(context.Background(), "A.java", "class A {}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "class ATest {}" {
		t.Errorf("unexpected unit test %q", code)
	}
}

func TestHTTPClient_GenerateUnitTest_Missing(t *testing.T) {
	c := newTestServer(t, "/unit-test", func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, `{}`
	})

	_, err := c.GenerateUnitTest(context.Background(), "A.java", "x")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	c := newTestServer(t, "/deploy", func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, `not json`
	})

	_, err := c.Deploy(context.Background(), DeployPayload{})
	if !errors.Is(err, ErrMalformedResponse) {
		t.Errorf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestHTTPClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(HTTPClientConfig{BaseURL: url, Logger: discardLogger()})
	_, err := c.Transform(context.Background(), "x")
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("expected ErrRequestFailed, got %v", err)
	}
}

func TestHTTPClient_CustomEndpoints(t *testing.T) {
	c := newTestServer(t, "/v2/convert", func(t *testing.T, body map[string]any) (int, any) {
		return http.StatusOK, `{"result":{"converted_code":"ok"}}`
	})
	c.endpoints = Endpoints{Unified: "/v2/convert"}.withDefaults()

	if _, err := c.Transform(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.endpoints.Deploy != "/deploy" {
		t.Errorf("unset endpoints should keep defaults, got %q", c.endpoints.Deploy)
	}
}
