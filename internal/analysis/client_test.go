package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func newUploadServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	router := mux.NewRouter()
	router.HandleFunc(UploadPath, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}).Methods(http.MethodPost)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, &hits
}

func TestUploadSendsMultipartFile(t *testing.T) {
	server, hits := newUploadServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Request-ID"); got != "req-1" {
			t.Errorf("request id mismatch: %q", got)
		}
		file, header, err := r.FormFile(FileField)
		if err != nil {
			t.Errorf("form file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "leaf-bytes" {
			t.Errorf("unexpected payload %q", data)
		}
		if header.Filename != "leaf.png" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"severity":"82 % infected","image_url":"/img/42.png"}`))
	})

	client, err := New(server.URL, WithHTTPClient(server.Client()), WithRequestIDs(func() string { return "req-1" }))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	result, err := client.Upload(context.Background(), writeFixture(t, "leaf.png", "leaf-bytes"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if token, ok := result.SeverityToken(); !ok || token != "82" {
		t.Fatalf("severity token = %q (%v), want 82", token, ok)
	}
	if got := client.ResolveImageURL(result.ImageURL); got != server.URL+"/img/42.png" {
		t.Fatalf("resolved image url = %q", got)
	}
	if atomic.LoadInt32(hits) != 1 {
		t.Fatalf("expected exactly one request, got %d", *hits)
	}
}

func TestUploadErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantMsg string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "server message verbatim",
			status:  http.StatusRequestEntityTooLarge,
			body:    `{"error":"file too large"}`,
			wantMsg: "file too large",
			check: func(t *testing.T, err error) {
				var serverErr *ServerError
				if !errors.As(err, &serverErr) || serverErr.StatusCode != http.StatusRequestEntityTooLarge {
					t.Fatalf("expected ServerError 413, got %#v", err)
				}
			},
		},
		{
			name:    "unparsable error body falls back to status",
			status:  http.StatusInternalServerError,
			body:    `<html>boom</html>`,
			wantMsg: "server error: 500",
		},
		{
			name:    "error body without message",
			status:  http.StatusBadGateway,
			body:    `{"detail":"upstream"}`,
			wantMsg: "server error: 502",
		},
		{
			name:    "error body with trailing garbage falls back to status",
			status:  http.StatusBadRequest,
			body:    `{"error":"x"}junk`,
			wantMsg: "server error: 400",
		},
		{
			name:    "success body with trailing garbage",
			status:  http.StatusOK,
			body:    `{"severity":"82 % infected"}<html>oops</html>`,
			wantMsg: "unexpected response from server",
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected ParseError, got %T", err)
				}
			},
		},
		{
			name:    "null success body",
			status:  http.StatusOK,
			body:    `null`,
			wantMsg: "unexpected response from server",
		},
		{
			name:    "success body not json",
			status:  http.StatusOK,
			body:    `not json`,
			wantMsg: "unexpected response from server",
			check: func(t *testing.T, err error) {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("expected ParseError, got %T", err)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server, _ := newUploadServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			client, err := New(server.URL, WithHTTPClient(server.Client()))
			if err != nil {
				t.Fatalf("new client: %v", err)
			}
			_, err = client.Upload(context.Background(), writeFixture(t, "leaf.jpg", "x"))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := UserMessage(err); got != tc.wantMsg {
				t.Fatalf("user message = %q, want %q", got, tc.wantMsg)
			}
			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}

func TestUploadTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	origin := server.URL
	server.Close()

	client, err := New(origin)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = client.Upload(context.Background(), writeFixture(t, "leaf.png", "x"))
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %T (%v)", err, err)
	}
	if UserMessage(err) == "" || !strings.Contains(UserMessage(err), "/upload") {
		t.Fatalf("transport message should carry the transport text, got %q", UserMessage(err))
	}
}

func TestUploadCanceledContext(t *testing.T) {
	server, _ := newUploadServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	client, err := New(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Upload(ctx, writeFixture(t, "leaf.png", "x"))
	if !IsCanceled(err) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestUploadWithoutPath(t *testing.T) {
	client, err := New("http://localhost:5000")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := client.Upload(context.Background(), ""); !errors.Is(err, ErrNoFile) {
		t.Fatalf("expected ErrNoFile, got %v", err)
	}
}

func TestParseOrigin(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:5000", want: "http://localhost:5000"},
		{in: "https://phyto.example.com/", want: "https://phyto.example.com"},
		{in: "ftp://example.com", wantErr: true},
		{in: "http://", wantErr: true},
		{in: "http://example.com/api", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOrigin(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("ParseOrigin(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveImageURL(t *testing.T) {
	client, err := New("http://localhost:5000")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	tests := map[string]string{
		"/img/42.png":          "http://localhost:5000/img/42.png",
		"img/42.png":           "http://localhost:5000/img/42.png",
		"/static/out.png?v=2":  "http://localhost:5000/static/out.png?v=2",
		"//evil.example/x.png": "http://localhost:5000//evil.example/x.png",
		"http://other/x":       "http://localhost:5000/http://other/x",
		"/a/../img.png":        "http://localhost:5000/a/../img.png",
		"":                     "",
	}
	for in, want := range tests {
		if got := client.ResolveImageURL(in); got != want {
			t.Errorf("ResolveImageURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFetchImage(t *testing.T) {
	router := mux.NewRouter()
	router.HandleFunc("/results/{id:[a-zA-Z0-9-]+}.png", func(w http.ResponseWriter, r *http.Request) {
		if mux.Vars(r)["id"] != "abc" {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "unknown result"})
			return
		}
		_, _ = w.Write([]byte("png"))
	}).Methods(http.MethodGet)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client, err := New(server.URL, WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	body, err := client.FetchImage(context.Background(), client.ResolveImageURL("/results/abc.png"))
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	data, _ := io.ReadAll(body)
	body.Close()
	if string(data) != "png" {
		t.Fatalf("unexpected body %q", data)
	}

	_, err = client.FetchImage(context.Background(), client.ResolveImageURL("/results/zzz.png"))
	if got := UserMessage(err); got != "unknown result" {
		t.Fatalf("missing image message = %q", got)
	}
}
