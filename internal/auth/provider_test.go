package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func userInfoServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The access token must travel as a bearer header.
		if r.Header.Get("Authorization") == "" {
			t.Error("expected an Authorization header on the userinfo call")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchUser_Success(t *testing.T) {
	srv := userInfoServer(t, http.StatusOK,
		`{"id":"123","name":"Ana","email":"ana@example.com","picture":"https://cdn.example/a.png"}`)

	user, err := NewProvider(srv.URL).FetchUser(context.Background(), "some-token")
	if err != nil {
		t.Fatalf("FetchUser() error = %v", err)
	}
	if user.ID != "123" || user.Name != "Ana" {
		t.Errorf("profile = %+v, want id 123 and name Ana", user)
	}
	if user.Picture != "https://cdn.example/a.png" {
		t.Errorf("Picture = %q, want the provider avatar", user.Picture)
	}
}

func TestFetchUser_UpstreamRejects(t *testing.T) {
	srv := userInfoServer(t, http.StatusUnauthorized, `{"error":"invalid_token"}`)

	if _, err := NewProvider(srv.URL).FetchUser(context.Background(), "bad"); err == nil {
		t.Fatal("FetchUser() should fail when the provider rejects the token")
	}
}

func TestFetchUser_IncompleteProfile(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing id", `{"name":"Ana"}`},
		{"missing name", `{"id":"123"}`},
		{"malformed JSON", `{nope`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := userInfoServer(t, http.StatusOK, tt.body)
			if _, err := NewProvider(srv.URL).FetchUser(context.Background(), "tok"); err == nil {
				t.Error("FetchUser() should reject an unusable profile")
			}
		})
	}
}
