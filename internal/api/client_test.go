package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New(srv.URL)
	c.TokenSource = func() string { return "test-token" }
	return c
}

func TestEnvelopeUnwrap(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization = %q", got)
		}
		w.Write([]byte(`{"isSuccess":true,"data":{"accessToken":"tok-1"}}`))
	})
	token, err := c.Login(context.Background(), "a@b.c", "pw")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if token != "tok-1" {
		t.Fatalf("token = %q", token)
	}
}

func TestServerMessageVerbatim(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isSuccess":false,"message":"Worker is already assigned to this task."}`))
	})
	err := c.AssignWorkerToTask(context.Background(), "t-1", "w-1")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "Worker is already assigned to this task." {
		t.Fatalf("message rewritten: %q", apiErr.Message)
	}
}

func TestNonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"isSuccess":false,"message":"Invalid quantity"}`))
	})
	err := c.IncreaseMaterial(context.Background(), "m-1", -5)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	for name, handler := range map[string]http.HandlerFunc{
		"401": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
		"token-expired header": func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Token-Expired", "true")
			w.WriteHeader(http.StatusForbidden)
		},
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, handler)
			expired := false
			c.OnSessionExpired = func() { expired = true }
			_, err := c.Projects(context.Background())
			if !errors.Is(err, ErrSessionExpired) {
				t.Fatalf("err = %v, want ErrSessionExpired", err)
			}
			if !expired {
				t.Fatal("OnSessionExpired was not called")
			}
		})
	}
}

func TestGarbledResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>proxy error</html>`))
	})
	_, err := c.Projects(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
}

func TestListShapes(t *testing.T) {
	t.Run("bare array", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"isSuccess":true,"data":[{"id":"p-1","name":"Depot"}]}`))
		})
		got, err := c.Projects(context.Background())
		if err != nil || len(got) != 1 || got[0].ID != "p-1" {
			t.Fatalf("projects = %+v err = %v", got, err)
		}
	})
	t.Run("items wrapper", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"isSuccess":true,"data":{"items":[{"workerId":"w-1","fullName":"Mira Voss"}]}}`))
		})
		got, err := c.Workers(context.Background(), 1, 20)
		if err != nil || len(got) != 1 || got[0].ID != "w-1" {
			t.Fatalf("workers = %+v err = %v", got, err)
		}
	})
	t.Run("null data", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"isSuccess":true,"data":null}`))
		})
		got, err := c.WorkLogs(context.Background())
		if err != nil || len(got) != 0 {
			t.Fatalf("logs = %+v err = %v", got, err)
		}
	})
}

// The backend routes the material and suspension mutations as PUT and
// binds them by exact body keys, so method or key drift fails with a
// 405 or a zero-valued bind.
func TestMutationWireContract(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]any
	}
	var got call
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = call{method: r.Method, path: r.URL.Path}
		_ = json.NewDecoder(r.Body).Decode(&got.body)
		w.Write([]byte(`{"isSuccess":true}`))
	})

	cases := map[string]struct {
		do   func() error
		want call
	}{
		"increase": {
			do: func() error { return c.IncreaseMaterial(context.Background(), "m-1", 5) },
			want: call{
				method: http.MethodPut,
				path:   "/api/v1/material/increase",
				body:   map[string]any{"id": "m-1", "increaseBy": float64(5)},
			},
		},
		"update": {
			do: func() error { return c.UpdateMaterial(context.Background(), "m-1", 12) },
			want: call{
				method: http.MethodPut,
				path:   "/api/v1/material/update",
				body:   map[string]any{"id": "m-1", "quantity": float64(12)},
			},
		},
		"create": {
			do: func() error { return c.CreateMaterial(context.Background(), "p-1", "Rebar", 40, "kg") },
			want: call{
				method: http.MethodPost,
				path:   "/api/v1/material/create",
				body:   map[string]any{"projectId": "p-1", "name": "Rebar", "TotalQuantity": float64(40), "unit": "kg"},
			},
		},
		"suspend worker": {
			do:   func() error { return c.SuspendWorker(context.Background(), "w-1") },
			want: call{method: http.MethodPut, path: "/api/v1/worker/w-1/suspend"},
		},
		"retain worker": {
			do:   func() error { return c.RetainWorker(context.Background(), "w-1") },
			want: call{method: http.MethodPut, path: "/api/v1/worker/w-1/retain"},
		},
		"suspend supervisor": {
			do:   func() error { return c.SuspendSupervisor(context.Background(), "s-1") },
			want: call{method: http.MethodPut, path: "/api/v1/supervisors/s-1/suspend"},
		},
		"retain supervisor": {
			do:   func() error { return c.RetainSupervisor(context.Background(), "s-1") },
			want: call{method: http.MethodPut, path: "/api/v1/supervisors/s-1/retain"},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got = call{}
			if err := tc.do(); err != nil {
				t.Fatalf("call: %v", err)
			}
			if got.method != tc.want.method || got.path != tc.want.path {
				t.Fatalf("sent %s %s, want %s %s", got.method, got.path, tc.want.method, tc.want.path)
			}
			if !reflect.DeepEqual(got.body, tc.want.body) {
				t.Fatalf("body = %v, want %v", got.body, tc.want.body)
			}
		})
	}
}

func TestSupervisorWorkersRoute(t *testing.T) {
	var path string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"isSuccess":true,"data":[{"workerId":"w-1","fullName":"Mira Voss"}]}`))
	})
	workers, err := c.SupervisorWorkers(context.Background(), "s-1")
	if err != nil || len(workers) != 1 {
		t.Fatalf("workers = %+v err = %v", workers, err)
	}
	if path != "/api/v1/worker/supervisor/s-1/assigned" {
		t.Fatalf("path = %q", path)
	}
}

// First use can come from a fan-out, so the client must be safe to
// share without any prior serial call.
func TestConcurrentFirstUse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isSuccess":true}`))
	})
	if c.HTTPClient == nil {
		t.Fatal("New must initialize HTTPClient")
	}
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.RemoveWorkerFromProject(context.Background(), "w-1", "p-1")
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
}

func TestWorkLogPhotoAbsolutized(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"isSuccess":true,"data":[{"id":"l-1","photosUrls":"uploads\\p.jpg"}]}`))
	})
	logs, err := c.WorkLogs(context.Background())
	if err != nil || len(logs) != 1 {
		t.Fatalf("logs = %+v err = %v", logs, err)
	}
	want := c.BaseURL + "/uploads/p.jpg"
	if logs[0].PhotoURLs[0] != want {
		t.Fatalf("photo = %q, want %q", logs[0].PhotoURLs[0], want)
	}
}
