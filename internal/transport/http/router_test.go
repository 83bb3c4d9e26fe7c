package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"

	"github.com/Gunvolt24/kbridge/internal/domain"
	"github.com/Gunvolt24/kbridge/internal/manifest"
	"github.com/Gunvolt24/kbridge/internal/ports/mocks"
	"github.com/Gunvolt24/kbridge/internal/registry"
	"github.com/Gunvolt24/kbridge/internal/subscription"
	rest "github.com/Gunvolt24/kbridge/internal/transport/http"
)

type noopLogger struct{}

func (noopLogger) Debugf(context.Context, string, ...any) {}
func (noopLogger) Infof(context.Context, string, ...any)  {}
func (noopLogger) Warnf(context.Context, string, ...any)  {}
func (noopLogger) Errorf(context.Context, string, ...any) {}

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func newRouter(subs *mocks.MockSubscriptionAdmin, deliveries *mocks.MockDeliveryReadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	// nil-указатель мока в интерфейсе — не nil, поэтому ветка
	if deliveries == nil {
		return rest.NewRouter(rest.NewHandler(subs, nil, noopLogger{}, 0), "")
	}
	return rest.NewRouter(rest.NewHandler(subs, deliveries, noopLogger{}, 0), "")
}

func TestPing(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := newRouter(mocks.NewMockSubscriptionAdmin(ctrl), nil)

	w := serve(r, http.MethodGet, "/ping")
	if w.Code != http.StatusOK || w.Body.String() != "pong" {
		t.Fatalf("unexpected response: %d %q", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("X-Request-ID header must be set")
	}
}

func TestListSubscriptions(t *testing.T) {
	ctrl := gomock.NewController(t)
	subs := mocks.NewMockSubscriptionAdmin(ctrl)
	subs.EXPECT().Subscriptions(gomock.Any()).Return([]domain.SubscriptionInfo{
		{Endpoint: "orders-log", Pollers: []string{"orders-log-1", "orders-log-2"}},
	})

	w := serve(newRouter(subs, nil), http.MethodGet, "/subscriptions")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d, body=%s", w.Code, w.Body.String())
	}
	var got []domain.SubscriptionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(got) != 1 || len(got[0].Pollers) != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestActivate_Statuses(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, http.StatusCreated},
		{"unknown", fmt.Errorf("%w: %q", manifest.ErrUnknownSubscription, "x"), http.StatusNotFound},
		{"duplicate", fmt.Errorf("subscription: %w", registry.ErrAlreadyActive), http.StatusConflict},
		{"invalid", &subscription.MissingPropertyError{Name: "client.id"}, http.StatusBadRequest},
		{"broker", errors.New("dial tcp: refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			subs := mocks.NewMockSubscriptionAdmin(ctrl)
			subs.EXPECT().ActivateByName(gomock.Any(), "orders-log").Return(tt.err)

			w := serve(newRouter(subs, nil), http.MethodPost, "/subscriptions/orders-log")
			if w.Code != tt.want {
				t.Fatalf("want %d, got %d, body=%s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestDeactivate(t *testing.T) {
	ctrl := gomock.NewController(t)
	subs := mocks.NewMockSubscriptionAdmin(ctrl)
	gomock.InOrder(
		subs.EXPECT().DeactivateByName(gomock.Any(), "orders-log").Return(2, nil),
		subs.EXPECT().DeactivateByName(gomock.Any(), "nope").Return(0, manifest.ErrUnknownSubscription),
	)
	r := newRouter(subs, nil)

	w := serve(r, http.MethodDelete, "/subscriptions/orders-log")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var body struct {
		Cancelled int `json:"cancelled"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Cancelled != 2 {
		t.Fatalf("unexpected body %s (err=%v)", w.Body.String(), err)
	}

	if w := serve(r, http.MethodDelete, "/subscriptions/nope"); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestListDeliveries(t *testing.T) {
	ctrl := gomock.NewController(t)
	subs := mocks.NewMockSubscriptionAdmin(ctrl)
	deliveries := mocks.NewMockDeliveryReadService(ctrl)

	gomock.InOrder(
		deliveries.EXPECT().RecentDeliveries(gomock.Any(), "", 20, 0).
			Return([]*domain.DeliveredRecord{{Endpoint: "a", Topic: "t", Offset: 1}}, nil),
		deliveries.EXPECT().RecentDeliveries(gomock.Any(), "audit", 100, 7).Return(nil, nil),
		deliveries.EXPECT().RecentDeliveries(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("db error")),
	)
	r := newRouter(subs, deliveries)

	w := serve(r, http.MethodGet, "/deliveries")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var got []*domain.DeliveredRecord
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || len(got) != 1 || got[0].Offset != 1 {
		t.Fatalf("unexpected body %s (err=%v)", w.Body.String(), err)
	}

	if w := serve(r, http.MethodGet, "/deliveries?endpoint=audit&limit=500&offset=7"); w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/deliveries"); w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
	// до сервиса не доходит
	if w := serve(r, http.MethodGet, "/deliveries?limit=ten"); w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
}

func TestListDeliveries_ArchiveDisabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	w := serve(newRouter(mocks.NewMockSubscriptionAdmin(ctrl), nil), http.MethodGet, "/deliveries")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("want 503, got %d", w.Code)
	}
}
