package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kbediako/rentpadi/internal/domain/model"
	"github.com/kbediako/rentpadi/internal/repo/memory"
	authsvc "github.com/kbediako/rentpadi/internal/services/auth"
	unlocksvc "github.com/kbediako/rentpadi/internal/services/unlocks"
	"github.com/kbediako/rentpadi/internal/transport/http/dto"
)

func newUnlockHandlerForTest(t *testing.T) (*UnlockHandler, *memory.EntitlementRepo) {
	t.Helper()

	records := memory.NewEntitlementRepo()
	properties := memory.NewPropertyRepo()
	properties.Seed(model.Property{
		OwnerID:       501,
		OwnerFullName: "Yaw Darko",
		OwnerPhone:    "+233541234567",
		Title:         "Single room self-contained, Madina",
		City:          "Accra",
		Available:     true,
	})

	service := unlocksvc.NewService(unlocksvc.Dependencies{
		Properties: properties,
		Records:    records,
		Ledger:     memory.NewUnlockLedger(records),
	})

	return NewUnlockHandler(service), records
}

func unlockRequest(method string, propertyID int64, userID int64) *http.Request {
	req := httptest.NewRequest(method, "/v1/properties/"+strconv.FormatInt(propertyID, 10)+"/unlock", nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("propertyID", strconv.FormatInt(propertyID, 10))
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	if userID > 0 {
		req = req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{
			UserID: userID,
			SID:    "sid-test",
			Role:   "USER",
		}))
	}
	return req
}

func ptrNow() *time.Time {
	now := time.Now().UTC()
	return &now
}

func TestUnlockReturnsOwnerContact(t *testing.T) {
	handler, _ := newUnlockHandlerForTest(t)

	rr := httptest.NewRecorder()
	handler.Unlock(rr, unlockRequest(http.MethodPost, 1, 9))

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var payload dto.UnlockSuccessResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success || payload.AlreadyUnlocked {
		t.Fatalf("unexpected payload flags: %+v", payload)
	}
	if payload.Owner.Phone != "+233541234567" {
		t.Fatalf("missing owner phone in payload: %+v", payload.Owner)
	}
	if remaining, ok := payload.ContactsRemaining.(float64); !ok || remaining != 2 {
		t.Fatalf("expected contacts_remaining=2, got %v", payload.ContactsRemaining)
	}

	rr = httptest.NewRecorder()
	handler.Unlock(rr, unlockRequest(http.MethodPost, 1, 9))
	if rr.Code != http.StatusOK {
		t.Fatalf("repeat unlock status: got %d want %d", rr.Code, http.StatusOK)
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode repeat response: %v", err)
	}
	if !payload.AlreadyUnlocked {
		t.Fatalf("repeat unlock should set already_unlocked")
	}
}

func TestUnlockExhaustedQuotaReturns402WithTiers(t *testing.T) {
	handler, records := newUnlockHandlerForTest(t)
	records.Seed(model.EntitlementRecord{
		UserID:                9,
		FreeContactsRemaining: 0,
		FreeContactsResetAt:   ptrNow(),
		SubscriptionTier:      "FREE",
	})

	rr := httptest.NewRecorder()
	handler.Unlock(rr, unlockRequest(http.MethodPost, 1, 9))

	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("unexpected status: got %d want %d body=%s", rr.Code, http.StatusPaymentRequired, rr.Body.String())
	}

	var payload dto.UnlockDeniedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode denial: %v", err)
	}
	if !payload.RequiresSubscription {
		t.Fatalf("denial should set requires_subscription")
	}
	if payload.Error != "FREE_CONTACTS_EXHAUSTED" {
		t.Fatalf("unexpected denial code: %q", payload.Error)
	}
	if len(payload.SubscriptionTiers) != 3 {
		t.Fatalf("expected 3 upsell tiers, got %d", len(payload.SubscriptionTiers))
	}
}

func TestUnlockUnknownPropertyIs404(t *testing.T) {
	handler, _ := newUnlockHandlerForTest(t)

	rr := httptest.NewRecorder()
	handler.Unlock(rr, unlockRequest(http.MethodPost, 404, 9))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}

func TestUnlockRequiresAuth(t *testing.T) {
	handler, _ := newUnlockHandlerForTest(t)

	rr := httptest.NewRecorder()
	handler.Unlock(rr, unlockRequest(http.MethodPost, 1, 0))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestUnlockStatusEndpoint(t *testing.T) {
	handler, _ := newUnlockHandlerForTest(t)

	rr := httptest.NewRecorder()
	handler.Unlock(rr, unlockRequest(http.MethodPost, 1, 9))
	if rr.Code != http.StatusOK {
		t.Fatalf("unlock: got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.Status(rr, unlockRequest(http.MethodGet, 1, 9))
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d body=%s", rr.Code, rr.Body.String())
	}

	var payload dto.UnlockStatusResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !payload.IsUnlocked {
		t.Fatalf("expected is_unlocked=true")
	}
	if payload.FreeContactsRemaining != 2 {
		t.Fatalf("expected free_contacts_remaining=2, got %d", payload.FreeContactsRemaining)
	}
	if payload.SubscriptionTier != "FREE" {
		t.Fatalf("expected FREE tier, got %q", payload.SubscriptionTier)
	}
}
