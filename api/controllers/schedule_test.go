package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/CodeX93/freshbox-backend/internal/schedule"
)

func TestScheduleDates(t *testing.T) {
	handler := ScheduleDates(schedule.NewAllocator(1, 2), testLogger())

	for _, target := range []string{"", "?for=collection", "?for=delivery"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/dates"+target, nil)
		resp := httptest.NewRecorder()
		handler(resp, req)

		if resp.Code != http.StatusOK {
			t.Fatalf("target %q: expected 200, got %d", target, resp.Code)
		}
		var envelope struct {
			Data struct {
				Dates []schedule.DateOption `json:"dates"`
			} `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(envelope.Data.Dates) != schedule.DateOptionCount {
			t.Fatalf("target %q: expected %d dates, got %d", target, schedule.DateOptionCount, len(envelope.Data.Dates))
		}
	}
}

func TestScheduleDatesRejectsUnknownWindow(t *testing.T) {
	handler := ScheduleDates(schedule.NewAllocator(1, 2), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/dates?for=pickup", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestScheduleSlots(t *testing.T) {
	handler := ScheduleSlots()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule/slots", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var envelope struct {
		Data struct {
			Slots []schedule.TimeSlot `json:"slots"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data.Slots) != 6 {
		t.Fatalf("expected 6 slots, got %d", len(envelope.Data.Slots))
	}
	if envelope.Data.Slots[0].Label != "08:00 - 10:00" {
		t.Fatalf("unexpected first slot label %q", envelope.Data.Slots[0].Label)
	}
}
