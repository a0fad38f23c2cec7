package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mapwatch/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	svc := notifications.NewService("", 0)
	if err := svc.NotifyUnitSatisfied(context.Background(), "MAHROUS"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "file accepted",
			notify: func(svc notifications.Service) error {
				return svc.NotifyFileAccepted(context.Background(), "MAHROUS", "finished", "mahros_finished_points_20250830.kmz")
			},
			expectTitle:   "Mapwatch - File Received",
			expectMessage: "MAHROUS delivered finished: mahros_finished_points_20250830.kmz",
			expectTags:    "mapwatch,file,accepted",
		},
		{
			name: "unit satisfied",
			notify: func(svc notifications.Service) error {
				return svc.NotifyUnitSatisfied(context.Background(), "ALTAIRAT")
			},
			expectTitle:   "Mapwatch - Unit Complete",
			expectMessage: "All deliverables received from ALTAIRAT",
			expectTags:    "mapwatch,unit,satisfied",
		},
		{
			name: "urgent reminder",
			notify: func(svc notifications.Service) error {
				return svc.NotifyUrgentReminder(context.Background(), 2, []string{"MAHROUS", "ALTAIRAT"})
			},
			expectTitle:    "Mapwatch - Urgent",
			expectMessage:  "2 units still outstanding: MAHROUS, ALTAIRAT",
			expectTags:     "mapwatch,reminder,urgent",
			expectPriority: "high",
		},
		{
			name: "deadline summary",
			notify: func(svc notifications.Service) error {
				return svc.NotifyDeadlineReached(context.Background(), "20250830", 1, 2, 7)
			},
			expectTitle:   "Mapwatch - Deadline",
			expectMessage: "Period 20250830 closed: 7 satisfied, 2 partial, 1 pending",
			expectTags:    "mapwatch,deadline,summary",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("copy failed"), "inbox")
			},
			expectTitle:    "Mapwatch - Error",
			expectMessage:  "Error with inbox: copy failed",
			expectTags:     "mapwatch,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			svc := notifications.NewService(server.URL, 5*time.Second)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := notifications.NewService(server.URL, time.Second)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for 5xx response")
	}
}
