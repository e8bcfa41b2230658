package ratelimit

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestUpdateFromHeaders(t *testing.T) {
	tests := []struct {
		name          string
		remain        string
		reset         string
		wantRemaining int
		wantKnown     bool
		wantErr       bool
	}{
		{name: "no headers", wantKnown: false},
		{name: "plain values", remain: "59", reset: "60", wantRemaining: 59, wantKnown: true},
		{name: "policy suffix", remain: "3, 60;w=60", reset: "12", wantRemaining: 3, wantKnown: true},
		{name: "missing reset", remain: "10", wantRemaining: 10, wantKnown: true},
		{name: "garbage remain", remain: "lots", wantErr: true},
		{name: "garbage reset", remain: "10", reset: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(zerolog.Nop())
			headers := http.Header{}
			if tt.remain != "" {
				headers.Set(HeaderRemaining, tt.remain)
			}
			if tt.reset != "" {
				headers.Set(HeaderReset, tt.reset)
			}

			err := tracker.UpdateFromHeaders(headers)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateFromHeaders() error = %v", err)
			}

			state := tracker.State()
			if state.Known != tt.wantKnown {
				t.Errorf("Known = %v, want %v", state.Known, tt.wantKnown)
			}
			if state.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", state.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestObserveTooManyRequests(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter string
		want       time.Duration
	}{
		{name: "seconds", retryAfter: "2", want: 2 * time.Second},
		{name: "missing header uses default", want: DefaultCooldown},
		{name: "capped", retryAfter: "3600", want: MaxWait},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(zerolog.Nop())
			headers := http.Header{}
			if tt.retryAfter != "" {
				headers.Set(HeaderRetryAfter, tt.retryAfter)
			}

			if got := tracker.ObserveTooManyRequests(headers); got != tt.want {
				t.Errorf("cooldown = %v, want %v", got, tt.want)
			}
			if !tracker.State().NeedsCriticalBlock() {
				t.Error("state should be critical after a 429")
			}
		})
	}
}

func TestWait_Healthy(t *testing.T) {
	tracker := NewTracker(zerolog.Nop())

	start := time.Now()
	if err := tracker.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Wait() in healthy state took %v", elapsed)
	}
}

func TestWait_Throttled(t *testing.T) {
	tracker := NewTracker(zerolog.Nop())
	tracker.SetThrottle(20 * time.Millisecond)

	headers := http.Header{}
	headers.Set(HeaderRemaining, "2")
	headers.Set(HeaderReset, "30")
	if err := tracker.UpdateFromHeaders(headers); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	if err := tracker.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait() returned after %v, want >= throttle", elapsed)
	}
}

func TestWait_CriticalHonoursContext(t *testing.T) {
	tracker := NewTracker(zerolog.Nop())
	headers := http.Header{}
	headers.Set(HeaderRetryAfter, "30")
	tracker.ObserveTooManyRequests(headers)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := tracker.Wait(ctx)
	if err != context.DeadlineExceeded {
		t.Fatalf("Wait() error = %v, want context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Wait() ignored context, took %v", elapsed)
	}
}
