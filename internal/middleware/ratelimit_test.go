package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiterApp(t *testing.T) (*fiber.App, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := NewRateLimiter(rdb, "otp_rl", 3, time.Hour)
	app := fiber.New()
	app.Post("/otp", rl.ByKey(func(c *fiber.Ctx) string {
		return c.Get("X-Mobile")
	}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, mr
}

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	app, _ := newLimiterApp(t)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/otp", nil)
		req.Header.Set("X-Mobile", "9876543210")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i+1, resp.StatusCode)
		}
	}
}

func TestRateLimiterBlocksOverLimit(t *testing.T) {
	app, _ := newLimiterApp(t)

	var last int
	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("POST", "/otp", nil)
		req.Header.Set("X-Mobile", "9876543210")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		last = resp.StatusCode
	}
	if last != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429 on fourth request, got %d", last)
	}

	// a different mobile is unaffected
	req := httptest.NewRequest("POST", "/otp", nil)
	req.Header.Set("X-Mobile", "9123456780")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for fresh key, got %d", resp.StatusCode)
	}
}

func TestRateLimiterWindowExpires(t *testing.T) {
	app, mr := newLimiterApp(t)

	for i := 0; i < 4; i++ {
		req := httptest.NewRequest("POST", "/otp", nil)
		req.Header.Set("X-Mobile", "9876543210")
		if _, err := app.Test(req); err != nil {
			t.Fatalf("request failed: %v", err)
		}
	}

	mr.FastForward(2 * time.Hour)

	req := httptest.NewRequest("POST", "/otp", nil)
	req.Header.Set("X-Mobile", "9876543210")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 after window reset, got %d", resp.StatusCode)
	}
}
