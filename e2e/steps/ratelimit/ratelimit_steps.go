package ratelimit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GetLastResponseStatus() int
	GetLastResponseHeader(key string) string
	LoadCase(name string) (json.RawMessage, error)
}

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}
	ctx.Step(`^I send (\d+) validation requests for "([^"]*)" from IP "([^"]*)"$`, steps.sendValidations)
	ctx.Step(`^the last response should be rate limited$`, steps.lastResponseRateLimited)
	ctx.Step(`^(\d+) of them should have been rate limited$`, steps.countRateLimited)
}

type ratelimitSteps struct {
	tc      TestContext
	limited int
}

// sendValidations spoofs the client IP through X-Forwarded-For so each
// scenario gets a fresh bucket.
func (s *ratelimitSteps) sendValidations(_ context.Context, n int, name, ip string) error {
	c, err := s.tc.LoadCase(name)
	if err != nil {
		return err
	}
	s.limited = 0
	headers := map[string]string{"X-Forwarded-For": ip}
	for range n {
		if err := s.tc.POST("/declarations/validate", c, headers); err != nil {
			return err
		}
		if s.tc.GetLastResponseStatus() == 429 {
			s.limited++
		}
	}
	return nil
}

func (s *ratelimitSteps) lastResponseRateLimited(context.Context) error {
	if got := s.tc.GetLastResponseStatus(); got != 429 {
		return fmt.Errorf("expected 429, got %d", got)
	}
	if retry, err := strconv.Atoi(s.tc.GetLastResponseHeader("Retry-After")); err != nil || retry < 1 {
		return fmt.Errorf("expected a positive Retry-After, got %q", s.tc.GetLastResponseHeader("Retry-After"))
	}
	return nil
}

func (s *ratelimitSteps) countRateLimited(_ context.Context, want int) error {
	if s.limited != want {
		return fmt.Errorf("expected %d rate limited responses, got %d", want, s.limited)
	}
	return nil
}
