package e2e

import (
	"github.com/cucumber/godog"

	"ahliwaris/e2e/steps/common"
	"ahliwaris/e2e/steps/declaration"
	"ahliwaris/e2e/steps/ratelimit"
)

// RegisterSteps registers all step definitions from modular packages
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	common.RegisterSteps(ctx, tc)
	declaration.RegisterSteps(ctx, tc)
	ratelimit.RegisterSteps(ctx, tc)
}
