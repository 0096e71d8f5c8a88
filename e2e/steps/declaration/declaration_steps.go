package declaration

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any, headers map[string]string) error
	GET(path string, headers map[string]string) error
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastResponseBody() []byte
	LoadCase(name string) (json.RawMessage, error)
	Remember(key, value string)
	Recall(key string) string
}

const auditPollTimeout = 10 * time.Second

func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &declarationSteps{tc: tc}

	ctx.Step(`^a case from "([^"]*)"$`, steps.caseFrom)
	ctx.Step(`^I validate the case$`, steps.validateCase)
	ctx.Step(`^I issue the case$`, steps.issueCase)
	ctx.Step(`^I assemble a batch of "([^"]*)" and "([^"]*)"$`, steps.assembleBatch)
	ctx.Step(`^I fetch the issued declaration$`, steps.fetchIssued)
	ctx.Step(`^I fetch the issued document as text$`, steps.fetchDocumentText)
	ctx.Step(`^the document text should contain "([^"]*)"$`, steps.textShouldContain)
	ctx.Step(`^the batch should contain (\d+) documents$`, steps.batchShouldContain)
	ctx.Step(`^the first violation should be "([^"]*)"$`, steps.firstViolationShouldBe)
	ctx.Step(`^the audit trail should record "([^"]*)"$`, steps.auditTrailShouldRecord)
}

type declarationSteps struct {
	tc      TestContext
	current json.RawMessage
}

func (s *declarationSteps) caseFrom(_ context.Context, name string) error {
	c, err := s.tc.LoadCase(name)
	if err != nil {
		return err
	}
	s.current = c
	return nil
}

func (s *declarationSteps) validateCase(context.Context) error {
	return s.tc.POST("/declarations/validate", s.current, nil)
}

func (s *declarationSteps) issueCase(context.Context) error {
	if err := s.tc.POST("/declarations", s.current, nil); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	v, err := s.tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s.tc.Remember("declaration_id", fmt.Sprint(v))
	return nil
}

func (s *declarationSteps) assembleBatch(_ context.Context, first, second string) error {
	a, err := s.tc.LoadCase(first)
	if err != nil {
		return err
	}
	b, err := s.tc.LoadCase(second)
	if err != nil {
		return err
	}
	return s.tc.POST("/declarations/batch", map[string]any{"cases": []json.RawMessage{a, b}}, nil)
}

func (s *declarationSteps) issuedPath() (string, error) {
	declID := s.tc.Recall("declaration_id")
	if declID == "" {
		return "", fmt.Errorf("no declaration has been issued in this scenario")
	}
	return "/declarations/" + declID, nil
}

func (s *declarationSteps) fetchIssued(context.Context) error {
	path, err := s.issuedPath()
	if err != nil {
		return err
	}
	return s.tc.GET(path, nil)
}

func (s *declarationSteps) fetchDocumentText(context.Context) error {
	path, err := s.issuedPath()
	if err != nil {
		return err
	}
	return s.tc.GET(path+"/document?format=text", nil)
}

func (s *declarationSteps) textShouldContain(_ context.Context, want string) error {
	if body := string(s.tc.GetLastResponseBody()); !strings.Contains(body, want) {
		return fmt.Errorf("expected document to contain %q", want)
	}
	return nil
}

func (s *declarationSteps) batchShouldContain(_ context.Context, n int) error {
	v, err := s.tc.GetResponseField("documents")
	if err != nil {
		return err
	}
	docs, ok := v.([]any)
	if !ok || len(docs) != n {
		return fmt.Errorf("expected %d documents, got %v", n, v)
	}
	return nil
}

func (s *declarationSteps) firstViolationShouldBe(_ context.Context, kind string) error {
	v, err := s.tc.GetResponseField("violations.0.kind")
	if err != nil {
		return err
	}
	if v != kind {
		return fmt.Errorf("expected first violation %q, got %v", kind, v)
	}
	return nil
}

// auditTrailShouldRecord polls because audit events travel through the
// outbox relay before they are readable.
func (s *declarationSteps) auditTrailShouldRecord(_ context.Context, action string) error {
	path, err := s.issuedPath()
	if err != nil {
		return err
	}
	deadline := time.Now().Add(auditPollTimeout)
	for {
		if err := s.tc.GET(path+"/audit", nil); err != nil {
			return err
		}
		if strings.Contains(string(s.tc.GetLastResponseBody()), `"action":"`+action+`"`) {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("audit trail never recorded %q: %s", action, s.tc.GetLastResponseBody())
		}
		time.Sleep(250 * time.Millisecond)
	}
}
