package handler

import (
	"errors"
	"time"

	"ahliwaris/internal/declaration/document"
	"ahliwaris/internal/declaration/models"
	"ahliwaris/internal/declaration/scenario"
	"ahliwaris/internal/declaration/service"
	dErrors "ahliwaris/pkg/domain-errors"
	"ahliwaris/pkg/platform/audit"
)

// ValidateResponse is returned by POST /declarations/validate for an accepted case.
type ValidateResponse struct {
	Valid    bool   `json:"valid"`
	Scenario int    `json:"scenario"`
	Heirs    int    `json:"heirs"`
	Name     string `json:"scenario_name"`
}

// RejectionResponse is the 422 body listing every violated rule.
type RejectionResponse struct {
	Error            string              `json:"error"`
	ErrorDescription string              `json:"error_description"`
	Violations       []ViolationResponse `json:"violations"`
	// CaseIndex locates the rejected case in a batch.
	CaseIndex        *int                `json:"case_index,omitempty"`
}

type ViolationResponse struct {
	Kind      string `json:"kind"`
	Field     string `json:"field,omitempty"`
	HeirIndex *int   `json:"heir_index,omitempty"`
	HeirName  string `json:"heir_name,omitempty"`
	Message   string `json:"message"`
}

// DeclarationResponse is an issued declaration.
type DeclarationResponse struct {
	ID        string               `json:"id"`
	Scenario  int                  `json:"scenario"`
	IssuedAt  time.Time            `json:"issued_at"`
	RequestID string               `json:"request_id,omitempty"`
	Deceased  models.DeceasedInput `json:"deceased"`
	Heirs     []models.HeirInput   `json:"heirs"`
	Document  document.Document    `json:"document"`
}

type BatchResponse struct {
	Documents []document.Document `json:"documents"`
}

type AuditEventResponse struct {
	Category  string    `json:"category"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Decision  string    `json:"decision,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	RequestID string    `json:"request_id,omitempty"`
}

type AuditTrailResponse struct {
	DeclarationID string               `json:"declaration_id"`
	Events        []AuditEventResponse `json:"events"`
}

func FromDeclaration(decl *models.Declaration) *DeclarationResponse {
	return &DeclarationResponse{
		ID:        decl.ID.String(),
		Scenario:  decl.Scenario,
		IssuedAt:  decl.IssuedAt,
		RequestID: decl.RequestID,
		Deceased:  decl.Deceased,
		Heirs:     decl.Heirs,
		Document:  decl.Document,
	}
}

func FromValidated(vc *scenario.ValidatedCase) *ValidateResponse {
	return &ValidateResponse{
		Valid:    true,
		Scenario: vc.Scenario().ID(),
		Heirs:    vc.HeirCount(),
		Name:     vc.Scenario().String(),
	}
}

func FromAuditTrail(declID string, events []audit.Event) *AuditTrailResponse {
	out := make([]AuditEventResponse, len(events))
	for i, e := range events {
		out[i] = AuditEventResponse{
			Category:  string(e.Category),
			Action:    e.Action,
			Timestamp: e.Timestamp,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RequestID: e.RequestID,
		}
	}
	return &AuditTrailResponse{DeclarationID: declID, Events: out}
}

// rejection builds the 422 body from an error carrying violations.
func rejection(err error) (*RejectionResponse, bool) {
	violations, ok := scenario.AsValidationErrors(err)
	if !ok {
		return nil, false
	}
	resp := &RejectionResponse{
		Error:            string(dErrors.CodeUnprocessable),
		ErrorDescription: "the case does not satisfy its declared scenario",
		Violations:       make([]ViolationResponse, len(violations)),
	}
	for i, v := range violations {
		vr := ViolationResponse{
			Kind:     string(v.Kind),
			Field:    v.Field,
			HeirName: v.HeirName,
			Message:  v.Message,
		}
		if v.HeirIndex >= 0 {
			idx := v.HeirIndex
			vr.HeirIndex = &idx
		}
		resp.Violations[i] = vr
	}
	var batchErr *service.BatchError
	if errors.As(err, &batchErr) {
		idx := batchErr.Index
		resp.CaseIndex = &idx
	}
	return resp, true
}
