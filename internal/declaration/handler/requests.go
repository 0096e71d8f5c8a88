package handler

import (
	"reflect"
	"strings"

	"ahliwaris/internal/declaration/models"
	dErrors "ahliwaris/pkg/domain-errors"
)

const (
	maxHeirs      = 200
	maxBatchCases = 50
)

// CaseRequest is the body of POST /declarations and POST /declarations/validate.
type CaseRequest struct {
	models.Case
}

// Normalize trims every string in the case.
func (r *CaseRequest) Normalize() {
	sanitize(r)
}

// Validate only bounds the request; the heir rules are enforced by the service
// so that every violation is reported together.
func (r *CaseRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Heirs) > maxHeirs {
		return dErrors.New(dErrors.CodeValidation, "at most 200 heirs may be declared")
	}
	return nil
}

// BatchRequest is the body of POST /declarations/batch.
type BatchRequest struct {
	Cases []models.Case `json:"cases"`
}

func (r *BatchRequest) Normalize() {
	sanitize(r)
}

func (r *BatchRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Cases) == 0 {
		return dErrors.New(dErrors.CodeValidation, "cases is required")
	}
	if len(r.Cases) > maxBatchCases {
		return dErrors.New(dErrors.CodeValidation, "at most 50 cases per batch")
	}
	for _, c := range r.Cases {
		if len(c.Heirs) > maxHeirs {
			return dErrors.New(dErrors.CodeValidation, "at most 200 heirs may be declared")
		}
	}
	return nil
}

// sanitize trims whitespace from every string reachable from v, following
// nested structs, pointers and slices.
func sanitize(v any) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return
	}
	trim(val.Elem())
}

func trim(val reflect.Value) {
	switch val.Kind() {
	case reflect.String:
		if val.CanSet() {
			val.SetString(strings.TrimSpace(val.String()))
		}
	case reflect.Ptr:
		if !val.IsNil() {
			trim(val.Elem())
		}
	case reflect.Struct:
		for i := 0; i < val.NumField(); i++ {
			if val.Type().Field(i).IsExported() {
				trim(val.Field(i))
			}
		}
	case reflect.Slice:
		for i := 0; i < val.Len(); i++ {
			trim(val.Index(i))
		}
	}
}
