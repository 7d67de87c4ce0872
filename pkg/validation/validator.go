// Package validation checks API requests with struct tags and configuration
// with a fluent collector.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/nodelyzer/pkg/nodes"
	"github.com/dd0wney/nodelyzer/pkg/simulation"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	MaxTargets      = 100
	MaxTargetLength = 100
	MaxNodes        = 200000
	MaxNameLength   = 200
	MaxUserIDLength = 128
)

func init() {
	validate = validator.New()
	mustRegister("network", func(fl validator.FieldLevel) bool {
		_, err := nodes.ParseNetwork(fl.Field().String())
		return err == nil
	})
	mustRegister("scenario", func(fl validator.FieldLevel) bool {
		_, err := simulation.ParseScenario(fl.Field().String())
		return err == nil
	})
	mustRegister("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
}

func mustRegister(tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// AnalyzeRequest runs the full pipeline over raw dump text or a node list
type AnalyzeRequest struct {
	Network  string           `json:"network" validate:"omitempty,network"`
	FileName string           `json:"fileName" validate:"omitempty,max=255"`
	Data     string           `json:"data" validate:"required_without=Nodes"`
	Nodes    []map[string]any `json:"nodes" validate:"required_without=Data,omitempty,max=200000"`
	Scenario string           `json:"scenario" validate:"omitempty,scenario"`
	Targets  []string         `json:"targets" validate:"omitempty,max=100,dive,max=100"`
}

// SimulateRequest applies a failure scenario to a node list
type SimulateRequest struct {
	Network  string           `json:"network" validate:"omitempty,network"`
	Nodes    []map[string]any `json:"nodes" validate:"required,min=1,max=200000"`
	Scenario string           `json:"scenario" validate:"omitempty,scenario"`
	Targets  []string         `json:"targets" validate:"omitempty,max=100,dive,max=100"`
}

// OptimizeRequest asks for placement advice over a node list
type OptimizeRequest struct {
	Network string           `json:"network" validate:"omitempty,network"`
	Nodes   []map[string]any `json:"nodes" validate:"required,min=1,max=200000"`
}

// DetectRequest classifies raw dump text
type DetectRequest struct {
	FileName string `json:"fileName" validate:"omitempty,max=255"`
	Data     string `json:"data" validate:"notblank"`
}

// ParseRequest parses raw dump text
type ParseRequest struct {
	Network  string `json:"network" validate:"omitempty,network"`
	FileName string `json:"fileName" validate:"omitempty,max=255"`
	Data     string `json:"data" validate:"notblank"`
}

// RecordMetrics carries optional stored metrics
type RecordMetrics struct {
	Gini             *float64 `json:"gini" validate:"omitempty,min=0,max=1"`
	Nakamoto         *int     `json:"nakamoto" validate:"omitempty,min=0"`
	ConnectivityLoss *string  `json:"connectivityLoss" validate:"omitempty,max=16"`
}

// RecordRequest creates a stored analysis
type RecordRequest struct {
	UserID   string         `json:"userId" validate:"required,notblank,max=128"`
	Name     string         `json:"name" validate:"required,notblank,max=200"`
	Network  string         `json:"network" validate:"required,network"`
	NodeData string         `json:"nodeData" validate:"required"`
	Metrics  *RecordMetrics `json:"metrics" validate:"omitempty"`
}

// RecordPatch partially updates a stored analysis; nil fields are untouched
type RecordPatch struct {
	Name     *string        `json:"name" validate:"omitempty,notblank,max=200"`
	NodeData *string        `json:"nodeData"`
	Metrics  *RecordMetrics `json:"metrics" validate:"omitempty"`
}

// RunRequest re-runs a stored analysis under a scenario
type RunRequest struct {
	Scenario string   `json:"scenario" validate:"omitempty,scenario"`
	Targets  []string `json:"targets" validate:"omitempty,max=100,dive,max=100"`
}

// Struct validates any request type carrying validate tags
func Struct(req any) error {
	if req == nil {
		return errors.New("request cannot be nil")
	}
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// ValidateAnalyzeRequest validates an analyze request
func ValidateAnalyzeRequest(req *AnalyzeRequest) error {
	if req == nil {
		return errors.New("analyze request cannot be nil")
	}
	return Struct(req)
}

// ValidateRecordPatch rejects patches that change nothing
func ValidateRecordPatch(req *RecordPatch) error {
	if req == nil {
		return errors.New("patch cannot be nil")
	}
	if req.Name == nil && req.NodeData == nil && req.Metrics == nil {
		return errors.New("patch: at least one of name, nodeData, metrics is required")
	}
	return Struct(req)
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required", "notblank":
			return fmt.Errorf("%s: field is required", field)
		case "required_without":
			return fmt.Errorf("%s: required when %s is absent", field, param)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "network":
			return fmt.Errorf("%s: unsupported network %q", field, e.Value())
		case "scenario":
			return fmt.Errorf("%s: unsupported scenario %q", field, e.Value())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
