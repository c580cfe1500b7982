package types

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// StageChangeRequest asks for an admin stage move.
type StageChangeRequest struct {
	TargetStage int  `json:"target_stage" validate:"required,min=1,max=6"`
	Confirm     bool `json:"confirm"`
}

// BlurRequest toggles the premium-content blur flag.
type BlurRequest struct {
	Blurred *bool `json:"blurred" validate:"required"`
}

// WizardStartRequest opens a wizard session. The context is carried into every step.
type WizardStartRequest struct {
	HumanContext string            `json:"human_context,omitempty" validate:"max=8000"`
	HumanAnswers map[string]string `json:"human_answers,omitempty"`
}

// GenerateRequest adds context before the current step is generated.
type GenerateRequest struct {
	HumanContext string            `json:"human_context,omitempty" validate:"max=8000"`
	HumanAnswers map[string]string `json:"human_answers,omitempty"`
}

// RefineRequest re-generates the current step with extra context.
type RefineRequest struct {
	Context string `json:"context" validate:"required,min=1,max=8000"`
}

// SwotItemRequest is a SWOT entry to append.
type SwotItemRequest struct {
	Content    string `json:"content" validate:"required,min=1"`
	Confidence string `json:"confidence,omitempty" validate:"omitempty,max=40"`
	Source     string `json:"source,omitempty" validate:"omitempty,max=200"`
}

// FrameworkUpdateRequest replaces one framework fragment. Data is decoded through
// the same normalization boundary as backend payloads.
type FrameworkUpdateRequest struct {
	Data json.RawMessage `json:"data" validate:"required"`
}

// Validate validates the StageChangeRequest using the validator.
func (r *StageChangeRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the BlurRequest using the validator.
func (r *BlurRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the WizardStartRequest using the validator.
func (r *WizardStartRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the GenerateRequest using the validator.
func (r *GenerateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the RefineRequest using the validator.
func (r *RefineRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SwotItemRequest using the validator.
func (r *SwotItemRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the FrameworkUpdateRequest using the validator.
func (r *FrameworkUpdateRequest) Validate() error {
	return validate.Struct(r)
}

// Item converts the request into a SWOT item.
func (r *SwotItemRequest) Item() SwotItem {
	return SwotItem{Content: r.Content, Confidence: r.Confidence, Source: r.Source}
}
