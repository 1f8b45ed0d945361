// internal/wizard/controller.go
package wizard

// Linear step sequencer for application wizards. Forward transitions are
// gated on step-local validation; Back never validates and never discards
// entered data.

import (
	"context"

	"github.com/opencustoms/trade-portal/internal/draft"
	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/validation"
)

type Step string

const (
	StepDetails     Step = "details"
	StepItems       Step = "items"
	StepAttachments Step = "attachments"
	StepReview      Step = "review"
)

// FieldErrors maps offending field names to messages so the UI can
// annotate each input rather than show a single blob.
type FieldErrors map[string]string

// Transition reports the outcome of a Next call: the step the controller
// is in afterwards, whether it moved, and any gate failures.
type Transition struct {
	Step        Step        `json:"step"`
	Moved       bool        `json:"moved"`
	FieldErrors FieldErrors `json:"fieldErrors,omitempty"`
	Message     string      `json:"message,omitempty"`
}

// CatalogFunc supplies the attachment-type catalog; the session memoizes it
// so the required-type set is fetched once per session. The context is the
// caller's, so a cancelled transition request cancels the fetch.
type CatalogFunc func(ctx context.Context) ([]models.AttachmentType, error)

type Controller struct {
	rules   Rules
	store   *draft.Store
	catalog CatalogFunc
	pos     int
}

func NewController(rules Rules, store *draft.Store, catalog CatalogFunc) *Controller {
	return &Controller{rules: rules, store: store, catalog: catalog}
}

func (c *Controller) Step() Step {
	return c.rules.Steps[c.pos]
}

// Back moves one step backwards without validating. Entered-but-invalid
// data stays in the store.
func (c *Controller) Back() Step {
	if c.pos > 0 {
		c.pos--
	}
	return c.Step()
}

// Next attempts the forward transition, running the current step's gate.
func (c *Controller) Next(ctx context.Context) Transition {
	step := c.Step()
	if step == StepReview {
		// Review is terminal; it exits only via save-draft or submit.
		return Transition{Step: step, Message: "review is the final step"}
	}

	switch step {
	case StepDetails:
		if errs := c.validateDetails(); len(errs) > 0 {
			return Transition{Step: step, FieldErrors: errs}
		}
	case StepItems:
		if c.rules.RequireItems && c.store.Count(models.ListItems) == 0 {
			return Transition{Step: step, Message: "add at least one item"}
		}
	case StepAttachments:
		if t, ok := c.gateAttachments(ctx); !ok {
			return t
		}
	}

	c.pos++
	return Transition{Step: c.Step(), Moved: true}
}

func (c *Controller) validateDetails() FieldErrors {
	details := c.store.Details()
	errs := FieldErrors{}
	for _, rule := range c.rules.DetailRules {
		for _, check := range rule.Checks {
			if res := check(details[rule.Field]); !res.OK {
				errs[rule.Field] = res.Message
				break
			}
		}
	}
	for _, rule := range c.rules.RangeRules {
		if _, seen := errs[rule.StartField]; seen {
			continue
		}
		if _, seen := errs[rule.EndField]; seen {
			continue
		}
		if res := validation.DateRange(details[rule.StartField], details[rule.EndField]); !res.OK {
			errs[rule.EndField] = res.Message
		}
	}
	return errs
}

func (c *Controller) gateAttachments(ctx context.Context) (Transition, bool) {
	step := c.Step()
	if c.store.Count(models.ListAttachments) == 0 {
		return Transition{Step: step, Message: "add at least one attachment"}, false
	}
	if !c.rules.RequireAttachmentTypes {
		return Transition{}, true
	}

	types, err := c.catalog(ctx)
	if err != nil {
		return Transition{Step: step, Message: err.Error()}, false
	}

	// Per-type existence test against the current refs: each required type
	// must have at least one successfully uploaded ref. Optional duplicates
	// are fine; this is not a count check.
	uploaded := map[int]bool{}
	for _, ref := range c.store.Records(models.ListAttachments) {
		typeID, ok := numberToInt(ref["attachmentTypeId"])
		if !ok {
			continue
		}
		if recID, ok := ref["uploadedRecordId"]; ok && recID != nil {
			uploaded[typeID] = true
		}
	}

	for _, at := range types {
		if at.Required && !uploaded[at.ID] {
			return Transition{
				Step:    step,
				Message: "required document missing: " + at.Name,
			}, false
		}
	}
	return Transition{}, true
}

func numberToInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
