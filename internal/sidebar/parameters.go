package sidebar

import (
	stderrors "errors"
	"fmt"
	"sync"

	"chime-sidebar/internal/common/errors"
	"chime-sidebar/internal/common/validation"
)

// Disposition is the share of a cohort that needs a level of care and how
// many days it stays there.
type Disposition struct {
	Rate float64 `json:"rate"`
	Days int     `json:"days"`
}

// Parameters is the input of the simulation engine. Exactly one of
// DoublingTime and DateFirstHospitalized is set. Rates are fractions.
type Parameters struct {
	Population            int         `json:"population"`
	CurrentHospitalized   int         `json:"current_hospitalized"`
	DateFirstHospitalized *Date       `json:"date_first_hospitalized"`
	DoublingTime          *float64    `json:"doubling_time"`
	Hospitalized          Disposition `json:"hospitalized"`
	ICU                   Disposition `json:"icu"`
	Ventilated            Disposition `json:"ventilated"`
	InfectiousDays        int         `json:"infectious_days"`
	MarketShare           float64     `json:"market_share"`
	RelativeContactRate   float64     `json:"relative_contact_rate"`
	NDays                 int         `json:"n_days"`
	MaxYAxis              *float64    `json:"max_y_axis"`
	CurrentDate           *Date       `json:"current_date"`
}

const (
	KeyDoublingTime          = "doubling_time"
	KeyDateFirstHospitalized = "date_first_hospitalized"
	KeyMaxYAxisValue         = "max_y_axis_value"
	KeyCurrentDate           = "current_date"
)

// requiredNumbers are the numeric inputs the engine cannot run without.
var requiredNumbers = []string{
	"population",
	"market_share",
	"current_hospitalized",
	"relative_contact_rate",
	"hospitalized_rate",
	"icu_rate",
	"ventilated_rate",
	"infectious_days",
	"hospitalized_los",
	"icu_los",
	"ventilated_los",
	"n_days",
}

var (
	boundsOnce sync.Once
	boundsErr  error
	// one validator per spread driver, since doubling_time is only checked
	// when it is the driver
	boundsWithDoubling    *validation.Validator
	boundsWithoutDoubling *validation.Validator
)

func validators() (with, without *validation.Validator, err error) {
	boundsOnce.Do(func() {
		keys := append([]string{KeyDoublingTime}, requiredNumbers...)
		boundsWithDoubling, boundsErr = validation.NewValidator(Inputs.boundsSchema(keys))
		if boundsErr != nil {
			return
		}
		boundsWithoutDoubling, boundsErr = validation.NewValidator(Inputs.boundsSchema(requiredNumbers))
	})
	return boundsWithDoubling, boundsWithoutDoubling, boundsErr
}

// Assemble validates the coerced values and builds the Parameters. A truthy
// doubling_time suppresses date_first_hospitalized; otherwise the date is
// the spread driver and doubling_time is dropped. Percent inputs are
// divided by 100. max_y_axis_value is optional and not bounds-checked.
func Assemble(values *Values) (*Parameters, error) {
	if values == nil {
		return nil, errors.NewValidationError("", "no input values")
	}

	dt, hasDT := values.Number(KeyDoublingTime)
	hasDT = hasDT && dt != 0

	if err := validate(values, hasDT); err != nil {
		return nil, err
	}

	num := func(key string) float64 {
		v, _ := values.Number(key)
		return v
	}

	pars := &Parameters{
		Population:          int(num("population")),
		CurrentHospitalized: int(num("current_hospitalized")),
		Hospitalized: Disposition{
			Rate: num("hospitalized_rate") / 100,
			Days: int(num("hospitalized_los")),
		},
		ICU: Disposition{
			Rate: num("icu_rate") / 100,
			Days: int(num("icu_los")),
		},
		Ventilated: Disposition{
			Rate: num("ventilated_rate") / 100,
			Days: int(num("ventilated_los")),
		},
		InfectiousDays:      int(num("infectious_days")),
		MarketShare:         num("market_share") / 100,
		RelativeContactRate: num("relative_contact_rate") / 100,
		NDays:               int(num("n_days")),
	}

	if hasDT {
		pars.DoublingTime = &dt
	} else {
		dfh, _ := values.Date(KeyDateFirstHospitalized)
		pars.DateFirstHospitalized = &dfh
	}
	if yMax, ok := values.Number(KeyMaxYAxisValue); ok {
		pars.MaxYAxis = &yMax
	}
	if cd, ok := values.Date(KeyCurrentDate); ok {
		pars.CurrentDate = &cd
	}

	return pars, nil
}

// AssembleSerialized is Assemble followed by SerializeParameters.
func AssembleSerialized(values *Values) (*Parameters, string, error) {
	pars, err := Assemble(values)
	if err != nil {
		return nil, "", err
	}
	blob, err := SerializeParameters(pars)
	if err != nil {
		return nil, "", err
	}
	return pars, blob, nil
}

func validate(values *Values, hasDT bool) error {
	var errs []error

	required := requiredNumbers
	if hasDT {
		required = append([]string{KeyDoublingTime}, requiredNumbers...)
	}
	doc := make(map[string]interface{}, len(required))
	for _, key := range required {
		v, ok := values.Number(key)
		if !ok {
			errs = append(errs, errors.NewValidationError(key, "required"))
			continue
		}
		doc[key] = v
	}
	if len(errs) > 0 {
		return stderrors.Join(errs...)
	}

	with, without, err := validators()
	if err != nil {
		return err
	}
	v := without
	if hasDT {
		v = with
	}
	result, err := v.Validate(doc)
	if err != nil {
		return errors.NewConfigurationError(err.Error())
	}
	if err := result.Err(); err != nil {
		errs = append(errs, err)
	}

	if !hasDT {
		if _, ok := values.Date(KeyDateFirstHospitalized); !ok {
			errs = append(errs, errors.NewValidationError(KeyDateFirstHospitalized,
				"required when doubling_time is not set"))
		}
	}
	for _, key := range []string{KeyDateFirstHospitalized, KeyCurrentDate} {
		if key == KeyDateFirstHospitalized && hasDT {
			continue
		}
		if err := checkDateRange(key, values); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return stderrors.Join(errs...)
	}
	return nil
}

// checkDateRange enforces the picker's allowed range on a present date.
func checkDateRange(key string, values *Values) error {
	d, ok := values.Date(key)
	if !ok {
		return nil
	}
	f, ok := Inputs.Lookup(key)
	if !ok {
		return nil
	}
	df, ok := f.(DateField)
	if !ok {
		return nil
	}
	if d.Before(df.MinDateAllowed) || d.After(df.MaxDateAllowed) {
		return errors.NewValidationError(key, fmt.Sprintf("%s is outside %s..%s", d, df.MinDateAllowed, df.MaxDateAllowed))
	}
	return nil
}
