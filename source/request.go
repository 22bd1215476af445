package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sartorproj/covidframe/frame"
)

// Providers.
const (
	JHU = "jhu"
	NYT = "nyt"
)

// Table formats.
const (
	FormatLong = "long"
	FormatWide = "wide"
)

// Data types. All asks for every data type the provider publishes.
const (
	DataAll       = "all"
	DataCases     = "cases"
	DataDeaths    = "deaths"
	DataRecovered = "recovered"
)

// Request names one provider table.
type Request struct {
	Source   string `validate:"required,oneof=jhu nyt" koanf:"source"`
	Format   string `validate:"required,oneof=long wide" koanf:"format"`
	DataType string `validate:"required,oneof=all cases deaths recovered" koanf:"data_type"`
	// Region is the JHU table family. Ignored for NYT.
	Region string `validate:"omitempty,oneof=global us" koanf:"region"`
	// Counties asks NYT for county rather than state rows.
	Counties bool `koanf:"counties"`
	// Update downloads fresh files. Without it the cached copies are used.
	Update bool `koanf:"update"`
}

// DefaultRequest returns the JHU global long table of every data type,
// freshly downloaded.
func DefaultRequest() Request {
	return Request{
		Source:   JHU,
		Format:   FormatLong,
		DataType: DataAll,
		Region:   string(Global),
		Update:   true,
	}
}

var validate = validator.New()

// Normalize lower-cases the enumerated fields and fills the JHU region.
func (r Request) Normalize() Request {
	r.Source = strings.ToLower(strings.TrimSpace(r.Source))
	r.Format = strings.ToLower(strings.TrimSpace(r.Format))
	r.DataType = strings.ToLower(strings.TrimSpace(r.DataType))
	r.Region = strings.ToLower(strings.TrimSpace(r.Region))
	if r.Source == JHU && r.Region == "" {
		r.Region = string(Global)
	}
	return r
}

// Validate checks field values and the combinations the providers do not
// publish. Errors match frame.ErrInvalidArgument.
func (r Request) Validate() error {
	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, len(verrs))
		for i, fe := range verrs {
			msgs[i] = formatFieldError(fe)
		}
		return frame.ArgumentError("source.Request", "%s", strings.Join(msgs, "; "))
	}

	switch {
	case r.Source == JHU && Region(r.Region) == US && r.DataType == DataRecovered:
		return frame.ArgumentError("source.Request", "JHU does not provide recovery data for US states and counties")
	case r.Source == NYT && r.DataType == DataRecovered:
		return frame.ArgumentError("source.Request", "NYT provides only cases and deaths")
	case r.Format == FormatWide && r.DataType == DataAll:
		return frame.ArgumentError("source.Request", "wide format holds one data type, got %q", DataAll)
	}
	return nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s, got %q", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

// DataTypes lists the data types a request needs, one file each.
func (r Request) DataTypes() []string {
	if r.DataType != DataAll {
		return []string{r.DataType}
	}
	if r.Source == JHU && Region(r.Region) == Global {
		return []string{DataCases, DataDeaths, DataRecovered}
	}
	return []string{DataCases, DataDeaths}
}
