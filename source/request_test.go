package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/covidframe/frame"
)

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr string
	}{
		{"default", DefaultRequest(), ""},
		{"nyt counties wide", Request{Source: NYT, Format: FormatWide, DataType: DataCases, Counties: true}, ""},
		{"upper case", Request{Source: "JHU", Format: "Long", DataType: "Deaths"}, ""},
		{"unknown source", Request{Source: "who", Format: FormatLong, DataType: DataAll}, "Source must be one of: jhu, nyt"},
		{"missing format", Request{Source: JHU, DataType: DataAll}, "Format is required"},
		{"unknown region", Request{Source: JHU, Format: FormatLong, DataType: DataAll, Region: "eu"}, "Region must be one of"},
		{"us recovered", Request{Source: JHU, Format: FormatLong, DataType: DataRecovered, Region: "us"}, "recovery data"},
		{"nyt recovered", Request{Source: NYT, Format: FormatLong, DataType: DataRecovered}, "only cases and deaths"},
		{"wide all", Request{Source: JHU, Format: FormatWide, DataType: DataAll}, "wide format holds one data type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Normalize().Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, frame.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestRequestNormalize(t *testing.T) {
	req := Request{Source: " JHU ", Format: "WIDE", DataType: "Cases"}.Normalize()
	assert.Equal(t, JHU, req.Source)
	assert.Equal(t, FormatWide, req.Format)
	assert.Equal(t, DataCases, req.DataType)
	assert.Equal(t, string(Global), req.Region)

	nyt := Request{Source: NYT}.Normalize()
	assert.Empty(t, nyt.Region)
}

func TestRequestDataTypes(t *testing.T) {
	assert.Equal(t, []string{DataCases, DataDeaths, DataRecovered}, DefaultRequest().DataTypes())

	us := DefaultRequest()
	us.Region = string(US)
	assert.Equal(t, []string{DataCases, DataDeaths}, us.DataTypes())

	one := DefaultRequest()
	one.DataType = DataDeaths
	assert.Equal(t, []string{DataDeaths}, one.DataTypes())
}
