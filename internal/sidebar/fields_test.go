package sidebar

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chime-sidebar/internal/common/errors"
)

type bogusField struct{}

func (bogusField) Key() string { return "bogus" }
func (bogusField) Kind() Kind  { return Kind("slider") }
func (bogusField) isField()    {}

func TestOrderedInputKeys(t *testing.T) {
	want := []string{
		"population",
		"market_share",
		"current_hospitalized",
		"date_first_hospitalized",
		"doubling_time",
		"relative_contact_rate",
		"hospitalized_rate",
		"icu_rate",
		"ventilated_rate",
		"infectious_days",
		"hospitalized_los",
		"icu_los",
		"ventilated_los",
		"n_days",
		"current_date",
		"max_y_axis_value",
		"show_tables",
		"show_tool_details",
	}
	if diff := cmp.Diff(want, OrderedInputKeys()); diff != "" {
		t.Fatalf("OrderedInputKeys() mismatch (-want +got):\n%s", diff)
	}
}

func TestOrderedInputKeys_ExcludesDecorativeFields(t *testing.T) {
	keys := OrderedInputKeys()
	for _, f := range Inputs.Fields() {
		if f.Kind() == KindHeader || f.Kind() == KindLink {
			assert.NotContains(t, keys, f.Key())
		}
	}
	assert.Len(t, Inputs.Fields(), 23)
}

func TestOrderedInputKeys_ReturnsCopy(t *testing.T) {
	keys := OrderedInputKeys()
	keys[0] = "mutated"
	assert.Equal(t, "population", OrderedInputKeys()[0])
}

func TestTable_Lookup(t *testing.T) {
	f, ok := Inputs.Lookup("n_days")
	require.True(t, ok)
	nf, ok := f.(NumberField)
	require.True(t, ok)
	assert.Equal(t, 30.0, nf.Min)
	assert.Equal(t, 1.0, nf.Step)

	_, ok = Inputs.Lookup("missing")
	assert.False(t, ok)
}

func TestNewTable_DuplicateKey(t *testing.T) {
	_, err := NewTable(
		NumberField{Name: "population", Min: 1, Step: 1},
		NumberField{Name: "population", Min: 1, Step: 1},
	)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigurationError))
}

func TestNewTable_UnknownFieldType(t *testing.T) {
	_, err := NewTable(bogusField{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigurationError))
}

func TestDescribe_UnknownFieldType(t *testing.T) {
	_, err := Describe(bogusField{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeConfigurationError))
}

func TestDescribeAt(t *testing.T) {
	today := NewDate(2020, 4, 1)

	tests := []struct {
		key      string
		validate func(t *testing.T, d Descriptor)
	}{
		{
			key: "hospital_parameters",
			validate: func(t *testing.T, d Descriptor) {
				assert.Equal(t, KindHeader, d.Type)
				assert.Equal(t, "h3", d.Size)
				assert.Empty(t, d.Property)
			},
		},
		{
			key: "market_share",
			validate: func(t *testing.T, d Descriptor) {
				assert.Equal(t, "any", d.Step)
				require.NotNil(t, d.Max)
				assert.Equal(t, PercentMax, *d.Max)
				assert.True(t, d.Percent)
				assert.Equal(t, "value", d.Property)
			},
		},
		{
			key: "max_y_axis_value",
			validate: func(t *testing.T, d Descriptor) {
				assert.Equal(t, 10.0, d.Step)
				assert.Nil(t, d.Value)
			},
		},
		{
			key: "current_date",
			validate: func(t *testing.T, d Descriptor) {
				assert.Equal(t, "date", d.Property)
				assert.Equal(t, "2019-10-01", d.MinDateAllowed)
				assert.Equal(t, "2021-12-31", d.MaxDateAllowed)
				assert.Equal(t, "2020-04-01", d.InitialVisibleMonth)
				assert.Equal(t, "2020-04-01", d.Date)
			},
		},
		{
			key: "date_first_hospitalized",
			validate: func(t *testing.T, d Descriptor) {
				assert.Empty(t, d.Date)
			},
		},
		{
			key: "show_tables",
			validate: func(t *testing.T, d Descriptor) {
				assert.Equal(t, false, d.Value)
			},
		},
		{
			key: "download_as_pdf_link",
			validate: func(t *testing.T, d Descriptor) {
				assert.Equal(t, KindLink, d.Type)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			f, ok := Inputs.Lookup(tt.key)
			require.True(t, ok)
			d, err := DescribeAt(f, today)
			require.NoError(t, err)
			assert.Equal(t, tt.key, d.Key)
			tt.validate(t, d)
		})
	}
}

func TestDescribeAt_ClampsTodayIntoRange(t *testing.T) {
	f, ok := Inputs.Lookup("current_date")
	require.True(t, ok)

	tests := []struct {
		name  string
		today Date
		want  string
	}{
		{name: "after range", today: NewDate(2026, 10, 17), want: "2021-12-31"},
		{name: "before range", today: NewDate(2019, 1, 15), want: "2019-10-01"},
		{name: "inside range", today: NewDate(2020, 6, 2), want: "2020-06-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := DescribeAt(f, tt.today)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Date)
			assert.Equal(t, tt.want, d.InitialVisibleMonth)
		})
	}
}

func TestTable_Describe_KeepsDisplayOrder(t *testing.T) {
	descs, err := Inputs.Describe(NewDate(2020, 4, 1))
	require.NoError(t, err)
	require.Len(t, descs, len(Inputs.Fields()))
	assert.Equal(t, "hospital_parameters", descs[0].Key)
	assert.Equal(t, "download_as_pdf_link", descs[len(descs)-1].Key)
}

func TestChangedElements(t *testing.T) {
	elems := Inputs.ChangedElements()
	require.Len(t, elems, len(OrderedInputKeys()))
	for _, e := range elems {
		switch e.Key {
		case "date_first_hospitalized", "current_date":
			assert.Equal(t, "date", e.Property, e.Key)
		default:
			assert.Equal(t, "value", e.Property, e.Key)
		}
	}
}

func TestTable_JSONSchema(t *testing.T) {
	schema := Inputs.JSONSchema()
	assert.Len(t, schema.Properties, len(OrderedInputKeys()))

	nDays := schema.Properties["n_days"]
	require.NotNil(t, nDays.Minimum)
	assert.Equal(t, 30.0, *nDays.Minimum)
	require.NotNil(t, nDays.MultipleOf)
	assert.Equal(t, 1.0, *nDays.MultipleOf)
	require.NotNil(t, nDays.Maximum)
	assert.Equal(t, float64(IntInputMax), *nDays.Maximum)

	share := schema.Properties["market_share"]
	require.NotNil(t, share.Maximum)
	assert.Equal(t, 100.0, *share.Maximum)
	assert.Nil(t, share.MultipleOf)

	assert.Equal(t, "date", schema.Properties["current_date"].Format)
	assert.NotContains(t, schema.Properties, "spread_parameters")
}
