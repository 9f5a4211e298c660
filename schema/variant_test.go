package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariantFromElbType(t *testing.T) {
	tests := []struct {
		name    string
		elbType string
		want    Variant
		wantErr bool
	}{
		{name: "classic", elbType: "clb", want: VariantClassic},
		{name: "application", elbType: "alb", want: VariantApplication},
		{name: "network is not supported", elbType: "nlb", wantErr: true},
		{name: "empty", elbType: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VariantFromElbType(tt.elbType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equalf(t, tt.want, got, "VariantFromElbType(%q)", tt.elbType)
		})
	}
}

func TestVariant_Schema(t *testing.T) {
	tests := []struct {
		name          string
		variant       Variant
		fieldCount    int
		leadingCount  int
		trailingCount int
	}{
		{name: "classic", variant: VariantClassic, fieldCount: 15, leadingCount: 11, trailingCount: 3},
		{name: "application", variant: VariantApplication, fieldCount: 20, leadingCount: 12, trailingCount: 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.variant.Schema()
			assert.Equal(t, tt.fieldCount, s.FieldCount())
			assert.Equal(t, tt.leadingCount, s.LeadingFieldCount)
			assert.Equal(t, tt.trailingCount, s.TrailingFieldCount)
			// leading fields, the request and the trailing fields make up the whole row
			assert.Equal(t, s.FieldCount(), s.LeadingFieldCount+1+s.TrailingFieldCount)
			assert.Equal(t, "request", s.Columns[s.LeadingFieldCount].ColumnName)
			for _, a := range s.AddressColumns {
				assert.Contains(t, s.AsMap(), a)
			}
		})
	}
}

func TestClassicSchemaConversions(t *testing.T) {
	cols := VariantClassic.Schema().AsMap()
	assert.Equal(t, ConversionFloat, cols["request_processing_time"].Conversion)
	assert.Equal(t, ConversionInteger, cols["elb_status_code"].Conversion)
	assert.Equal(t, ConversionNone, cols["user_agent"].Conversion)
}
