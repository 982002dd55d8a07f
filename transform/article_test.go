package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexware-office/go-lexware-client/core"
)

func TestTransformArticleData(t *testing.T) {
	tests := []struct {
		name   string
		fields core.Params
		want   core.Params
	}{
		{
			name:   "defaults",
			fields: core.Params{"title": "Schraube"},
			want: core.Params{
				"title":    "Schraube",
				"type":     "PRODUCT",
				"unitName": "piece",
				"price":    map[string]any{"taxRate": 19.0, "leadingPrice": "NET"},
			},
		},
		{
			name:   "gross leading",
			fields: core.Params{"title": "Wartung", "type": "service", "grossPrice": "119,00", "taxRate": 7, "unitName": "Stunde"},
			want: core.Params{
				"title":    "Wartung",
				"type":     "SERVICE",
				"unitName": "Stunde",
				"price":    map[string]any{"taxRate": 7.0, "grossPrice": 119.0, "leadingPrice": "GROSS"},
			},
		},
		{
			name:   "net wins",
			fields: core.Params{"title": "Kabel", "netPrice": 10, "grossPrice": 11.9, "articleNumber": "K-1"},
			want: core.Params{
				"title":         "Kabel",
				"type":          "PRODUCT",
				"unitName":      "piece",
				"articleNumber": "K-1",
				"price":         map[string]any{"taxRate": 19.0, "netPrice": 10.0, "grossPrice": 11.9, "leadingPrice": "NET"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TransformArticleData(tt.fields)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformArticleData_UnknownType(t *testing.T) {
	_, err := TransformArticleData(core.Params{"type": "gadget"})
	assert.True(t, core.IsValidationErr(err))
}
