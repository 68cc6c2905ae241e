package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"10", "10.00", false},
		{" 10.5 ", "10.50", false},
		{"+3.333", "3.33", false},
		{"0.005", "0.01", false},
		{"-0.005", "-0.01", false},
		{"2.675", "2.68", false},
		{"abc", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, FormatAmount(got))
		})
	}
}

func TestMustAmountPanics(t *testing.T) {
	require.Panics(t, func() { MustAmount("ten") })
}
