package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeclarationNormalize(t *testing.T) {
	asOf := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		decl Declaration
		want SupportStatus
	}{
		{
			name: "wide with both dates",
			decl: Declaration{Baseline: "high", LowDate: "2020-01-15", HighDate: "2022-07-15"},
			want: SupportStatus{Tier: TierWide, LimitedSince: "2020-01-15", WideSince: "2022-07-15"},
		},
		{
			name: "ranged dates",
			decl: Declaration{Baseline: "high", LowDate: "≤2018-01-01", HighDate: "≤2020-07-01"},
			want: SupportStatus{Tier: TierWide, LimitedSince: "2018-01-01", WideSince: "2020-07-01"},
		},
		{
			name: "wide missing high date is limited",
			decl: Declaration{Baseline: "high", LowDate: "2020-01-15"},
			want: SupportStatus{Tier: TierLimited, LimitedSince: "2020-01-15"},
		},
		{
			name: "wide with future high date is limited",
			decl: Declaration{Baseline: "high", LowDate: "2024-06-01", HighDate: "2026-12-01"},
			want: SupportStatus{Tier: TierLimited, LimitedSince: "2024-06-01"},
		},
		{
			name: "wide with future dates is none",
			decl: Declaration{Baseline: "high", LowDate: "2030-01-01", HighDate: "2032-01-01"},
			want: SupportStatus{Tier: TierNone},
		},
		{
			name: "limited drops high date",
			decl: Declaration{Baseline: "low", LowDate: "2024-03-01", HighDate: "2026-09-01"},
			want: SupportStatus{Tier: TierLimited, LimitedSince: "2024-03-01"},
		},
		{
			name: "limited without date is none",
			decl: Declaration{Baseline: "low"},
			want: SupportStatus{Tier: TierNone},
		},
		{
			name: "not baseline",
			decl: Declaration{Baseline: "", LowDate: "2020-01-01", Support: map[string]string{"chrome": "100"}},
			want: SupportStatus{Tier: TierNone, Support: map[string]string{"chrome": "100"}},
		},
		{
			name: "malformed date",
			decl: Declaration{Baseline: "low", LowDate: "soon"},
			want: SupportStatus{Tier: TierNone},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.decl.Normalize(asOf))
		})
	}
}

func TestBaselineValue(t *testing.T) {
	for _, tt := range []struct {
		in      interface{}
		want    string
		wantErr bool
	}{
		{in: "high", want: "high"},
		{in: "LOW", want: "low"},
		{in: false, want: ""},
		{in: nil, want: ""},
		{in: true, wantErr: true},
		{in: "medium", wantErr: true},
		{in: 3, wantErr: true},
	} {
		got, err := baselineValue(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}
