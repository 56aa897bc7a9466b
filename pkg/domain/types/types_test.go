package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/tyche/pkg/domain/types"
)

func TestFactorID_Validate(t *testing.T) {
	tests := []struct {
		name    string
		id      types.FactorID
		wantErr bool
	}{
		{"valid underscore", "threat_landscape", false},
		{"valid hyphen", "patch-latency", false},
		{"valid with numbers", "vendor-7", false},
		{"empty", "", true},
		{"uppercase", "Threat_Landscape", true},
		{"spaces", "threat landscape", true},
		{"starting with underscore", "_threat", true},
		{"ending with hyphen", "threat-", true},
		{"double separator", "threat__landscape", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("FactorID.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModelID_Validate(t *testing.T) {
	gt.NoError(t, types.ModelID("cyber-fair").Validate())
	gt.Value(t, types.ModelID("").Validate()).NotNil()
	gt.NoError(t, types.AssetID("core-banking").Validate())
	gt.Value(t, types.PredictorID("Bad ID").Validate()).NotNil()
}

func TestParseEnums(t *testing.T) {
	t.Run("domain", func(t *testing.T) {
		for _, d := range types.AllDomains() {
			parsed, err := types.ParseDomain(d.String())
			gt.NoError(t, err).Required()
			gt.Value(t, parsed).Equal(d)
		}
		_, err := types.ParseDomain("weather")
		gt.Value(t, err).NotNil()
	})

	t.Run("methodology", func(t *testing.T) {
		for _, m := range types.AllMethodologies() {
			parsed, err := types.ParseMethodology(m.String())
			gt.NoError(t, err).Required()
			gt.Value(t, parsed).Equal(m)
		}
		_, err := types.ParseMethodology("astrology")
		gt.Value(t, err).NotNil()
	})

	t.Run("empty trend normalizes to stable", func(t *testing.T) {
		trend, err := types.ParseTrend("")
		gt.NoError(t, err).Required()
		gt.Value(t, trend).Equal(types.TrendStable)
	})

	t.Run("algorithm and criticality", func(t *testing.T) {
		_, err := types.ParseAlgorithm("bayesian")
		gt.NoError(t, err)
		_, err = types.ParseAlgorithm("neural")
		gt.Value(t, err).NotNil()
		_, err = types.ParseCriticality("critical")
		gt.NoError(t, err)
	})
}

func TestTrendOf(t *testing.T) {
	gt.Value(t, types.TrendOf(0.40, 0.50)).Equal(types.TrendIncreasing)
	gt.Value(t, types.TrendOf(0.50, 0.40)).Equal(types.TrendDecreasing)
	gt.Value(t, types.TrendOf(0.50, 0.54)).Equal(types.TrendStable)
	gt.Value(t, types.TrendOf(0.50, 0.46)).Equal(types.TrendStable)
}

func TestBandOf(t *testing.T) {
	gt.Value(t, types.BandOf(0.71)).Equal(types.CorrelationStrong)
	gt.Value(t, types.BandOf(-0.9)).Equal(types.CorrelationStrong)
	gt.Value(t, types.BandOf(0.5)).Equal(types.CorrelationModerate)
	gt.Value(t, types.BandOf(-0.31)).Equal(types.CorrelationModerate)
	gt.Value(t, types.BandOf(0.3)).Equal(types.CorrelationWeak)
	gt.Value(t, types.BandOf(0)).Equal(types.CorrelationWeak)
}

func TestCriticality_Weight(t *testing.T) {
	gt.Value(t, types.CriticalityLow.Weight()).Equal(0.5)
	gt.Value(t, types.CriticalityMedium.Weight()).Equal(0.75)
	gt.Value(t, types.CriticalityHigh.Weight()).Equal(1.0)
	gt.Value(t, types.CriticalityCritical.Weight()).Equal(1.25)
}
