package danton

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordFormatsAreNonEmpty(t *testing.T) {
	cases := []Record{
		AncestorRecord{EventID: 1, Species: NuTau, Energy: 1e9, Weight: 1},
		TauPairRecord{Generation: 0, Species: Tau, Production: State{Energy: 1e9}, Decay: State{Energy: 1e8}},
		NeutrinoRecord{Species: NuTauBar, State: State{Energy: 1e7}},
		DecayProductRecord{Species: Hadron, Momentum: [3]float64{1, 2, 3}},
		GrammageRecord{CosTheta: 0.2, Grammage: 1e7},
	}
	for _, r := range cases {
		var buf bytes.Buffer
		assert.NoError(t, r.Format(&buf))
		assert.NotZero(t, buf.Len())
	}
}
