package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerLabel_Table(t *testing.T) {
	expected := map[int]string{
		1:  "Mínimo Esquerdo",
		2:  "Anelar Esquerdo",
		3:  "Médio Esquerdo",
		4:  "Indicador Esquerdo",
		5:  "Polegar Esquerdo",
		6:  "Polegar Direito",
		7:  "Indicador Direito",
		8:  "Médio Direito",
		9:  "Anelar Direito",
		10: "Mínimo Direito",
	}
	for code, label := range expected {
		assert.Equal(t, label, FingerLabel(code))
	}
}

func TestFingerLabel_OutOfRange(t *testing.T) {
	assert.Equal(t, "Dedo 0", FingerLabel(0))
	assert.Equal(t, "Dedo 11", FingerLabel(11))
	assert.Equal(t, "Dedo -3", FingerLabel(-3))
}

func TestDigitalBiometricsFrom_MapsAndFilters(t *testing.T) {
	out := DigitalBiometricsFrom([]Fingerprint{
		{FingerCode: 6, Biometry: "AAA"},
		{FingerCode: 1, Biometry: ""},
		{FingerCode: 2, Biometry: "BBB"},
	})

	require.Len(t, out, 2)
	assert.Equal(t, DigitalBiometric{Finger: "Polegar Direito", Data: "AAA"}, out[0])
	assert.Equal(t, DigitalBiometric{Finger: "Anelar Esquerdo", Data: "BBB"}, out[1])
}

func TestDigitalBiometricsFrom_FirstPayloadPerLabelWins(t *testing.T) {
	out := DigitalBiometricsFrom([]Fingerprint{
		{FingerCode: 3, Biometry: "first"},
		{FingerCode: 3, Biometry: "second"},
	})

	require.Len(t, out, 1)
	assert.Equal(t, "first", out[0].Data)
}

func TestDigitalBiometricsFrom_CapsAtTen(t *testing.T) {
	var fps []Fingerprint
	for code := 1; code <= 14; code++ {
		fps = append(fps, Fingerprint{FingerCode: code, Biometry: "x"})
	}

	out := DigitalBiometricsFrom(fps)
	assert.Len(t, out, MaxDigitalBiometrics)
}

func TestDigitalBiometricsFrom_Empty(t *testing.T) {
	out := DigitalBiometricsFrom(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestIsFingerLabel(t *testing.T) {
	assert.True(t, IsFingerLabel("Polegar Direito"))
	assert.True(t, IsFingerLabel("Mínimo Esquerdo"))
	assert.False(t, IsFingerLabel("Dedo 11"))
	assert.False(t, IsFingerLabel("polegar direito"))
}
