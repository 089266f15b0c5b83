package models

import "fmt"

var fingerLabels = [MaxDigitalBiometrics]string{
	"Mínimo Esquerdo",
	"Anelar Esquerdo",
	"Médio Esquerdo",
	"Indicador Esquerdo",
	"Polegar Esquerdo",
	"Polegar Direito",
	"Indicador Direito",
	"Médio Direito",
	"Anelar Direito",
	"Mínimo Direito",
}

// FingerLabel maps a directory finger code (1 = left pinky ... 10 = right
// pinky) to its anatomical label. Unknown codes map to "Dedo {code}".
func FingerLabel(code int) string {
	if code < 1 || code > MaxDigitalBiometrics {
		return fmt.Sprintf("Dedo %d", code)
	}
	return fingerLabels[code-1]
}

// DigitalBiometricsFrom converts directory fingerprints into patient entries.
// Empty payloads are dropped, the first payload per label wins and at most
// MaxDigitalBiometrics entries are kept, in directory order.
func DigitalBiometricsFrom(fingerprints []Fingerprint) []DigitalBiometric {
	out := make([]DigitalBiometric, 0, min(len(fingerprints), MaxDigitalBiometrics))
	seen := make(map[string]struct{}, len(fingerprints))
	for _, fp := range fingerprints {
		if fp.Biometry == "" {
			continue
		}
		label := FingerLabel(fp.FingerCode)
		if _, dup := seen[label]; dup {
			continue
		}
		if len(out) == MaxDigitalBiometrics {
			break
		}
		seen[label] = struct{}{}
		out = append(out, DigitalBiometric{Finger: label, Data: fp.Biometry})
	}
	return out
}

// IsFingerLabel reports whether label is one of the ten anatomical labels.
func IsFingerLabel(label string) bool {
	for _, l := range fingerLabels {
		if l == label {
			return true
		}
	}
	return false
}
