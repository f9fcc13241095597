package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testData := map[string]struct {
		raw      string
		expected Type
	}{
		"known antibiotic": {
			raw:      "Cefixime",
			expected: Antibiotic,
		},
		"uppercase": {
			raw:      "OMEPRAZOLE",
			expected: Gastro,
		},
		"surrounding whitespace": {
			raw:      "  diclofenac sodium  ",
			expected: Acute,
		},
		"chronic molecule": {
			raw:      "Sitagliptin",
			expected: Chronic,
		},
		"unknown drug": {
			raw:      "unknown drug",
			expected: Other,
		},
		"empty": {
			raw:      "",
			expected: Other,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, Classify(td.raw))
		})
	}
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "antibiotic", Antibiotic.String())
	assert.Equal(t, "gastro", Gastro.String())
	assert.Equal(t, "acute", Acute.String())
	assert.Equal(t, "chronic", Chronic.String())
	assert.Equal(t, "other", Other.String())
	assert.Equal(t, "other", Type(99).String())
}
