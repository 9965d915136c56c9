package ocrtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixAddress(t *testing.T) {
	cases := map[string]string{
		"":                    "",
		"cl 80 # 45-12":       "CL 80 # 45-12",
		"CRA 52 4 76-31":      "CRA 52 # 76-31",
		"CALLE 72 43-10":      "CALLE 72 # 3-10",
		"cra 52#76-31":        "CRA 52 # 76-31",
		"CL 84B 51-20":        "CL 84B # 51-20",
		"av 30 ＃ 10-20":       "AV 30 # 10-20",
		"  cl   1   #  2-3  ": "CL 1 # 2-3",
	}

	for in, want := range cases {
		assert.Equal(t, want, FixAddress(in), in)
	}
}

func TestWithCity(t *testing.T) {
	suffix := "Riomar, Barranquilla, Atlántico"

	assert.Equal(t, "CL 1 # 2-3, Riomar, Barranquilla, Atlántico", WithCity("CL 1 # 2-3", suffix))
	assert.Equal(t, "CL 1 # 2-3 BARRANQUILLA", WithCity("CL 1 # 2-3 BARRANQUILLA", suffix))
	assert.Equal(t, "CL 1 # 2-3", WithCity("CL 1 # 2-3", ""))
	assert.Equal(t, "CL 1, Soledad", WithCity("CL 1", "Soledad"))
}
