package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextToggles(t *testing.T) {
	assert.Equal(t, StatusLoaned, StatusAvailable.Next())
	assert.Equal(t, StatusAvailable, StatusLoaned.Next())
}

func TestNextIsInvolutionOnKnownStates(t *testing.T) {
	for _, s := range []Status{StatusAvailable, StatusLoaned} {
		assert.Equal(t, s, s.Next().Next())
	}
}

func TestNextDefaultsToLoaned(t *testing.T) {
	assert.Equal(t, StatusLoaned, StatusUnknown.Next())
	assert.Equal(t, StatusLoaned, Status(42).Next())
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		stored string
		want   Status
	}{
		{"Disponível", StatusAvailable},
		{"Disponivel", StatusAvailable},
		{"DISPONÍVEL", StatusAvailable},
		{" disponivel ", StatusAvailable},
		{"Available", StatusAvailable},
		{"AVAILABLE", StatusAvailable},
		{"Emprestado", StatusLoaned},
		{"EMPRESTADO", StatusLoaned},
		{"Loaned", StatusLoaned},
		{" loaned ", StatusLoaned},
		{"", StatusUnknown},
		{"quebrado", StatusUnknown},
		{"em manutenção", StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseStatus(tt.stored))
		})
	}
}

func TestStatusLabelsText(t *testing.T) {
	labels := StatusLabels{Available: "Disponível", Loaned: "Emprestado"}

	assert.Equal(t, "Disponível", labels.Text(StatusAvailable))
	assert.Equal(t, "Emprestado", labels.Text(StatusLoaned))
	// the unknown fallback toggles to loaned, so it renders as loaned too
	assert.Equal(t, "Emprestado", labels.Text(StatusUnknown.Next()))
}
