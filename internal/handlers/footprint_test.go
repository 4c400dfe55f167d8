package handlers

import (
	"testing"

	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestComputeFootprintZeroAnswers(t *testing.T) {
	assert.Zero(t, ComputeFootprint(models.CalculationAnswers{}))
}

func TestComputeFootprintRecyclingReducesWaste(t *testing.T) {
	base := models.CalculationAnswers{WasteKgPerWeek: 10}
	recycling := base
	recycling.Recycles = true

	assert.Less(t, ComputeFootprint(recycling), ComputeFootprint(base))
}

func TestComputeFootprintMonotonicInDriving(t *testing.T) {
	low := models.CalculationAnswers{CarKmPerWeek: 50}
	high := models.CalculationAnswers{CarKmPerWeek: 500}
	assert.Less(t, ComputeFootprint(low), ComputeFootprint(high))
}

func TestPointsCappedPerCalculation(t *testing.T) {
	assert.Equal(t, basePoints, pointsFor(0))
	assert.Equal(t, maxPointsPerCalculation, pointsFor(1e6))
}

func TestValidateAnswersBounds(t *testing.T) {
	ok := models.CalculationAnswers{CarKmPerWeek: 100}
	assert.Nil(t, validateAnswers(ok))

	negative := models.CalculationAnswers{MeatServingsWeek: -1}
	assert.NotNil(t, validateAnswers(negative))

	absurd := models.CalculationAnswers{FlightsPerYear: 10000}
	assert.NotNil(t, validateAnswers(absurd))
}
