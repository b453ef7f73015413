package emissions

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate_MatchesFormula(t *testing.T) {
	cases := []Activity{
		{},
		{CarKm: 1},
		{CarKm: 10, ElectricityKWh: 5, MeatMeals: 1, VegMeals: 1},
		{CarKm: 12.5, BikeKm: 3.3, BusKm: 40, ElectricityKWh: 7.75, MeatMeals: 2, VegMeals: 3},
		{CarKm: 1e6, BikeKm: 1e-6, BusKm: 0.001, ElectricityKWh: 123456.789, MeatMeals: 0.5, VegMeals: 21},
	}
	for _, a := range cases {
		e := Calculate(a)
		want := a.CarKm*0.21 + a.BikeKm*0.08 + a.BusKm*0.10 + a.ElectricityKWh*0.85 + a.MeatMeals*5.0 + a.VegMeals*1.5
		tol := 1e-9 * math.Max(1, math.Abs(want))
		assert.InDelta(t, want, e.Total, tol, "activity %+v", a)
		assert.InDelta(t, e.Car+e.Bike+e.Bus+e.Electricity+e.Food, e.Total, tol)
	}
}

func TestCalculate_Scenario(t *testing.T) {
	e := Calculate(Activity{CarKm: 10, ElectricityKWh: 5, MeatMeals: 1, VegMeals: 1})
	assert.InDelta(t, 2.1, e.Car, 1e-9)
	assert.InDelta(t, 0.0, e.Bike, 1e-9)
	assert.InDelta(t, 0.0, e.Bus, 1e-9)
	assert.InDelta(t, 4.25, e.Electricity, 1e-9)
	assert.InDelta(t, 6.5, e.Food, 1e-9)
	assert.InDelta(t, 12.85, e.Total, 1e-9)

	zero := Calculate(Activity{})
	assert.Equal(t, 0.0, zero.Total)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Activity{}.Validate())
	require.NoError(t, Activity{CarKm: 3, VegMeals: 2}.Validate())

	bad := []Activity{
		{CarKm: -1},
		{BikeKm: -0.01},
		{BusKm: math.Inf(1)},
		{ElectricityKWh: math.NaN()},
		{MeatMeals: -2},
		{VegMeals: math.Inf(-1)},
	}
	for _, a := range bad {
		err := a.Validate()
		require.Error(t, err, "activity %+v", a)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
}

func TestValidate_NamesField(t *testing.T) {
	err := Activity{BusKm: -5}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bus_km")
}

func TestFactors(t *testing.T) {
	f := Factors()
	require.Len(t, f, 6)
	assert.Equal(t, "car", f[0].Activity)
	assert.Equal(t, CarPerKm, f[0].KgCO2e)
	assert.Equal(t, VegPerMeal, f[5].KgCO2e)

	f[0].KgCO2e = 99
	assert.Equal(t, CarPerKm, Factors()[0].KgCO2e)
}
