// Package emissions converts daily activity quantities into kilograms of
// CO2-equivalent using fixed linear factors.  Everything in this package is
// pure: no I/O, no clocks, no rounding.  Presentation code decides how many
// decimals to show.
package emissions

import (
	"errors"
	"fmt"
	"math"
)

// Emission factors in kg CO2e per unit.
const (
	CarPerKm          = 0.21 // per km driven
	BikePerKm         = 0.08 // per km ridden
	BusPerKm          = 0.10 // per km by bus
	ElectricityPerKWh = 0.85 // per kWh consumed
	MeatPerMeal       = 5.0  // per meat meal
	VegPerMeal        = 1.5  // per vegetarian meal
)

// ErrInvalidInput is returned by Validate when a quantity is negative or not
// a finite number.
var ErrInvalidInput = errors.New("invalid input")

// Activity holds the six raw quantities of one submission.
type Activity struct {
	CarKm          float64 `json:"car_km"`
	BikeKm         float64 `json:"bike_km"`
	BusKm          float64 `json:"bus_km"`
	ElectricityKWh float64 `json:"electricity_kwh"`
	MeatMeals      float64 `json:"meat_meals"`
	VegMeals       float64 `json:"veg_meals"`
}

// Emissions holds one derived value per channel plus their sum.
type Emissions struct {
	Car         float64 `json:"car_emission"`
	Bike        float64 `json:"bike_emission"`
	Bus         float64 `json:"bus_emission"`
	Electricity float64 `json:"electricity_emission"`
	Food        float64 `json:"food_emission"`
	Total       float64 `json:"total_emission"`
}

// Validate rejects negative, NaN and infinite quantities.  The returned error
// wraps ErrInvalidInput and names the first offending field.
func (a Activity) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"car_km", a.CarKm},
		{"bike_km", a.BikeKm},
		{"bus_km", a.BusKm},
		{"electricity_kwh", a.ElectricityKWh},
		{"meat_meals", a.MeatMeals},
		{"veg_meals", a.VegMeals},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, f.name)
		}
		if f.v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, f.name)
		}
	}
	return nil
}

// Calculate applies the fixed factors to a.  It does not validate; callers
// that accept user input run Validate first.
func Calculate(a Activity) Emissions {
	e := Emissions{
		Car:         a.CarKm * CarPerKm,
		Bike:        a.BikeKm * BikePerKm,
		Bus:         a.BusKm * BusPerKm,
		Electricity: a.ElectricityKWh * ElectricityPerKWh,
		Food:        a.MeatMeals*MeatPerMeal + a.VegMeals*VegPerMeal,
	}
	e.Total = e.Car + e.Bike + e.Bus + e.Electricity + e.Food
	return e
}

// Factor describes one row of the factor table.
type Factor struct {
	Activity string  `json:"activity"`
	Unit     string  `json:"unit"`
	KgCO2e   float64 `json:"kg_co2e_per_unit"`
}

// Factors returns the factor table in display order.  The slice is freshly
// allocated on every call.
func Factors() []Factor {
	return []Factor{
		{Activity: "car", Unit: "km", KgCO2e: CarPerKm},
		{Activity: "bike", Unit: "km", KgCO2e: BikePerKm},
		{Activity: "bus", Unit: "km", KgCO2e: BusPerKm},
		{Activity: "electricity", Unit: "kWh", KgCO2e: ElectricityPerKWh},
		{Activity: "meat_meal", Unit: "meal", KgCO2e: MeatPerMeal},
		{Activity: "veg_meal", Unit: "meal", KgCO2e: VegPerMeal},
	}
}
