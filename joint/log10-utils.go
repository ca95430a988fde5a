// afpost: joint estimation of population allele-frequency posteriors
// from per-sample genotype likelihoods.
// Copyright (c) 2020 bioseqlab.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/bioseqlab/afpost/blob/master/LICENSE.txt>.

package joint

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// normalizeFromLog10 converts a vector of log10 values into linear
// probabilities summing to 1, in place. Subtracting the maximum entry
// before exponentiating pins the largest exponent at 0, so the
// conversion can neither overflow nor flush the whole vector to zero.
// This is the single mechanism for turning log10 vectors into
// probabilities anywhere in the estimator.
func normalizeFromLog10(values []float64) {
	maxValue := floats.Max(values)
	for i, value := range values {
		values[i] = math.Pow(10, value-maxValue)
	}
	floats.Scale(1/floats.Sum(values), values)
}
