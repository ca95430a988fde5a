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
	"log"
	"math"
)

// gridSize keys the neutral prior cache.
type gridSize int

func (n gridSize) Hash() uint64 {
	return uint64(n)
}

// priorsFor returns the log10 prior probability of each of the n points
// on the allele frequency grid under the neutral model: the mass at
// point i >= 1 is proportional to 1/i, scaled so that the non-zero
// points jointly carry the heterozygosity, and the remaining mass sits
// at allele frequency zero. The returned slice is cached and shared;
// callers must not modify it.
func (e *Estimator) priorsFor(n int) []float64 {
	if entry, ok := e.neutralPriors.Load(gridSize(n)); ok {
		return entry.([]float64)
	}

	// calculate sum(1/i)
	var harmonic float64
	for i := 1; i < n; i++ {
		harmonic += 1.0 / float64(i)
	}

	// delta = theta / sum(1/i)
	delta := e.config.Heterozygosity / harmonic

	priors := make([]float64, n)
	var sum float64
	for i := 1; i < n; i++ {
		value := delta / float64(i)
		priors[i] = math.Log10(value)
		sum += value
	}

	// the construction sums to 1 without an explicit normalization
	// step, but a heterozygosity at or above the harmonic sum would
	// leave non-positive mass at allele frequency zero and poison every
	// downstream log10
	if sum >= 1 {
		log.Panicf("heterozygosity %v leaves no probability mass at allele frequency 0 for grid size %v", e.config.Heterozygosity, n)
	}
	priors[0] = math.Log10(1 - sum)

	entry, _ := e.neutralPriors.LoadOrStore(gridSize(n), priors)
	return entry.([]float64)
}
