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

// Package joint estimates, per genomic site, the posterior probability
// distribution over the population allele frequency of each possible
// alternate base, given per-sample diploid genotype likelihoods.
package joint

import (
	"log"

	"github.com/exascience/pargo/sync"
)

// Config collects the population-genetics parameters of the estimator.
type Config struct {
	// the expected heterozygosity of the population (theta)
	Heterozygosity float64
	// the minimum number of non-zero points on the allele frequency grid
	MinEstimationPoints int
	// allele frequencies never equal exactly 0 in the Hardy-Weinberg
	// expansion; they are floored at this value instead
	MinimumAlleleFrequency float64
}

// DefaultConfig holds the standard parameterization for human samples.
var DefaultConfig = Config{
	Heterozygosity:         1e-3,
	MinEstimationPoints:    100,
	MinimumAlleleFrequency: 1e-5,
}

// An Estimator computes allele-frequency posteriors for genomic sites.
//
// It holds no per-site state, so Estimate may be called concurrently
// from multiple goroutines. The two lazy caches it carries map grid
// sizes to neutral priors and grid frequencies to Hardy-Weinberg
// values; both are pure functions of their keys over a bounded key
// space, so entries are never invalidated or evicted.
type Estimator struct {
	config        Config
	neutralPriors *sync.Map // gridSize -> []float64
	hardyWeinberg *sync.Map // gridFrequency -> *hardyWeinbergValues
}

// NewEstimator validates the configuration and creates an estimator.
func NewEstimator(config Config) *Estimator {
	if config.Heterozygosity <= 0 || config.Heterozygosity >= 1 {
		log.Panicf("heterozygosity %v is not in the open interval (0,1)", config.Heterozygosity)
	}
	if config.MinEstimationPoints < 1 {
		log.Panicf("minimum number of estimation points %v is less than 1", config.MinEstimationPoints)
	}
	if config.MinimumAlleleFrequency <= 0 || config.MinimumAlleleFrequency >= 0.5 {
		log.Panicf("minimum allele frequency %v is not in the open interval (0,0.5)", config.MinimumAlleleFrequency)
	}
	return &Estimator{
		config:        config,
		neutralPriors: sync.NewMap(0),
		hardyWeinberg: sync.NewMap(0),
	}
}

// the number of points on the allele frequency grid for a site:
// MinEstimationPoints or 2N if that's larger, plus one for allele
// frequency zero
func (e *Estimator) gridPoints(numSamples int) int {
	points := 2 * numSamples
	if points < e.config.MinEstimationPoints {
		points = e.config.MinEstimationPoints
	}
	return points + 1
}
