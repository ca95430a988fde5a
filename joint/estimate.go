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

	"gonum.org/v1/gonum/floats"

	"github.com/bioseqlab/afpost/genotype"
	"github.com/bioseqlab/afpost/utils"
)

// A SiteContext carries the evidence for one genomic site: the
// reference base and one genotype likelihood vector per sample. It is
// owned by the caller and read-only to the estimator.
type SiteContext struct {
	Ref         byte
	Likelihoods map[utils.Symbol]genotype.Likelihoods
}

// An AlleleFrequencyPosterior is the estimation result for one
// alternate base: a normalized posterior distribution over the allele
// frequency grid, and the probability that the allele frequency is
// greater than zero.
type AlleleFrequencyPosterior struct {
	Alt        byte
	Posteriors []float64
	PofF       float64
}

// LOD returns the log odds of the site being variant for this
// alternate base, log10 P(f>0) - log10 P(f=0). Downstream callers
// typically turn this into a quality score.
func (p *AlleleFrequencyPosterior) LOD() float64 {
	return math.Log10(p.PofF) - math.Log10(p.Posteriors[0])
}

// MeanFrequency returns the posterior mean allele frequency.
func (p *AlleleFrequencyPosterior) MeanFrequency() float64 {
	points := len(p.Posteriors)
	frequencies := make([]float64, points)
	for i := range frequencies {
		frequencies[i] = float64(i) / float64(points-1)
	}
	return floats.Dot(frequencies, p.Posteriors)
}

// Estimate computes, independently for each of the three possible
// alternate bases, the posterior distribution over the allele frequency
// grid and P(f>0). Results are ordered by alternate base; the reference
// base itself is skipped.
//
// With no samples at the site, the posterior degenerates to the neutral
// prior and P(f>0) to one minus the prior mass at frequency zero.
//
// The per-sample genotype posteriors deliberately use a flat genotype
// prior; the Hardy-Weinberg frequencies enter only as weights at the
// per-frequency-point marginalization. This two-stage structure is
// carried over as observed from the original joint estimation model,
// which constructs Hardy-Weinberg genotype priors (see GenotypePriors)
// but combines the sample likelihoods with flat ones. It is unresolved
// whether that split between two prior sources is intended, so it is
// preserved rather than unified.
func (e *Estimator) Estimate(site SiteContext) []AlleleFrequencyPosterior {
	ref := genotype.Index(site.Ref)
	if ref < 0 {
		log.Panicf("invalid reference base %c", site.Ref)
	}

	points := e.gridPoints(len(site.Likelihoods))
	log10Priors := e.priorsFor(points)

	// the flat-prior posteriors don't depend on the grid point, so
	// compute them once per sample
	samplePosteriors := make([]genotype.Likelihoods, 0, len(site.Likelihoods))
	for _, likelihoods := range site.Likelihoods {
		samplePosteriors = append(samplePosteriors, likelihoods.FlatPosteriors())
	}

	refHom := genotype.Hom(ref)
	results := make([]AlleleFrequencyPosterior, 0, genotype.NofBases-1)

	for alt := genotype.A; alt < genotype.NofBases; alt++ {
		if alt == ref {
			// a base cannot be evaluated as its own alternate
			continue
		}
		altHom := genotype.Hom(alt)
		refAlt := genotype.MakeDiploid(ref, alt)

		log10PofDgivenAF := make([]float64, points)
		var classPosteriors [3]float64
		for i := 0; i < points; i++ {
			f := float64(i) / float64(points-1)
			hw := e.hwValuesFor(f)
			for _, posteriors := range samplePosteriors {
				classPosteriors[classSlot[homRef]] = posteriors[refHom]
				classPosteriors[classSlot[het]] = posteriors[refAlt]
				classPosteriors[classSlot[homAlt]] = posteriors[altHom]
				normalizeFromLog10(classPosteriors[:])

				// P(sample's data | AF=f) is the Hardy-Weinberg-weighted
				// sum over the three genotype classes; samples multiply,
				// so their log10s accumulate
				var pOfD float64
				for slot, weight := range hw.freqs {
					pOfD += weight * classPosteriors[slot]
				}
				log10PofDgivenAF[i] += math.Log10(pOfD)
			}
		}

		posteriors := make([]float64, points)
		for i, log10PofD := range log10PofDgivenAF {
			posteriors[i] = log10Priors[i] + log10PofD
		}
		normalizeFromLog10(posteriors)

		// grid point 0 is "no variant": the tail sum over all other
		// points is P(f>0)
		var pOfF float64
		for i := 1; i < points; i++ {
			pOfF += posteriors[i]
		}
		if pOfF > 1 {
			// deal with precision errors
			pOfF = 1
		}

		results = append(results, AlleleFrequencyPosterior{
			Alt:        genotype.Bases[alt],
			Posteriors: posteriors,
			PofF:       pOfF,
		})
	}
	return results
}
