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

	"github.com/bioseqlab/afpost/genotype"
)

// genotypeClass distinguishes the three genotype classes of a biallelic
// site. Classes are mapped to array positions through classSlot rather
// than used as indices directly, so reordering the constants cannot
// silently reshuffle the Hardy-Weinberg triples.
type genotypeClass uint8

const (
	homRef genotypeClass = iota
	het
	homAlt
)

var classSlot = [3]int{homRef: 0, het: 1, homAlt: 2}

// hardyWeinbergValues holds the genotype class frequencies p^2, 2pq,
// q^2 for one allele frequency, in linear and log10 space, at the
// positions assigned by classSlot.
type hardyWeinbergValues struct {
	freqs      [3]float64
	log10Freqs [3]float64
}

// gridFrequency keys the Hardy-Weinberg cache. Keying by exact floating
// point value works because grids of the same size reuse identical
// frequency values across alternate alleles and across sites.
type gridFrequency float64

func (f gridFrequency) Hash() uint64 {
	return math.Float64bits(float64(f))
}

// hwValuesFor returns the Hardy-Weinberg genotype class frequencies for
// allele frequency f. The returned value is cached and shared; callers
// must not modify it.
func (e *Estimator) hwValuesFor(f float64) *hardyWeinbergValues {
	if entry, ok := e.hardyWeinberg.Load(gridFrequency(f)); ok {
		return entry.(*hardyWeinbergValues)
	}

	p := 1.0 - f
	q := f

	// allele frequencies don't actually equal 0
	if q == 0 {
		q = e.config.MinimumAlleleFrequency
		p -= e.config.MinimumAlleleFrequency
	} else if p == 0 {
		p = e.config.MinimumAlleleFrequency
		q -= e.config.MinimumAlleleFrequency
	}

	hw := new(hardyWeinbergValues)
	hw.freqs[classSlot[homRef]] = p * p
	hw.freqs[classSlot[het]] = 2 * p * q
	hw.freqs[classSlot[homAlt]] = q * q
	for slot, freq := range hw.freqs {
		hw.log10Freqs[slot] = math.Log10(freq)
	}

	entry, _ := e.hardyWeinberg.LoadOrStore(gridFrequency(f), hw)
	return entry.(*hardyWeinbergValues)
}

// impossible genotypes carry no probability mass
var log10Impossible = math.Inf(-1)

// GenotypePriors expands the Hardy-Weinberg values for allele frequency
// f into a vector of log10 genotype priors relative to the given
// reference and alternate base. Genotypes carrying an allele outside
// {ref, alt} are impossible under the biallelic hypothesis and get -Inf.
func (e *Estimator) GenotypePriors(f float64, ref, alt genotype.Base) genotype.Likelihoods {
	hw := e.hwValuesFor(f)
	possible := genotype.PossibleDiploids(ref, alt)
	refHom := genotype.Hom(ref)
	altHom := genotype.Hom(alt)
	var priors genotype.Likelihoods
	for g := range priors {
		switch {
		case !possible.Test(uint(g)):
			priors[g] = log10Impossible
		case genotype.Diploid(g) == refHom:
			priors[g] = hw.log10Freqs[classSlot[homRef]]
		case genotype.Diploid(g) == altHom:
			priors[g] = hw.log10Freqs[classSlot[homAlt]]
		default:
			priors[g] = hw.log10Freqs[classSlot[het]]
		}
	}
	return priors
}
