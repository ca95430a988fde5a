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

// Package genotype models the unordered diploid genotypes over the
// four-letter nucleotide alphabet and the per-sample log10 genotype
// likelihood vectors consumed by the allele frequency estimator.
package genotype

import (
	"github.com/bits-and-blooms/bitset"
)

// Base is the index of a nucleotide in the fixed A, C, G, T alphabet.
type Base int

const (
	A Base = iota
	C
	G
	T
	NofBases
)

// Bases lists the nucleotide codes in index order.
var Bases = [NofBases]byte{'A', 'C', 'G', 'T'}

var baseIndex = map[byte]Base{
	'A': A, 'a': A,
	'C': C, 'c': C,
	'G': G, 'g': G,
	'T': T, 't': T,
}

// Index returns the Base for the given nucleotide code, or -1 if the
// code is not one of A, C, G, T.
func Index(code byte) Base {
	if base, ok := baseIndex[code]; ok {
		return base
	}
	return -1
}

// Diploid identifies one of the ten unordered diploid genotypes over
// the four-letter alphabet, in lexicographic order.
type Diploid int

const (
	AA Diploid = iota
	AC
	AG
	AT
	CC
	CG
	CT
	GG
	GT
	TT
	NofDiploids
)

// the alleles of each diploid genotype, in Diploid order
var diploidAlleles = [NofDiploids][2]Base{
	{A, A}, {A, C}, {A, G}, {A, T},
	{C, C}, {C, G}, {C, T},
	{G, G}, {G, T},
	{T, T},
}

var diploidIndex [NofBases][NofBases]Diploid

// possibleDiploids[ref][alt] holds the genotypes whose alleles are
// drawn from {ref, alt} only; every other genotype is impossible under
// a biallelic ref/alt hypothesis
var possibleDiploids [NofBases][NofBases]*bitset.BitSet

func init() {
	for g, alleles := range diploidAlleles {
		diploidIndex[alleles[0]][alleles[1]] = Diploid(g)
		diploidIndex[alleles[1]][alleles[0]] = Diploid(g)
	}
	for ref := A; ref < NofBases; ref++ {
		for alt := A; alt < NofBases; alt++ {
			possible := bitset.New(uint(NofDiploids))
			for g, alleles := range diploidAlleles {
				if (alleles[0] == ref || alleles[0] == alt) &&
					(alleles[1] == ref || alleles[1] == alt) {
					possible.Set(uint(g))
				}
			}
			possibleDiploids[ref][alt] = possible
		}
	}
}

// MakeDiploid returns the unordered genotype with the two given alleles.
func MakeDiploid(allele1, allele2 Base) Diploid {
	return diploidIndex[allele1][allele2]
}

// Hom returns the homozygous genotype for the given allele.
func Hom(allele Base) Diploid {
	return diploidIndex[allele][allele]
}

// PossibleDiploids returns the set of genotypes whose alleles are drawn
// from {ref, alt}: the homozygous reference genotype, the ref/alt
// heterozygous genotype, and the homozygous alternate genotype. The set
// is shared; callers must not modify it.
func PossibleDiploids(ref, alt Base) *bitset.BitSet {
	return possibleDiploids[ref][alt]
}

// Likelihoods is a vector of log10 genotype likelihoods for one sample
// at one site, indexed by Diploid.
type Likelihoods [NofDiploids]float64

// log10 of the flat 1/10 genotype prior
const log10FlatPrior = -1.0

// FlatPosteriors combines the likelihoods with a flat genotype prior.
// The result is an unnormalized vector of log10 genotype posteriors.
func (gl Likelihoods) FlatPosteriors() Likelihoods {
	var posteriors Likelihoods
	for g, likelihood := range gl {
		posteriors[g] = likelihood + log10FlatPrior
	}
	return posteriors
}
