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
	"fmt"
	"math"
	"testing"

	"github.com/bioseqlab/afpost/genotype"
	"github.com/bioseqlab/afpost/utils"
)

// uninformative: equal likelihood for every genotype
func flatLikelihoods() genotype.Likelihoods {
	var gl genotype.Likelihoods
	for g := range gl {
		gl[g] = -1
	}
	return gl
}

// maximal confidence in one genotype, near-zero mass elsewhere
func confidentLikelihoods(g genotype.Diploid) genotype.Likelihoods {
	var gl genotype.Likelihoods
	for i := range gl {
		gl[i] = -12
	}
	gl[g] = 0
	return gl
}

func makeSite(ref byte, likelihoods ...genotype.Likelihoods) SiteContext {
	site := SiteContext{Ref: ref, Likelihoods: make(map[utils.Symbol]genotype.Likelihoods)}
	for i, gl := range likelihoods {
		site.Likelihoods[utils.Intern(fmt.Sprintf("sample%d", i))] = gl
	}
	return site
}

func TestEstimateZeroSamples(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	results := e.Estimate(SiteContext{Ref: 'A'})
	if len(results) != 3 {
		t.Error("Estimate zero samples result count failed")
	}
	if results[0].Alt != 'C' || results[1].Alt != 'G' || results[2].Alt != 'T' {
		t.Error("Estimate zero samples alternate order failed")
	}

	// with no evidence, the posterior is the neutral prior
	expected := make([]float64, 101)
	for i, value := range e.priorsFor(101) {
		expected[i] = math.Pow(10, value)
	}
	for _, result := range results {
		if len(result.Posteriors) != 101 {
			t.Errorf("Estimate zero samples grid size failed for %c", result.Alt)
		}
		for i, value := range result.Posteriors {
			if math.Abs(value-expected[i]) > tolerance {
				t.Errorf("Estimate zero samples posterior differs from prior at %v for %c", i, result.Alt)
				break
			}
		}
		if math.Abs(result.PofF-(1-expected[0])) > tolerance {
			t.Errorf("Estimate zero samples P(f>0) failed for %c", result.Alt)
		}
	}
}

func TestEstimatePosteriorsNormalized(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	het := flatLikelihoods()
	het[genotype.AT] = 0
	het[genotype.AA] = -2
	het[genotype.TT] = -2
	site := makeSite('A',
		flatLikelihoods(),
		confidentLikelihoods(genotype.TT),
		het,
	)
	for _, result := range e.Estimate(site) {
		if sum := floatsSum(result.Posteriors); math.Abs(sum-1) > tolerance {
			t.Errorf("posterior for %c sums to %v", result.Alt, sum)
		}
		if result.PofF < 0 || result.PofF > 1 {
			t.Errorf("P(f>0) for %c out of range: %v", result.Alt, result.PofF)
		}
		if result.MeanFrequency() < 0 || result.MeanFrequency() > 1 {
			t.Errorf("mean allele frequency for %c out of range", result.Alt)
		}
	}
}

func floatsSum(values []float64) (sum float64) {
	for _, value := range values {
		sum += value
	}
	return
}

func TestEstimateMonotonicity(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	site := makeSite('A', confidentLikelihoods(genotype.TT))
	results := e.Estimate(site)

	pofF := make(map[byte]float64)
	for _, result := range results {
		pofF[result.Alt] = result.PofF
	}
	if pofF['T'] <= pofF['C'] || pofF['T'] <= pofF['G'] {
		t.Errorf("P(f>0) for hom-alt T evidence not dominant: T=%v C=%v G=%v", pofF['T'], pofF['C'], pofF['G'])
	}
	if pofF['T'] < 0.99 {
		t.Errorf("P(f>0) for confident hom-alt evidence too low: %v", pofF['T'])
	}
}

func TestEstimateSkipsReference(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	results := e.Estimate(makeSite('G', flatLikelihoods()))
	if len(results) != 3 {
		t.Error("Estimate result count failed")
	}
	for _, result := range results {
		if result.Alt == 'G' {
			t.Error("reference base evaluated as its own alternate")
		}
	}
}

func TestEstimateGridSize(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	likelihoods := make([]genotype.Likelihoods, 60)
	for i := range likelihoods {
		likelihoods[i] = flatLikelihoods()
	}
	results := e.Estimate(makeSite('A', likelihoods...))
	if len(results[0].Posteriors) != 121 {
		t.Error("grid size for 60 samples failed")
	}
	results = e.Estimate(makeSite('A', likelihoods[:5]...))
	if len(results[0].Posteriors) != 101 {
		t.Error("grid size for 5 samples failed")
	}
}

func TestEstimateInvalidReference(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	expectPanic(t, "invalid reference base", func() {
		e.Estimate(SiteContext{Ref: 'N'})
	})
}

func TestLOD(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	results := e.Estimate(makeSite('A', confidentLikelihoods(genotype.TT)))
	for _, result := range results {
		lod := result.LOD()
		expected := math.Log10(result.PofF) - math.Log10(result.Posteriors[0])
		if math.IsNaN(lod) || math.Abs(lod-expected) > tolerance {
			t.Errorf("LOD for %c failed", result.Alt)
		}
	}
}

func resultsEqual(results1, results2 []AlleleFrequencyPosterior) bool {
	if len(results1) != len(results2) {
		return false
	}
	for i, result1 := range results1 {
		result2 := results2[i]
		if result1.Alt != result2.Alt || math.Abs(result1.PofF-result2.PofF) > tolerance {
			return false
		}
		if len(result1.Posteriors) != len(result2.Posteriors) {
			return false
		}
		for j := range result1.Posteriors {
			if math.Abs(result1.Posteriors[j]-result2.Posteriors[j]) > tolerance {
				return false
			}
		}
	}
	return true
}

func testSites() []SiteContext {
	het := flatLikelihoods()
	het[genotype.CG] = 0
	return []SiteContext{
		makeSite('A', confidentLikelihoods(genotype.TT)),
		makeSite('C', flatLikelihoods(), het),
		makeSite('G'),
		makeSite('T', confidentLikelihoods(genotype.AA), flatLikelihoods(), flatLikelihoods()),
	}
}

func TestEstimateSites(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	sites := testSites()
	batch := e.EstimateSites(sites)
	if len(batch) != len(sites) {
		t.Error("EstimateSites result count failed")
	}
	for i, site := range sites {
		if !resultsEqual(batch[i], e.Estimate(site)) {
			t.Errorf("EstimateSites differs from Estimate at site %v", i)
		}
	}
}

func TestEstimateStream(t *testing.T) {
	e := NewEstimator(DefaultConfig)
	sites := testSites()
	channel := make(chan SiteContext, len(sites))
	for _, site := range sites {
		channel <- site
	}
	close(channel)
	var streamed [][]AlleleFrequencyPosterior
	e.EstimateStream(channel, func(results []AlleleFrequencyPosterior) {
		streamed = append(streamed, results)
	})
	if len(streamed) != len(sites) {
		t.Error("EstimateStream result count failed")
	}
	for i, site := range sites {
		if !resultsEqual(streamed[i], e.Estimate(site)) {
			t.Errorf("EstimateStream differs from Estimate at site %v", i)
		}
	}
}

func BenchmarkEstimate(b *testing.B) {
	e := NewEstimator(DefaultConfig)
	likelihoods := make([]genotype.Likelihoods, 10)
	for i := range likelihoods {
		if i%3 == 0 {
			likelihoods[i] = confidentLikelihoods(genotype.GT)
		} else {
			likelihoods[i] = flatLikelihoods()
		}
	}
	site := makeSite('G', likelihoods...)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Estimate(site)
	}
}
