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
	"runtime"

	"github.com/exascience/pargo/parallel"
	"github.com/exascience/pargo/pipeline"

	"github.com/bioseqlab/afpost/internal"
)

// EstimateSites estimates all given sites in parallel and returns one
// result slice per site, in input order. Sites are independent; the
// only shared state is the pair of read-mostly caches on the estimator.
func (e *Estimator) EstimateSites(sites []SiteContext) [][]AlleleFrequencyPosterior {
	results := make([][]AlleleFrequencyPosterior, len(sites))
	parallel.Range(0, len(sites), 0, func(low, high int) {
		for i := low; i < high; i++ {
			results[i] = e.Estimate(sites[i])
		}
	})
	return results
}

// EstimateStream estimates sites arriving on a channel, typically fed
// by a genomic traversal engine. Sites are estimated in parallel;
// report is called with the results of each site in input order, from
// a single goroutine. EstimateStream returns when the channel is
// closed and all results have been reported.
func (e *Estimator) EstimateStream(sites chan SiteContext, report func([]AlleleFrequencyPosterior)) {
	var p pipeline.Pipeline
	p.Source(pipeline.NewSingletonChan(sites))
	p.SetVariableBatchSize(1, 1)
	p.Add(
		pipeline.LimitedPar(runtime.GOMAXPROCS(0), pipeline.Receive(func(_ int, data interface{}) interface{} {
			return e.Estimate(data.(SiteContext))
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			report(data.([]AlleleFrequencyPosterior))
			return nil
		})),
	)
	internal.RunPipeline(&p)
}
