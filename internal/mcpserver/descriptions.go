package mcpserver

// Tool descriptions with interpretation guidance for LLMs.
// Each description explains what the tool does, when to use it,
// and how to read the returned fields.

func describeValues() string {
	return `Computes descriptive statistics for a list of numbers.

USE WHEN:
- Summarizing a sample before comparing it with another
- Checking spread or skew of measurements
- Needing geometric or harmonic means (rates, ratios, speeds)

INTERPRETING RESULTS:
- Variance is the population variance (divides by n, not n-1)
- std_dev is the square root of that variance
- geometric_mean is omitted when any value is zero or negative
- harmonic_mean is 0 when any value is 0
- median, p90 and p99 are empirical quantiles of the sorted input

METRICS RETURNED:
- count, sum, min, max
- mean, geometric_mean, harmonic_mean
- variance, std_dev
- median, p90, p99`
}

func describeSlope() string {
	return `Fits an ordinary least-squares line to paired x and y values and returns its slope.

USE WHEN:
- Estimating a trend (growth per step, cost per unit)
- Checking whether one series rises or falls with another

INTERPRETING RESULTS:
- Positive slope: y increases with x
- Negative slope: y decreases as x grows
- Fails when x and y differ in length, have fewer than 2 points, or all x are equal

METRICS RETURNED:
- points: number of (x, y) pairs
- slope: change in y per unit of x`
}

func describeBuildCDF() string {
	return `Builds the cumulative distribution of a non-negative probability mass vector.

USE WHEN:
- Turning unnormalized weights into probabilities
- Inspecting which interval of [0,1) each bucket owns
- Getting a fingerprint to confirm two weight vectors give the same distribution

INTERPRETING RESULTS:
- cdf[i] is the probability of drawing a bucket below i, so cdf[0] is always 0
- Bucket i owns the interval [cdf[i], cdf[i+1]), the last bucket ends at 1
- Zero-weight buckets own an empty interval and are never drawn
- Masses need not sum to 1; they are divided by their total

METRICS RETURNED:
- mass: the input weights
- cdf: lower boundary of each bucket
- probabilities: normalized probability of each bucket
- fingerprint: 64-bit hash of the cdf`
}

func describeSearchBucket() string {
	return `Finds the bucket a uniform value in [0,1] falls into, given a probability mass vector.

USE WHEN:
- Mapping a known random number to an outcome by hand
- Debugging why a sampler picked a particular bucket

INTERPRETING RESULTS:
- The bucket is the last one whose lower boundary is <= value
- A value exactly on a boundary belongs to the bucket starting there
- value 1 maps to the last bucket with positive mass

METRICS RETURNED:
- value, bucket
- lower and upper boundary of the chosen bucket`
}

func describeSampleDistribution() string {
	return `Draws many random bucket indices from a probability mass vector and compares observed frequencies with the expected probabilities.

USE WHEN:
- Verifying that a weighted random choice behaves as intended
- Estimating how many draws are needed before frequencies settle
- Producing a reproducible histogram for a fixed seed

INTERPRETING RESULTS:
- deviation is |observed - expected| per bucket
- pass is true when every deviation is within tolerance
- Deviations shrink roughly with 1/sqrt(rounds)
- The same seed and worker count always give the same counts

METRICS RETURNED:
- rounds, workers, seed, fingerprint
- expected, counts, observed, deviation per bucket
- max_deviation, tolerance, pass`
}
